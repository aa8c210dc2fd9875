package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CachedSearch 一条搜索结果缓存：key = 归一化的 query|mode
type CachedSearch struct {
	Key       string    `gorm:"primaryKey"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Payload   string    `gorm:"type:text"` // JSON 序列化的榜单
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PostgresCache 实现了 port.ResultCache 接口
// 同一个问题一小时内不值得再花一遍 LLM 的钱
type PostgresCache struct {
	db      *gorm.DB
	nowFunc func() time.Time
}

// NewPostgresCache 初始化数据库连接并自动迁移表结构
func NewPostgresCache(dsn string) (*PostgresCache, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := db.AutoMigrate(&CachedSearch{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return &PostgresCache{db: db, nowFunc: time.Now}, nil
}

// cacheKey 归一化缓存键：小写、去空白、拼上模式
func cacheKey(query string, mode domain.SearchMode) string {
	return strings.ToLower(strings.TrimSpace(query)) + "|" + string(mode)
}

// Get 查缓存；过期或不存在返回 miss，不返回错误
func (c *PostgresCache) Get(ctx context.Context, query string, mode domain.SearchMode) ([]*domain.ScoredRepository, bool, error) {
	var entry CachedSearch
	err := c.db.WithContext(ctx).Where("key = ?", cacheKey(query, mode)).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, common.WrapError(common.ErrCodeDatabase, "读取缓存失败", err)
	}

	if c.nowFunc().After(entry.ExpiresAt) {
		return nil, false, nil
	}

	var repos []*domain.ScoredRepository
	if err := json.Unmarshal([]byte(entry.Payload), &repos); err != nil {
		// 缓存损坏按 miss 处理，主流程重新算一遍就是了
		return nil, false, nil
	}
	return repos, true, nil
}

// Put 写缓存（Save 自动处理 Insert 或 Update）
func (c *PostgresCache) Put(ctx context.Context, query string, mode domain.SearchMode, repos []*domain.ScoredRepository, ttl time.Duration) error {
	payload, err := json.Marshal(repos)
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "序列化榜单失败", err)
	}

	entry := &CachedSearch{
		Key:       cacheKey(query, mode),
		Query:     query,
		Mode:      string(mode),
		Payload:   string(payload),
		CreatedAt: c.nowFunc(),
		ExpiresAt: c.nowFunc().Add(ttl),
	}
	if err := c.db.WithContext(ctx).Save(entry).Error; err != nil {
		return common.WrapError(common.ErrCodeDatabase, "写入缓存失败", err)
	}
	return nil
}
