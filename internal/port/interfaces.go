package port

import (
	"context"
	"time"

	"github-repo-radar/internal/domain"
)

// Translator (翻译官): 把用户的大白话翻译成结构化搜索参数
// 底层是 LLM，翻译不出可用参数时必须返回 TRANSLATION_ERROR，不许静默兜底
type Translator interface {
	Translate(ctx context.Context, query string, mode domain.SearchMode) (*domain.SearchParams, error)
}

// Searcher (侦察兵): 对 GitHub 搜索索引发起单个策略的查询
// 每个方法就是一次（或多次）API 调用，调用次数通过 CallCount 暴露给成本核算
type Searcher interface {
	SearchByKeywords(ctx context.Context, params *domain.SearchParams, perPage int) ([]*domain.Repository, error)
	SearchByTopic(ctx context.Context, topic string, params *domain.SearchParams, perPage int) ([]*domain.Repository, error)
	SearchByLanguage(ctx context.Context, params *domain.SearchParams, perPage int) ([]*domain.Repository, error)
	CallCount() int64
}

// ContentFetcher (资料员): 拉取仓库的 README 正文
// 拉不到（404、网络抖动）返回错误，由调用方降级成空内容
type ContentFetcher interface {
	FetchReadme(ctx context.Context, owner, name string) (string, error)
}

// Evaluator (鉴定师): 调用 LLM 对仓库内容做三个维度的评估
// 返回文档质量、易用性、相关性三个 0-10 分
type Evaluator interface {
	Evaluate(ctx context.Context, repo *domain.Repository, content, query string) (*domain.EvaluationResult, error)
}

// Filter (门卫): 初筛漏斗，纯规则过滤 + star 降序截取
type Filter interface {
	Apply(repos []*domain.Repository, cfg domain.CoarseFilterConfig) []*domain.Repository
}

// Scorer (评委): 精筛打分，产出排好序的最终榜单
type Scorer interface {
	ScoreRepositories(ctx context.Context, repos []*domain.Repository, query string) ([]*domain.ScoredRepository, error)
	SetMaxGoroutines(max int)
}

// ResultCache (仓库管理员): 按 query+mode 缓存最终榜单
// 读写失败都只告警，绝不影响主流程
type ResultCache interface {
	Get(ctx context.Context, query string, mode domain.SearchMode) ([]*domain.ScoredRepository, bool, error)
	Put(ctx context.Context, query string, mode domain.SearchMode, repos []*domain.ScoredRepository, ttl time.Duration) error
}

// Notifier (信使): 把一次搜索的摘要推送出去（飞书卡片）
type Notifier interface {
	Notify(ctx context.Context, state *domain.PipelineState, cost *domain.CostEstimate) error
}
