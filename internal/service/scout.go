package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"
)

const (
	// MaxCandidatePool 候选池上限
	MaxCandidatePool = 100
	// MinCandidatePool 候选池的期望下限，低于它只告警不失败
	MinCandidatePool = 50
)

// Scout 候选池收集器：并发跑多个搜索策略，合并去重
type Scout struct {
	searcher port.Searcher
}

// NewScout 创建 Scout
func NewScout(searcher port.Searcher) *Scout {
	return &Scout{searcher: searcher}
}

// strategyResult 单个策略的结果
type strategyResult struct {
	name  string
	repos []*domain.Repository
	err   error
}

// Gather 并发执行所有搜索策略，合并去重后返回候选池
//
// 单个策略失败不影响其他策略；但如果所有策略都没捞到仓库
// 且期间出现过限流，就把限流错误抛给调用方
func (s *Scout) Gather(ctx context.Context, params *domain.SearchParams, mode domain.SearchMode) ([]*domain.Repository, error) {
	strategies := s.buildStrategies(params, mode)

	results := make(chan strategyResult, len(strategies))
	var wg sync.WaitGroup
	for name, run := range strategies {
		wg.Add(1)
		go func(name string, run func(context.Context) ([]*domain.Repository, error)) {
			defer wg.Done()
			repos, err := run(ctx)
			results <- strategyResult{name: name, repos: repos, err: err}
		}(name, run)
	}
	wg.Wait()
	close(results)

	// 合并 + 去重 + 剔除 archived/fork
	seen := make(map[string]bool)
	var pool []*domain.Repository
	var rateLimitErr error

	for result := range results {
		if result.err != nil {
			log.Printf("[Scout] ⚠️ 策略 %s 失败: %v", result.name, result.err)
			if common.HasCode(result.err, common.ErrCodeRateLimit) {
				rateLimitErr = result.err
			}
			continue
		}
		fmt.Printf("✅ 策略 %s 命中 %d 个仓库\n", result.name, len(result.repos))

		for _, repo := range result.repos {
			if repo.Archived || repo.Fork {
				continue
			}
			if seen[repo.FullName] {
				continue
			}
			seen[repo.FullName] = true
			pool = append(pool, repo)
		}
	}

	if len(pool) == 0 && rateLimitErr != nil {
		return nil, rateLimitErr
	}

	if len(pool) > MaxCandidatePool {
		pool = pool[:MaxCandidatePool]
	}
	if len(pool) < MinCandidatePool {
		log.Printf("[Scout] ⚠️ 候选池偏小: 只找到 %d 个仓库（期望 %d+），照常继续", len(pool), MinCandidatePool)
	}
	return pool, nil
}

// buildStrategies 按模式组装策略集合
// focused 少而精，exploratory 多撒网；每个策略就是一次以上的搜索调用
func (s *Scout) buildStrategies(params *domain.SearchParams, mode domain.SearchMode) map[string]func(context.Context) ([]*domain.Repository, error) {
	keywordPerPage := 40
	topicPerPage := 15
	maxTopics := 2
	switch mode {
	case domain.ModeFocused:
		keywordPerPage = 30
		maxTopics = 1
	case domain.ModeExploratory:
		keywordPerPage = 50
		maxTopics = 4
	}

	strategies := make(map[string]func(context.Context) ([]*domain.Repository, error))

	if len(params.Keywords) > 0 {
		strategies["keyword"] = func(ctx context.Context) ([]*domain.Repository, error) {
			return s.searcher.SearchByKeywords(ctx, params, keywordPerPage)
		}
	}

	topics := params.Topics
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	for _, topic := range topics {
		topic := topic
		strategies["topic:"+topic] = func(ctx context.Context) ([]*domain.Repository, error) {
			return s.searcher.SearchByTopic(ctx, topic, params, topicPerPage)
		}
	}

	if params.Language != "" && len(params.Keywords) > 0 {
		strategies["language"] = func(ctx context.Context) ([]*domain.Repository, error) {
			return s.searcher.SearchByLanguage(ctx, params, 30)
		}
	}

	return strategies
}
