package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// newGitHubClient 初始化 GitHub 客户端
// token: GitHub Personal Access Token (空字符串就是匿名访问，限制 60次/小时)
func newGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc)
}

// Searcher 实现了 port.Searcher 接口
// 每次 API 调用都会累加调用计数，供成本核算使用
type Searcher struct {
	client *github.Client
	calls  atomic.Int64
}

// NewSearcher 创建搜索适配器
func NewSearcher(token string) *Searcher {
	return &Searcher{client: newGitHubClient(token)}
}

// CallCount 返回实际发出的搜索 API 调用次数（含重试）
func (s *Searcher) CallCount() int64 {
	return s.calls.Load()
}

// SearchByKeywords 关键词策略：直接用翻译出来的关键词全文搜索
func (s *Searcher) SearchByKeywords(ctx context.Context, params *domain.SearchParams, perPage int) ([]*domain.Repository, error) {
	query := strings.Join(params.Keywords, " ")
	if params.Language != "" {
		query = fmt.Sprintf("%s language:%s", query, params.Language)
	}
	return s.search(ctx, query, perPage)
}

// SearchByTopic topic 策略：按单个 topic 标签搜索
func (s *Searcher) SearchByTopic(ctx context.Context, topic string, params *domain.SearchParams, perPage int) ([]*domain.Repository, error) {
	query := fmt.Sprintf("topic:%s", topic)
	if params != nil && params.Language != "" {
		query = fmt.Sprintf("%s language:%s", query, params.Language)
	}
	return s.search(ctx, query, perPage)
}

// SearchByLanguage 语言策略：在目标语言内搜关键词，外加 star 下限压噪音
func (s *Searcher) SearchByLanguage(ctx context.Context, params *domain.SearchParams, perPage int) ([]*domain.Repository, error) {
	if params.Language == "" {
		// 没有语言约束时这个策略没有意义
		return nil, nil
	}
	query := fmt.Sprintf("%s language:%s stars:>10", strings.Join(params.Keywords, " "), params.Language)
	return s.search(ctx, query, perPage)
}

// search 发起一次带重试的搜索调用并做 DTO 转换
func (s *Searcher) search(ctx context.Context, query string, perPage int) ([]*domain.Repository, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		s.calls.Add(1)
		var apiErr error
		result, _, apiErr = s.client.Search.Repositories(ctx, query, opts)
		return wrapGitHubErr(apiErr)
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Second),
		common.WithRetryIf(func(err error) bool {
			// 触发限流就不要再打了，把 429 语义交给上层
			return !common.HasCode(err, common.ErrCodeRateLimit)
		}),
	)
	if err != nil {
		return nil, err
	}

	repos := make([]*domain.Repository, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		repos = append(repos, convertRepo(item))
	}
	return repos, nil
}

// convertRepo 把 GitHub 的数据结构转换为我们的 Domain 实体 (DTO 转换)
func convertRepo(item *github.Repository) *domain.Repository {
	return &domain.Repository{
		Owner:       item.GetOwner().GetLogin(),
		Name:        item.GetName(),
		FullName:    item.GetFullName(),
		URL:         item.GetHTMLURL(),
		Description: item.GetDescription(),
		Stars:       item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		OpenIssues:  item.GetOpenIssuesCount(),
		Language:    item.GetLanguage(),
		Topics:      item.Topics,
		License:     item.GetLicense().GetSPDXID(),
		// 搜索 API 不返回 README 信息，用 size>0 近似（空仓库必然没有 README）
		HasReadme: item.GetSize() > 0,
		Archived:  item.GetArchived(),
		Fork:      item.GetFork(),
		CreatedAt: item.GetCreatedAt().Time,
		UpdatedAt: item.GetUpdatedAt().Time,
		PushedAt:  item.GetPushedAt().Time,
	}
}

// wrapGitHubErr 把 go-github 的错误翻译成带错误码的 AppError
func wrapGitHubErr(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return common.WrapError(common.ErrCodeRateLimit, "GitHub 搜索触发限流", err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return common.WrapError(common.ErrCodeRateLimit, "GitHub 二级限流", err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == 404 {
		return common.WrapError(common.ErrCodeNotFound, "资源不存在", err)
	}

	return common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败", err)
}
