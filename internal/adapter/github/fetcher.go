package github

import (
	"context"
	"time"

	"github-repo-radar/internal/common"

	"github.com/google/go-github/v53/github"
)

// Fetcher 实现了 port.ContentFetcher 接口，负责拉取仓库 README
type Fetcher struct {
	client *github.Client
}

// NewFetcher 创建内容抓取适配器
func NewFetcher(token string) *Fetcher {
	return &Fetcher{client: newGitHubClient(token)}
}

// FetchReadme 拉取仓库的 README 正文（自动解码 base64）
// 404 返回 NOT_FOUND 错误码，由精筛阶段降级成空内容
func (f *Fetcher) FetchReadme(ctx context.Context, owner, name string) (string, error) {
	var content string
	err := common.Do(ctx, func() error {
		readme, _, apiErr := f.client.Repositories.GetReadme(ctx, owner, name, nil)
		if apiErr != nil {
			return wrapGitHubErr(apiErr)
		}
		body, decErr := readme.GetContent()
		if decErr != nil {
			return common.WrapError(common.ErrCodeGitHubAPI, "README 解码失败", decErr)
		}
		content = body
		return nil
	},
		common.WithMaxRetries(1),
		common.WithInitialDelay(500*time.Millisecond),
		common.WithRetryIf(func(err error) bool {
			// 404 和限流都不值得重试
			return !common.HasCode(err, common.ErrCodeNotFound) &&
				!common.HasCode(err, common.ErrCodeRateLimit)
		}),
	)
	if err != nil {
		return "", err
	}
	return content, nil
}
