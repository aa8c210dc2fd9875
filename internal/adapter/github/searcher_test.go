package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"

	"github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
)

// setupMockGitHubServer 创建一个模拟的 GitHub API 服务器
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Searcher) {
	server := httptest.NewServer(handler)

	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL

	searcher := &Searcher{client: client}
	return server, searcher
}

// createMockRepo 创建模拟的 GitHub 仓库对象
func createMockRepo(id int64, owner, name string, stars int, archived, fork bool) *github.Repository {
	fullName := owner + "/" + name
	now := time.Now()
	return &github.Repository{
		ID:              github.Int64(id),
		Owner:           &github.User{Login: github.String(owner)},
		Name:            github.String(name),
		FullName:        github.String(fullName),
		HTMLURL:         github.String("https://github.com/" + fullName),
		Description:     github.String("A test repository"),
		StargazersCount: github.Int(stars),
		ForksCount:      github.Int(stars / 10),
		OpenIssuesCount: github.Int(5),
		Language:        github.String("Go"),
		Topics:          []string{"testing"},
		Size:            github.Int(1024),
		Archived:        github.Bool(archived),
		Fork:            github.Bool(fork),
		CreatedAt:       &github.Timestamp{Time: now.AddDate(-1, 0, 0)},
		UpdatedAt:       &github.Timestamp{Time: now},
		PushedAt:        &github.Timestamp{Time: now},
	}
}

func searchHandler(t *testing.T, repos []*github.Repository, capturedQuery *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		if capturedQuery != nil {
			*capturedQuery = r.URL.Query().Get("q")
		}
		result := &github.RepositoriesSearchResult{
			Total:        github.Int(len(repos)),
			Repositories: repos,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func TestSearcher_SearchByKeywords(t *testing.T) {
	var capturedQuery string
	mockRepos := []*github.Repository{
		createMockRepo(1, "gin-gonic", "gin", 70000, false, false),
		createMockRepo(2, "labstack", "echo", 28000, false, false),
	}
	server, searcher := setupMockGitHubServer(t, searchHandler(t, mockRepos, &capturedQuery))
	defer server.Close()

	params := &domain.SearchParams{
		Keywords: []string{"web", "framework"},
		Language: "Go",
	}
	repos, err := searcher.SearchByKeywords(context.Background(), params, 40)

	assert.NoError(t, err)
	assert.Len(t, repos, 2)
	assert.Equal(t, "web framework language:Go", capturedQuery)
	assert.Equal(t, int64(1), searcher.CallCount())

	// DTO 转换检查
	assert.Equal(t, "gin-gonic", repos[0].Owner)
	assert.Equal(t, "gin-gonic/gin", repos[0].FullName)
	assert.Equal(t, 70000, repos[0].Stars)
	assert.Equal(t, 7000, repos[0].Forks)
	assert.Equal(t, "Go", repos[0].Language)
	assert.True(t, repos[0].HasReadme)
	assert.False(t, repos[0].Archived)
}

func TestSearcher_SearchByTopic(t *testing.T) {
	var capturedQuery string
	server, searcher := setupMockGitHubServer(t, searchHandler(t, nil, &capturedQuery))
	defer server.Close()

	_, err := searcher.SearchByTopic(context.Background(), "web-framework", &domain.SearchParams{Language: "Go"}, 15)

	assert.NoError(t, err)
	assert.Equal(t, "topic:web-framework language:Go", capturedQuery)
}

func TestSearcher_SearchByLanguage(t *testing.T) {
	var capturedQuery string
	server, searcher := setupMockGitHubServer(t, searchHandler(t, nil, &capturedQuery))
	defer server.Close()

	// 没有语言约束时这个策略直接空转
	repos, err := searcher.SearchByLanguage(context.Background(), &domain.SearchParams{Keywords: []string{"cli"}}, 30)
	assert.NoError(t, err)
	assert.Nil(t, repos)
	assert.Equal(t, int64(0), searcher.CallCount())

	_, err = searcher.SearchByLanguage(context.Background(), &domain.SearchParams{Keywords: []string{"cli"}, Language: "Rust"}, 30)
	assert.NoError(t, err)
	assert.Equal(t, "cli language:Rust stars:>10", capturedQuery)
}

// 保留 archived/fork 标记的转换，剔除它们是 Scout 的事
func TestSearcher_KeepsArchivedAndForkFlags(t *testing.T) {
	mockRepos := []*github.Repository{
		createMockRepo(1, "dead", "project", 5000, true, false),
		createMockRepo(2, "someone", "copy", 100, false, true),
	}
	server, searcher := setupMockGitHubServer(t, searchHandler(t, mockRepos, nil))
	defer server.Close()

	repos, err := searcher.SearchByKeywords(context.Background(), &domain.SearchParams{Keywords: []string{"x"}}, 40)

	assert.NoError(t, err)
	assert.Len(t, repos, 2)
	assert.True(t, repos[0].Archived)
	assert.True(t, repos[1].Fork)
}

// 限流必须立刻返回 RATE_LIMIT 错误码，不做任何重试
func TestSearcher_RateLimitNotRetried(t *testing.T) {
	calls := 0
	server, searcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	})
	defer server.Close()

	_, err := searcher.SearchByKeywords(context.Background(), &domain.SearchParams{Keywords: []string{"x"}}, 40)

	assert.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrCodeRateLimit))
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), searcher.CallCount())
}

// 普通服务端错误会走重试，调用计数如实累加
func TestSearcher_ServerErrorRetried(t *testing.T) {
	calls := 0
	server, searcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := searcher.SearchByKeywords(context.Background(), &domain.SearchParams{Keywords: []string{"x"}}, 40)

	assert.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrCodeGitHubAPI))
	assert.Equal(t, 3, calls) // 首次 + 2 次重试
	assert.Equal(t, int64(3), searcher.CallCount())
}
