package filter

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github-repo-radar/internal/domain"

	"github.com/stretchr/testify/assert"
)

func makeRepo(name string, stars int, updatedDaysAgo int, hasReadme bool, now time.Time) *domain.Repository {
	return &domain.Repository{
		FullName:  name,
		Stars:     stars,
		HasReadme: hasReadme,
		UpdatedAt: now.AddDate(0, 0, -updatedDaysAgo),
	}
}

func assertSortedByStarsDesc(t *testing.T, repos []*domain.Repository) {
	assert.True(t, sort.SliceIsSorted(repos, func(i, j int) bool {
		return repos[i].Stars > repos[j].Stars
	}), "结果必须按 star 降序")
}

func TestCoarseFilter_Apply(t *testing.T) {
	now := time.Now()
	cfg := domain.CoarseFilterConfig{
		MinStars:            100,
		UpdatedWithinMonths: 12,
		RequireReadme:       true,
		TargetCount:         25,
		MinCount:            10,
	}

	tests := []struct {
		name   string
		repos  []*domain.Repository
		cfg    domain.CoarseFilterConfig
		verify func(*testing.T, []*domain.Repository)
	}{
		{
			name: "star 不够的被过滤",
			repos: []*domain.Repository{
				makeRepo("a/hot", 500, 10, true, now),
				makeRepo("b/cold", 99, 10, true, now),
			},
			cfg: cfg,
			verify: func(t *testing.T, result []*domain.Repository) {
				assert.Len(t, result, 1)
				assert.Equal(t, "a/hot", result[0].FullName)
			},
		},
		{
			name: "太久没更新的被过滤",
			repos: []*domain.Repository{
				makeRepo("a/fresh", 500, 30, true, now),
				makeRepo("b/stale", 500, 400, true, now),
			},
			cfg: cfg,
			verify: func(t *testing.T, result []*domain.Repository) {
				assert.Len(t, result, 1)
				assert.Equal(t, "a/fresh", result[0].FullName)
			},
		},
		{
			name: "要求 README 时没 README 的被过滤",
			repos: []*domain.Repository{
				makeRepo("a/documented", 500, 10, true, now),
				makeRepo("b/bare", 500, 10, false, now),
			},
			cfg: cfg,
			verify: func(t *testing.T, result []*domain.Repository) {
				assert.Len(t, result, 1)
				assert.Equal(t, "a/documented", result[0].FullName)
			},
		},
		{
			name: "不要求 README 时照常保留",
			repos: []*domain.Repository{
				makeRepo("b/bare", 500, 10, false, now),
			},
			cfg: domain.CoarseFilterConfig{MinStars: 100, UpdatedWithinMonths: 12, RequireReadme: false, TargetCount: 25, MinCount: 10},
			verify: func(t *testing.T, result []*domain.Repository) {
				assert.Len(t, result, 1)
			},
		},
		{
			name: "幸存者低于 MinCount 时全部返回不失败",
			repos: []*domain.Repository{
				makeRepo("a/one", 500, 10, true, now),
				makeRepo("b/two", 300, 10, true, now),
			},
			cfg: cfg,
			verify: func(t *testing.T, result []*domain.Repository) {
				assert.Len(t, result, 2)
				assertSortedByStarsDesc(t, result)
			},
		},
		{
			name:  "空输入返回空输出",
			repos: []*domain.Repository{},
			cfg:   cfg,
			verify: func(t *testing.T, result []*domain.Repository) {
				assert.Len(t, result, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &CoarseFilter{nowFunc: func() time.Time { return now }}
			result := f.Apply(tt.repos, tt.cfg)
			tt.verify(t, result)
		})
	}
}

// 对应验收场景：30 个候选，返回 min(25, 通过数) 个，按 star 降序，全部满足谓词
func TestCoarseFilter_ThirtyCandidateScenario(t *testing.T) {
	now := time.Now()
	cfg := domain.CoarseFilterConfig{
		MinStars:            100,
		UpdatedWithinMonths: 12,
		RequireReadme:       true,
		TargetCount:         25,
		MinCount:            10,
	}

	var repos []*domain.Repository
	passing := 0
	for i := 0; i < 30; i++ {
		stars := 50 + i*20 // 前几个低于 100 star，会被过滤
		hasReadme := i%5 != 0
		updatedDaysAgo := 10
		if i%7 == 0 {
			updatedDaysAgo = 400 // 部分太陈旧
		}
		repo := makeRepo(fmt.Sprintf("owner/repo-%02d", i), stars, updatedDaysAgo, hasReadme, now)
		repos = append(repos, repo)
		if stars >= 100 && updatedDaysAgo <= 12*30 && hasReadme {
			passing++
		}
	}

	f := &CoarseFilter{nowFunc: func() time.Time { return now }}
	result := f.Apply(repos, cfg)

	expected := passing
	if expected > cfg.TargetCount {
		expected = cfg.TargetCount
	}
	assert.Len(t, result, expected)
	assertSortedByStarsDesc(t, result)
	for _, repo := range result {
		assert.GreaterOrEqual(t, repo.Stars, cfg.MinStars)
		assert.True(t, repo.HasReadme)
		assert.LessOrEqual(t, now.Sub(repo.UpdatedAt), time.Duration(cfg.UpdatedWithinMonths)*30*24*time.Hour)
	}
}

// 幸存者超过 TargetCount 时只取 star 最高的前 TargetCount 个
func TestCoarseFilter_TruncatesToTargetCount(t *testing.T) {
	now := time.Now()
	cfg := domain.CoarseFilterConfig{
		MinStars:            10,
		UpdatedWithinMonths: 12,
		RequireReadme:       false,
		TargetCount:         5,
		MinCount:            2,
	}

	var repos []*domain.Repository
	for i := 0; i < 20; i++ {
		repos = append(repos, makeRepo(fmt.Sprintf("owner/repo-%02d", i), 100+i, 10, true, now))
	}

	f := &CoarseFilter{nowFunc: func() time.Time { return now }}
	result := f.Apply(repos, cfg)

	assert.Len(t, result, 5)
	assertSortedByStarsDesc(t, result)
	// 确实是 star 最高的那一批
	assert.Equal(t, 119, result[0].Stars)
	assert.Equal(t, 115, result[4].Stars)
}
