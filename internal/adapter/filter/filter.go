package filter

import (
	"log"
	"sort"
	"time"

	"github-repo-radar/internal/domain"
)

// CoarseFilter 初筛漏斗：纯规则、同步、无 I/O
// archived/fork 的剔除是 Scout 的职责，这里刻意不再检查一遍
type CoarseFilter struct {
	nowFunc func() time.Time
}

// NewCoarseFilter 创建初筛过滤器
func NewCoarseFilter() *CoarseFilter {
	return &CoarseFilter{nowFunc: time.Now}
}

// Apply 按硬阈值过滤候选池，再按 star 数降序截取
//
// 截取规则（必须严格保持，下游依赖这个确定性行为）：
//   - 幸存者 < MinCount: 全部返回，只打一条低产量告警
//   - 幸存者 > TargetCount: 返回 star 最高的前 TargetCount 个
//   - 其余情况: 全部返回
func (f *CoarseFilter) Apply(repos []*domain.Repository, cfg domain.CoarseFilterConfig) []*domain.Repository {
	current := time.Now()
	if f != nil && f.nowFunc != nil {
		current = f.nowFunc()
	}
	maxAge := time.Duration(cfg.UpdatedWithinMonths) * 30 * 24 * time.Hour

	survivors := make([]*domain.Repository, 0, len(repos))
	for _, repo := range repos {
		if repo.Stars < cfg.MinStars {
			continue
		}
		if current.Sub(repo.UpdatedAt) > maxAge {
			continue
		}
		if cfg.RequireReadme && !repo.HasReadme {
			continue
		}
		survivors = append(survivors, repo)
	}

	// star 降序，保证精筛阶段总是拿到偏热门的输入
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Stars > survivors[j].Stars
	})

	if len(survivors) < cfg.MinCount {
		log.Printf("[Filter] ⚠️ 初筛产量偏低: 只剩 %d 个（期望至少 %d 个），照常继续", len(survivors), cfg.MinCount)
		return survivors
	}
	if len(survivors) > cfg.TargetCount {
		return survivors[:cfg.TargetCount]
	}
	return survivors
}
