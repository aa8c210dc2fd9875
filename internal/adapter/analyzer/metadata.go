package analyzer

import (
	"math"
	"time"

	"github-repo-radar/internal/domain"
)

// 元数据评分：四个维度全部由 Repository 快照确定性推导
// 公式是可调参数（见 DESIGN.md），但给定同一份快照和同一个时钟，结果必须一致

// maturityScore 成熟度：项目年龄（3 年封顶）和 star 量级各占一半
// log10(star) 在 5 个数量级（10 万 star）处拉满
func maturityScore(repo *domain.Repository, now time.Time) float64 {
	ageYears := now.Sub(repo.CreatedAt).Hours() / 24 / 365
	if ageYears < 0 {
		ageYears = 0
	}
	ageScore := math.Min(ageYears/3, 1) * 10

	starScore := math.Min(math.Log10(float64(repo.Stars)+1)/5, 1) * 10

	return domain.RoundScore(domain.ClampScore(0.5*ageScore + 0.5*starScore))
}

// activityScore 活跃度：最近一次 push 的新鲜程度
// 7 天内满分，一年以上零分，中间线性衰减
func activityScore(repo *domain.Repository, now time.Time) float64 {
	days := now.Sub(repo.PushedAt).Hours() / 24
	if days <= 7 {
		return 10
	}
	if days >= 365 {
		return 0
	}
	return domain.RoundScore(10 * (1 - (days-7)/(365-7)))
}

// communityScore 社区热度：fork/star 比例和 fork 绝对量各占一半
// fork 比例高说明有人真的在用和改，不只是点了个 star
func communityScore(repo *domain.Repository) float64 {
	forkVolume := math.Min(math.Log10(float64(repo.Forks)+1)/4, 1) * 10

	if repo.Stars == 0 {
		return domain.RoundScore(domain.ClampScore(forkVolume))
	}

	ratio := float64(repo.Forks) / float64(repo.Stars)
	ratioScore := math.Min(ratio/0.3, 1) * 10

	return domain.RoundScore(domain.ClampScore(0.5*ratioScore + 0.5*forkVolume))
}

// maintenanceScore 维护状况：更新新鲜度为主，未关闭 issue 压力为辅
func maintenanceScore(repo *domain.Repository, now time.Time) float64 {
	days := now.Sub(repo.UpdatedAt).Hours() / 24
	var freshness float64
	switch {
	case days <= 30:
		freshness = 10
	case days >= 365:
		freshness = 0
	default:
		freshness = 10 * (1 - (days-30)/(365-30))
	}

	// 每 star 的未关闭 issue 数，load 0.2 以上视为维护压力拉满
	load := float64(repo.OpenIssues) / (float64(repo.Stars) + 1)
	pressure := 10 - math.Min(load*50, 10)

	return domain.RoundScore(domain.ClampScore(0.6*freshness + 0.4*pressure))
}

// metadataScores 一次算出四个元数据维度
func metadataScores(repo *domain.Repository, now time.Time) (maturity, activity, community, maintenance float64) {
	return maturityScore(repo, now),
		activityScore(repo, now),
		communityScore(repo),
		maintenanceScore(repo, now)
}
