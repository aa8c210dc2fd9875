package service

import "github-repo-radar/internal/domain"

// 成本预估用的固定 token 假设
// 一次翻译调用 + 每个仓库一次评估调用，token 数按经验值拍死
const (
	translateInputTokens  = 600
	translateOutputTokens = 250
	evaluateInputTokens   = 3000 // README 截断后 + Prompt 模板
	evaluateOutputTokens  = 400
)

// EstimateCost 预估一次运行的外部 API 成本
// 纯函数：无 I/O、无副作用，repoCount 严格单调递增，价格线性
// 供 cmd 层打印和推送用，pipeline 本身不消费它
func EstimateCost(repoCount int, model string, table domain.PricingTable) domain.CostEstimate {
	if repoCount < 0 {
		repoCount = 0
	}

	inputTokens := int64(translateInputTokens) + int64(repoCount)*evaluateInputTokens
	outputTokens := int64(translateOutputTokens) + int64(repoCount)*evaluateOutputTokens

	pricing := table[model]
	inputCost := float64(inputTokens) / 1e6 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1e6 * pricing.OutputPerMillion

	return domain.CostEstimate{
		Model:         model,
		RepoCount:     repoCount,
		TotalCalls:    1 + repoCount,
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		InputCostUSD:  inputCost,
		OutputCostUSD: outputCost,
		TotalCostUSD:  inputCost + outputCost,
	}
}
