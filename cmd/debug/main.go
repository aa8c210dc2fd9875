package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github-repo-radar/internal/adapter/filter"
	"github-repo-radar/internal/adapter/gemini"
	"github-repo-radar/internal/adapter/github"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/service"

	"github.com/joho/godotenv"
)

// 调试入口：逐阶段跑一遍 pipeline，打印每一步的中间结果
func main() {
	_ = godotenv.Load()
	githubToken := os.Getenv("GITHUB_TOKEN")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	ctx := context.Background()

	translator, err := gemini.NewTranslator(ctx, geminiKey)
	if err != nil {
		log.Fatalf("❌ 翻译器初始化失败: %v", err)
	}
	searcher := github.NewSearcher(githubToken)

	query := "我想找一个Go语言的轻量级web框架"
	fmt.Printf("🔍 调试模式：逐阶段执行，查询: %q\n", query)

	// 1. 查询翻译
	params, err := translator.Translate(ctx, query, domain.ModeBalanced)
	if err != nil {
		log.Fatalf("❌ 翻译失败: %v", err)
	}
	fmt.Printf("✅ 翻译结果: keywords=%v language=%q topics=%v\n", params.Keywords, params.Language, params.Topics)

	// 2. 候选池收集
	scout := service.NewScout(searcher)
	pool, err := scout.Gather(ctx, params, domain.ModeBalanced)
	if err != nil {
		log.Fatalf("❌ Scout 失败: %v", err)
	}
	fmt.Printf("✅ 候选池: %d 个仓库 (搜索调用 %d 次)\n", len(pool), searcher.CallCount())

	// 3. 初筛
	survivors := filter.NewCoarseFilter().Apply(pool, domain.DefaultCoarseFilterConfig)
	fmt.Printf("✅ 初筛后: %d 个仓库\n", len(survivors))
	for i, repo := range survivors {
		fmt.Printf("   %2d. %-40s ⭐ %d\n", i+1, repo.FullName, repo.Stars)
	}

	// 4. 成本预估（精筛要花多少钱，跑之前先看看）
	cost := service.EstimateCost(len(survivors), gemini.DefaultModel, domain.DefaultPricingTable)
	fmt.Printf("💰 精筛预估成本: $%.4f (%d 次 LLM 调用)\n", cost.TotalCostUSD, cost.TotalCalls)
}
