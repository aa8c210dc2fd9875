package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github-repo-radar/internal/adapter/analyzer"
	"github-repo-radar/internal/adapter/feishu"
	"github-repo-radar/internal/adapter/filter"
	"github-repo-radar/internal/adapter/gemini"
	"github-repo-radar/internal/adapter/github"
	"github-repo-radar/internal/adapter/repository"
	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"
	"github-repo-radar/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// 1. 定义命令行参数
	query := flag.String("q", "", "搜索需求，用大白话就行")
	mode := flag.String("mode", "balanced", "搜索模式: focused / balanced / exploratory")
	timeoutSec := flag.Int("timeout", 60, "整条 pipeline 的超时时间（秒）")
	concurrency := flag.Int("concurrency", 3, "LLM 评估并发数")
	flag.Parse()

	if *query == "" {
		fmt.Println("⚠️ 请输入你的需求，用大白话就行。")
		fmt.Println("例如: -q '我想找一个Go语言的轻量级web框架'")
		os.Exit(1)
	}

	// 2. 加载环境变量（.env 不存在也没关系，直接读进程环境）
	_ = godotenv.Load()
	githubToken := os.Getenv("GITHUB_TOKEN")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("❌ 缺少 GEMINI_API_KEY 环境变量")
	}

	ctx := context.Background()

	// 3. 初始化 AI 依赖
	translator, err := gemini.NewTranslator(ctx, geminiKey)
	if err != nil {
		log.Fatalf("❌ 翻译器初始化失败: %v", err)
	}
	evaluator, err := gemini.NewEvaluator(ctx, geminiKey)
	if err != nil {
		log.Fatalf("❌ 评估器初始化失败: %v", err)
	}

	// 4. 初始化 GitHub 依赖
	searcher := github.NewSearcher(githubToken)
	fetcher := github.NewFetcher(githubToken)

	scorer := analyzer.NewFineScorer(fetcher, evaluator)
	scorer.SetMaxGoroutines(*concurrency)

	// 5. 缓存是可选的：没配 DSN 就跑无缓存模式
	var cache port.ResultCache
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		pgCache, err := repository.NewPostgresCache(dsn)
		if err != nil {
			log.Printf("⚠️ 缓存初始化失败: %v，继续以无缓存模式运行", err)
		} else {
			cache = pgCache
		}
	}

	// 6. 组装 pipeline
	pipeline := service.NewPipelineService(translator, searcher, filter.NewCoarseFilter(), scorer, cache)
	pipeline.Subscribe(func(e service.ProgressEvent) {
		if e.Status == service.EventComplete {
			fmt.Printf("   ⏱  [%s] 完成: %d 条, 耗时 %s\n", e.Stage, e.Count, e.Elapsed.Round(time.Millisecond))
		}
	})

	// 7. 执行搜索
	state, err := pipeline.ExecuteSearch(ctx, *query, domain.SearchMode(*mode), time.Duration(*timeoutSec)*time.Second)
	if err != nil {
		log.Fatalf("❌ 搜索失败 [%s]: %v", common.CodeOf(err), err)
	}

	// 8. 打印榜单
	printResults(state)

	// 9. 成本预估 + 可选推送
	cost := service.EstimateCost(len(state.CoarseFilteredRepos), gemini.DefaultModel, domain.DefaultPricingTable)
	fmt.Printf("\n💰 本次运行预估成本: $%.4f (LLM 调用 %d 次, 搜索调用 %d 次)\n",
		cost.TotalCostUSD, cost.TotalCalls, state.SearchCallCount)

	if webhook := os.Getenv("FEISHU_WEBHOOK"); webhook != "" {
		notifier := feishu.NewNotifier(webhook)
		if err := notifier.Notify(ctx, state, &cost); err != nil {
			log.Printf("⚠️ 推送飞书失败: %v", err)
		} else {
			fmt.Println("📲 已推送到飞书")
		}
	}
}

// printResults 打印最终榜单
func printResults(state *domain.PipelineState) {
	if state.Cached {
		fmt.Println("\n⚡ (以下结果来自缓存)")
	}
	fmt.Println("\n================ [ 搜索结果 ] ================")
	for i, repo := range state.TopRepos {
		fmt.Printf("%2d. %-40s ⭐ %-7d 总分 %.1f\n", i+1, repo.Repository.FullName, repo.Repository.Stars, repo.Scores.Overall)
		fmt.Printf("    %s\n", repo.Repository.URL)
		fmt.Printf("    文档 %.1f | 易用 %.1f | 相关 %.1f | 成熟 %.1f | 活跃 %.1f\n",
			repo.Scores.Documentation, repo.Scores.EaseOfUse, repo.Scores.Relevance,
			repo.Scores.Maturity, repo.Scores.Activity)
	}
	fmt.Println("==============================================")
}
