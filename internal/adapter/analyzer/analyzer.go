package analyzer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"

	"golang.org/x/sync/errgroup"
)

const (
	// TopResultCount 精筛最终输出的榜单长度
	TopResultCount = 10

	// 单次内容抓取和单次 LLM 评估的超时，必须远小于整条 pipeline 的截止时间
	// 这样单个卡死的调用只会降级成默认分，不会拖垮整次运行
	fetchTimeout    = 10 * time.Second
	evaluateTimeout = 30 * time.Second
)

// FineScorer 精筛打分器：内容抓取 + 元数据评分 + LLM 评估 + 加权聚合 + 排名
type FineScorer struct {
	fetcher       port.ContentFetcher
	evaluator     port.Evaluator
	weights       domain.ScoreWeights
	maxGoroutines int // LLM 评估的最大并发数
	nowFunc       func() time.Time
}

// NewFineScorer 创建精筛打分器
func NewFineScorer(fetcher port.ContentFetcher, evaluator port.Evaluator) *FineScorer {
	return &FineScorer{
		fetcher:       fetcher,
		evaluator:     evaluator,
		weights:       domain.DefaultScoreWeights,
		maxGoroutines: 3,        // 默认并发数为3，LLM 是又贵又限流的资源
		nowFunc:       time.Now, // 便于测试注入当前时间
	}
}

// SetMaxGoroutines 设置 LLM 评估的最大并发数
func (s *FineScorer) SetMaxGoroutines(max int) {
	if max > 0 {
		s.maxGoroutines = max
	}
}

// SetWeights 替换权重向量（必须和为 1，调用方负责保证）
func (s *FineScorer) SetWeights(w domain.ScoreWeights) {
	s.weights = w
}

// scoringJob 单个仓库的打分任务：仓库 + 已抓取的 README 内容
type scoringJob struct {
	repo    *domain.Repository
	content string
}

// ScoreRepositories 对初筛幸存者做精筛，返回排好序的前 10 名
//
// 失败语义：单个仓库的抓取或评估失败一律降级（空内容 / 中性分 5.0），
// 仓库绝不会因为外部调用失败而被丢出榜单——丢弃会让排名偏向
// "运气好所有外部调用都成功" 的仓库。只有输入列表本身为空才算结构性错误。
func (s *FineScorer) ScoreRepositories(ctx context.Context, repos []*domain.Repository, query string) ([]*domain.ScoredRepository, error) {
	if len(repos) == 0 {
		return nil, common.NewError(common.ErrCodeInvalidPipelineState, "精筛的输入列表为空")
	}
	for _, repo := range repos {
		if repo == nil || repo.FullName == "" {
			return nil, common.NewError(common.ErrCodeInvalidPipelineState, "精筛的输入列表包含非法仓库")
		}
	}

	// 1. 并发抓取所有仓库的 README（无界扇出，抓取是轻量读操作）
	contents := s.fetchContents(ctx, repos)

	// 2. 固定大小的 worker 池做 LLM 评估 + 打分
	fmt.Printf("🧠 开始精筛打分，共 %d 个仓库，LLM 最大并发数: %d\n", len(repos), s.maxGoroutines)

	jobs := make(chan *scoringJob, len(repos))
	results := make(chan *domain.ScoredRepository, len(repos))

	var wg sync.WaitGroup
	for i := 0; i < s.maxGoroutines; i++ {
		wg.Add(1)
		go s.scoreWorker(ctx, query, jobs, results, &wg, i+1)
	}

	for i, repo := range repos {
		jobs <- &scoringJob{repo: repo, content: contents[i]}
	}
	close(jobs)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Println("⏰ 精筛因超时或取消而中断")
		return nil, ctx.Err()
	}
	close(results)

	scored := make([]*domain.ScoredRepository, 0, len(repos))
	for result := range results {
		scored = append(scored, result)
	}

	// 3. 排名：总分降序 → star 降序 → 全名升序（保证测试可复现）
	rankScored(scored)

	if len(scored) > TopResultCount {
		scored = scored[:TopResultCount]
	}
	fmt.Printf("✅ 精筛完成，输出 %d 个仓库\n", len(scored))
	return scored, nil
}

// fetchContents 并发抓取 README，抓取失败降级成空字符串
// 一个打不开的仓库绝不能阻塞其他仓库的打分
func (s *FineScorer) fetchContents(ctx context.Context, repos []*domain.Repository) []string {
	contents := make([]string, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, fetchTimeout)
			defer cancel()

			content, err := s.fetcher.FetchReadme(fetchCtx, repo.Owner, repo.Name)
			if err != nil {
				log.Printf("[Scorer] ⚠️ 抓取 %s 的 README 失败: %v，降级为空内容", repo.FullName, err)
				contents[i] = ""
				return nil // 单点失败不终止批次
			}
			contents[i] = content
			return nil
		})
	}
	// worker 永远返回 nil，这里的 err 只可能来自 ctx
	_ = g.Wait()

	return contents
}

// scoreWorker 工作协程：对单个仓库评估 + 聚合
func (s *FineScorer) scoreWorker(
	ctx context.Context,
	query string,
	jobs <-chan *scoringJob,
	results chan<- *domain.ScoredRepository,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for job := range jobs {
		fmt.Printf("   [Worker-%d] 正在评估 %s...\n", workerID, job.repo.FullName)

		evalCtx, cancel := context.WithTimeout(ctx, evaluateTimeout)
		eval, err := s.evaluator.Evaluate(evalCtx, job.repo, job.content, query)
		cancel()

		if err != nil || eval == nil {
			// 评估失败：三个内容维度全部回填中性分，仓库照常进榜
			fmt.Printf("   [Worker-%d] ❌ %s 评估失败: %v，使用中性默认分\n", workerID, job.repo.FullName, err)
			eval = &domain.EvaluationResult{
				Documentation: domain.NeutralScore,
				EaseOfUse:     domain.NeutralScore,
				Relevance:     domain.NeutralScore,
			}
		} else {
			fmt.Printf("   [Worker-%d] ✅ %s 评估完成 (相关性: %.1f)\n", workerID, job.repo.FullName, eval.Relevance)
		}

		results <- s.buildScored(job.repo, eval)
	}
}

// buildScored 合并元数据分和评估分，算总分并展开维度列表
func (s *FineScorer) buildScored(repo *domain.Repository, eval *domain.EvaluationResult) *domain.ScoredRepository {
	maturity, activity, community, maintenance := metadataScores(repo, s.nowFunc())

	scored := &domain.ScoredRepository{
		Repository: repo,
		Scores: domain.DimensionScores{
			Maturity:      maturity,
			Activity:      activity,
			Community:     community,
			Maintenance:   maintenance,
			Documentation: eval.Documentation,
			EaseOfUse:     eval.EaseOfUse,
			Relevance:     eval.Relevance,
		},
	}
	scored.Scores.Aggregate(s.weights)
	scored.BuildBreakdown()
	return scored
}

// rankScored 确定性排名：总分降序 → star 降序 → 全名升序
func rankScored(scored []*domain.ScoredRepository) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Scores.Overall != scored[j].Scores.Overall {
			return scored[i].Scores.Overall > scored[j].Scores.Overall
		}
		if scored[i].Repository.Stars != scored[j].Repository.Stars {
			return scored[i].Repository.Stars > scored[j].Repository.Stars
		}
		return scored[i].Repository.FullName < scored[j].Repository.FullName
	})
}
