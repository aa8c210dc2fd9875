package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"
)

// cacheTTL 榜单缓存的有效期
const cacheTTL = time.Hour

// PipelineService 搜索 pipeline 的编排器
// 所有依赖都显式注入，没有任何包级单例；每次运行独占一份 PipelineState
type PipelineService struct {
	translator port.Translator
	searcher   port.Searcher
	filter     port.Filter
	scorer     port.Scorer
	cache      port.ResultCache // 可以为 nil（不启用缓存）
	filterCfg  domain.CoarseFilterConfig

	subscribers []ProgressFunc
}

// NewPipelineService 创建 pipeline 编排器
func NewPipelineService(
	translator port.Translator,
	searcher port.Searcher,
	filter port.Filter,
	scorer port.Scorer,
	cache port.ResultCache,
) *PipelineService {
	return &PipelineService{
		translator: translator,
		searcher:   searcher,
		filter:     filter,
		scorer:     scorer,
		cache:      cache,
		filterCfg:  domain.DefaultCoarseFilterConfig,
	}
}

// SetFilterConfig 替换初筛配置
func (p *PipelineService) SetFilterConfig(cfg domain.CoarseFilterConfig) {
	p.filterCfg = cfg
}

// ExecuteSearch 执行一次完整的搜索 pipeline
//
// 输入校验在任何外部调用之前完成；超时命中时返回 PIPELINE_TIMEOUT，
// 但 state 里已收集到的阶段耗时照常返回，方便定位卡在哪一步
func (p *PipelineService) ExecuteSearch(ctx context.Context, query string, mode domain.SearchMode, timeout time.Duration) (*domain.PipelineState, error) {
	// 1. 输入校验（还没发起任何外部调用，这里拒绝是零成本的）
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewError(common.ErrCodeInvalidQuery, "查询不能为空")
	}
	// 上限按字符数算，不是字节数：中文查询是这个工具的日常输入
	if utf8.RuneCountInString(query) > domain.MaxQueryLength {
		return nil, common.NewError(common.ErrCodeInvalidQuery,
			fmt.Sprintf("查询超过 %d 字符上限", domain.MaxQueryLength))
	}
	if !mode.IsValid() {
		return nil, common.NewError(common.ErrCodeInvalidQuery,
			fmt.Sprintf("未知模式: %s", mode))
	}

	state := &domain.PipelineState{
		Query: query,
		Mode:  mode,
	}

	// 2. 查缓存：命中就一次外部调用都不用发
	if p.cache != nil {
		if cached, hit, err := p.cache.Get(ctx, query, mode); err != nil {
			log.Printf("[Pipeline] ⚠️ 读取缓存失败: %v，照常执行", err)
		} else if hit {
			fmt.Printf("⚡ 缓存命中: %q (%s)\n", query, mode)
			state.TopRepos = cached
			state.Cached = true
			return state, nil
		}
	}

	// 3. 整条 pipeline 的总截止时间
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fmt.Printf("🚀 开始搜索: %q (模式: %s, 超时: %s)\n", query, mode, timeout)

	// 4. 查询翻译
	params, err := p.runTranslate(ctx, state)
	if err != nil {
		return state, p.mapTimeout(ctx, err)
	}
	state.Params = params

	// 5. 收集候选池
	if err := p.runScout(ctx, state, params); err != nil {
		return state, p.mapTimeout(ctx, err)
	}

	// 6. 初筛
	p.runCoarseFilter(state)

	// 7. 精筛打分
	if err := p.runFineScoring(ctx, state); err != nil {
		return state, p.mapTimeout(ctx, err)
	}

	// 8. 回写缓存（尽力而为，失败只告警）
	if p.cache != nil {
		if err := p.cache.Put(ctx, query, mode, state.TopRepos, cacheTTL); err != nil {
			log.Printf("[Pipeline] ⚠️ 写入缓存失败: %v", err)
		}
	}

	fmt.Printf("🎉 搜索完成: 候选 %d → 初筛 %d → 最终 %d\n",
		len(state.CandidateRepos), len(state.CoarseFilteredRepos), len(state.TopRepos))
	return state, nil
}

// runTranslate 查询翻译阶段
func (p *PipelineService) runTranslate(ctx context.Context, state *domain.PipelineState) (*domain.SearchParams, error) {
	p.emit(ProgressEvent{Stage: StageTranslate, Status: EventStart})
	start := time.Now()

	params, err := p.translator.Translate(ctx, state.Query, state.Mode)

	elapsed := p.recordStage(state, StageTranslate, start)
	if err != nil {
		return nil, err
	}
	p.emit(ProgressEvent{Stage: StageTranslate, Status: EventComplete, Count: len(params.Keywords), Elapsed: elapsed})
	return params, nil
}

// runScout 候选池收集阶段
func (p *PipelineService) runScout(ctx context.Context, state *domain.PipelineState, params *domain.SearchParams) error {
	p.emit(ProgressEvent{Stage: StageScout, Status: EventStart})
	start := time.Now()

	scout := NewScout(p.searcher)
	pool, err := scout.Gather(ctx, params, state.Mode)

	elapsed := p.recordStage(state, StageScout, start)
	state.SearchCallCount = p.searcher.CallCount()
	if err != nil {
		return err
	}
	state.CandidateRepos = pool
	p.emit(ProgressEvent{Stage: StageScout, Status: EventComplete, Count: len(pool), Elapsed: elapsed})
	return nil
}

// runCoarseFilter 初筛阶段（纯计算，不会失败）
func (p *PipelineService) runCoarseFilter(state *domain.PipelineState) {
	p.emit(ProgressEvent{Stage: StageCoarseFilter, Status: EventStart})
	start := time.Now()

	state.CoarseFilteredRepos = p.filter.Apply(state.CandidateRepos, p.filterCfg)

	elapsed := p.recordStage(state, StageCoarseFilter, start)
	p.emit(ProgressEvent{Stage: StageCoarseFilter, Status: EventComplete, Count: len(state.CoarseFilteredRepos), Elapsed: elapsed})
}

// runFineScoring 精筛打分阶段
func (p *PipelineService) runFineScoring(ctx context.Context, state *domain.PipelineState) error {
	p.emit(ProgressEvent{Stage: StageFineScoring, Status: EventStart})
	start := time.Now()

	top, err := p.scorer.ScoreRepositories(ctx, state.CoarseFilteredRepos, state.Query)

	elapsed := p.recordStage(state, StageFineScoring, start)
	if err != nil {
		return err
	}
	state.TopRepos = top
	p.emit(ProgressEvent{Stage: StageFineScoring, Status: EventComplete, Count: len(top), Elapsed: elapsed})
	return nil
}

// recordStage 记录阶段耗时并返回它
func (p *PipelineService) recordStage(state *domain.PipelineState, stage string, start time.Time) time.Duration {
	elapsed := time.Since(start)
	state.StageTimings = append(state.StageTimings, domain.StageTiming{Stage: stage, Elapsed: elapsed})
	return elapsed
}

// mapTimeout 把截止时间命中翻译成 PIPELINE_TIMEOUT，其他错误原样透传
func (p *PipelineService) mapTimeout(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return common.WrapError(common.ErrCodePipelineTimeout, "pipeline 超过总截止时间", err)
	}
	return err
}
