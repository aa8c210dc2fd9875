package domain

import (
	"math"
	"time"
)

// SearchMode 搜索模式：控制查询翻译的发散程度
type SearchMode string

const (
	// ModeFocused 聚焦模式：更少、更严格的关键词
	ModeFocused SearchMode = "focused"
	// ModeBalanced 平衡模式：默认
	ModeBalanced SearchMode = "balanced"
	// ModeExploratory 探索模式：扩展更多关键词和 topic
	ModeExploratory SearchMode = "exploratory"
)

// IsValid 判断模式是否合法
func (m SearchMode) IsValid() bool {
	switch m {
	case ModeFocused, ModeBalanced, ModeExploratory:
		return true
	}
	return false
}

// MaxQueryLength 用户查询的最大长度（超过直接拒绝，不发起任何外部调用）
const MaxQueryLength = 200

// NeutralScore 评分缺失时的中性默认值
// 注意：缺失维度必须用它回填后再参与加权，绝不能直接丢弃
// （丢弃会变相放大其他维度的权重）
const NeutralScore = 5.0

// SearchParams 查询翻译的结果，Scout 据此构造 GitHub 搜索
type SearchParams struct {
	Keywords []string `json:"keywords"`
	Language string   `json:"language,omitempty"`
	Topics   []string `json:"topics,omitempty"`
}

// IsUsable 判断参数集是否可用（至少要有一个关键词或 topic）
func (p *SearchParams) IsUsable() bool {
	return p != nil && (len(p.Keywords) > 0 || len(p.Topics) > 0)
}

// Repository 代表一个来自 GitHub 的仓库快照
// 一次 pipeline 运行中每个仓库只有一份实例，抓取后不再修改
type Repository struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"` // 例如 "gohugoio/hugo"
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	Language    string    `json:"language"`
	Topics      []string  `json:"topics"`
	License     string    `json:"license"`
	HasReadme   bool      `json:"has_readme"`
	Archived    bool      `json:"archived"`
	Fork        bool      `json:"fork"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

// DimensionScores 七个维度的评分 (0-10) 加上派生的总分
// 前四个由元数据计算，后三个由 LLM 评估内容得出
type DimensionScores struct {
	Maturity      float64 `json:"maturity"`
	Activity      float64 `json:"activity"`
	Community     float64 `json:"community"`
	Maintenance   float64 `json:"maintenance"`
	Documentation float64 `json:"documentation"`
	EaseOfUse     float64 `json:"ease_of_use"`
	Relevance     float64 `json:"relevance"`

	// Overall 只能由 Aggregate 计算，永远不直接打分
	Overall float64 `json:"overall"`
}

// ScoreWeights 总分的加权向量，七项之和必须为 1
type ScoreWeights struct {
	Maturity      float64
	Activity      float64
	Community     float64
	Maintenance   float64
	Documentation float64
	EaseOfUse     float64
	Relevance     float64
}

// DefaultScoreWeights 默认权重：相关性占大头，文档和活跃度次之
var DefaultScoreWeights = ScoreWeights{
	Maturity:      0.10,
	Activity:      0.15,
	Community:     0.10,
	Maintenance:   0.10,
	Documentation: 0.15,
	EaseOfUse:     0.10,
	Relevance:     0.30,
}

// Sum 权重之和（测试里校验必须等于 1.0）
func (w ScoreWeights) Sum() float64 {
	return w.Maturity + w.Activity + w.Community + w.Maintenance +
		w.Documentation + w.EaseOfUse + w.Relevance
}

// Aggregate 按权重计算总分，总分同样落在 [0,10] 并保留一位小数
// 调用前必须保证七个维度都已填充（缺失的先用 NeutralScore 回填）
func (s *DimensionScores) Aggregate(w ScoreWeights) {
	overall := w.Maturity*s.Maturity +
		w.Activity*s.Activity +
		w.Community*s.Community +
		w.Maintenance*s.Maintenance +
		w.Documentation*s.Documentation +
		w.EaseOfUse*s.EaseOfUse +
		w.Relevance*s.Relevance
	s.Overall = RoundScore(ClampScore(overall))
}

// ClampScore 把评分压回 [0,10]
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// RoundScore 评分统一保留一位小数
func RoundScore(v float64) float64 {
	return math.Round(v*10) / 10
}

// EvaluationResult LLM 评估的原始结果：三个内容维度 + 可选的一句话理由
type EvaluationResult struct {
	Documentation float64 `json:"documentation"`
	EaseOfUse     float64 `json:"ease_of_use"`
	Relevance     float64 `json:"relevance"`
	Justification string  `json:"justification,omitempty"`
}

// DimensionEntry 单个维度的展示条目（前端画雷达图用）
type DimensionEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ScoredRepository 精筛阶段的产物：仓库 + 评分 + 展示用的维度列表
// 只由精筛阶段创建，创建后不再修改
type ScoredRepository struct {
	Repository *Repository      `json:"repository"`
	Scores     DimensionScores  `json:"scores"`
	Breakdown  []DimensionEntry `json:"breakdown"`
}

// BuildBreakdown 按固定顺序展开七个维度
func (s *ScoredRepository) BuildBreakdown() {
	s.Breakdown = []DimensionEntry{
		{Name: "maturity", Score: s.Scores.Maturity},
		{Name: "activity", Score: s.Scores.Activity},
		{Name: "community", Score: s.Scores.Community},
		{Name: "maintenance", Score: s.Scores.Maintenance},
		{Name: "documentation", Score: s.Scores.Documentation},
		{Name: "ease_of_use", Score: s.Scores.EaseOfUse},
		{Name: "relevance", Score: s.Scores.Relevance},
	}
}

// CoarseFilterConfig 初筛阶段的硬阈值配置，每次运行传入一次，不可变
type CoarseFilterConfig struct {
	MinStars            int  // 最低 star 数
	UpdatedWithinMonths int  // 最近更新不超过 N 个月
	RequireReadme       bool // 是否必须有 README
	TargetCount         int  // 目标输出数量
	MinCount            int  // 可接受的最低数量（低于只告警不失败）
}

// DefaultCoarseFilterConfig 默认初筛配置：把候选池压到 10-25 个
var DefaultCoarseFilterConfig = CoarseFilterConfig{
	MinStars:            100,
	UpdatedWithinMonths: 12,
	RequireReadme:       true,
	TargetCount:         25,
	MinCount:            10,
}

// StageTiming 单个阶段的耗时记录（保持执行顺序）
type StageTiming struct {
	Stage   string        `json:"stage"`
	Elapsed time.Duration `json:"elapsed"`
}

// PipelineState 一次 pipeline 运行的全部状态
// 每次调用独占一份，调用返回后即丢弃，不跨运行共享
type PipelineState struct {
	Query               string              `json:"query"`
	Mode                SearchMode          `json:"mode"`
	Params              *SearchParams       `json:"params,omitempty"`
	CandidateRepos      []*Repository       `json:"candidate_repos"`
	CoarseFilteredRepos []*Repository       `json:"coarse_filtered_repos"`
	TopRepos            []*ScoredRepository `json:"top_repos"`
	StageTimings        []StageTiming       `json:"stage_timings"`
	SearchCallCount     int64               `json:"search_call_count"`
	Cached              bool                `json:"cached"`
}

// ModelPricing 某个模型的百万 token 单价（美元）
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// PricingTable 按模型名索引的价格表
type PricingTable map[string]ModelPricing

// DefaultPricingTable 内置价格表（单位：美元/百万 token）
var DefaultPricingTable = PricingTable{
	"gemini-2.5-flash-lite": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-2.5-flash":      {InputPerMillion: 0.30, OutputPerMillion: 2.50},
}

// CostEstimate 一次运行的外部 API 成本预估，纯推导值，不落库
type CostEstimate struct {
	Model         string  `json:"model"`
	RepoCount     int     `json:"repo_count"`
	TotalCalls    int     `json:"total_calls"`
	InputTokens   int64   `json:"input_tokens"`
	OutputTokens  int64   `json:"output_tokens"`
	InputCostUSD  float64 `json:"input_cost_usd"`
	OutputCostUSD float64 `json:"output_cost_usd"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
}
