package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchMode_IsValid(t *testing.T) {
	assert.True(t, ModeFocused.IsValid())
	assert.True(t, ModeBalanced.IsValid())
	assert.True(t, ModeExploratory.IsValid())
	assert.False(t, SearchMode("aggressive").IsValid())
	assert.False(t, SearchMode("").IsValid())
}

func TestSearchParams_IsUsable(t *testing.T) {
	assert.False(t, (*SearchParams)(nil).IsUsable())
	assert.False(t, (&SearchParams{Language: "Go"}).IsUsable())
	assert.True(t, (&SearchParams{Keywords: []string{"web"}}).IsUsable())
	assert.True(t, (&SearchParams{Topics: []string{"web-framework"}}).IsUsable())
}

func TestDefaultScoreWeights_SumToOne(t *testing.T) {
	// 权重必须严格归一，否则总分会悄悄缩放
	assert.InDelta(t, 1.0, DefaultScoreWeights.Sum(), 1e-9)
}

func TestDimensionScores_Aggregate(t *testing.T) {
	tests := []struct {
		name    string
		scores  DimensionScores
		weights ScoreWeights
		verify  func(*testing.T, float64)
	}{
		{
			name: "全满分时总分是10",
			scores: DimensionScores{
				Maturity: 10, Activity: 10, Community: 10, Maintenance: 10,
				Documentation: 10, EaseOfUse: 10, Relevance: 10,
			},
			weights: DefaultScoreWeights,
			verify: func(t *testing.T, overall float64) {
				assert.Equal(t, 10.0, overall)
			},
		},
		{
			name:    "全零分时总分是0",
			scores:  DimensionScores{},
			weights: DefaultScoreWeights,
			verify: func(t *testing.T, overall float64) {
				assert.Equal(t, 0.0, overall)
			},
		},
		{
			name: "全中性分时总分是5",
			scores: DimensionScores{
				Maturity: NeutralScore, Activity: NeutralScore, Community: NeutralScore,
				Maintenance: NeutralScore, Documentation: NeutralScore,
				EaseOfUse: NeutralScore, Relevance: NeutralScore,
			},
			weights: DefaultScoreWeights,
			verify: func(t *testing.T, overall float64) {
				assert.Equal(t, 5.0, overall)
			},
		},
		{
			name: "总分等于七项固定加权和",
			scores: DimensionScores{
				Maturity: 8, Activity: 6, Community: 4, Maintenance: 7,
				Documentation: 9, EaseOfUse: 5, Relevance: 10,
			},
			weights: DefaultScoreWeights,
			verify: func(t *testing.T, overall float64) {
				expected := 0.10*8 + 0.15*6 + 0.10*4 + 0.10*7 + 0.15*9 + 0.10*5 + 0.30*10
				assert.InDelta(t, RoundScore(expected), overall, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.scores.Aggregate(tt.weights)
			assert.GreaterOrEqual(t, tt.scores.Overall, 0.0)
			assert.LessOrEqual(t, tt.scores.Overall, 10.0)
			assert.False(t, math.IsNaN(tt.scores.Overall))
			tt.verify(t, tt.scores.Overall)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-3))
	assert.Equal(t, 10.0, ClampScore(42))
	assert.Equal(t, 7.5, ClampScore(7.5))
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 7.6, RoundScore(7.55))
	assert.Equal(t, 7.5, RoundScore(7.54))
	assert.Equal(t, 0.0, RoundScore(0.04))
}

func TestScoredRepository_BuildBreakdown(t *testing.T) {
	scored := &ScoredRepository{
		Scores: DimensionScores{
			Maturity: 1, Activity: 2, Community: 3, Maintenance: 4,
			Documentation: 5, EaseOfUse: 6, Relevance: 7,
		},
	}
	scored.BuildBreakdown()

	assert.Len(t, scored.Breakdown, 7)
	// 顺序固定，前端靠它画雷达图
	assert.Equal(t, "maturity", scored.Breakdown[0].Name)
	assert.Equal(t, "relevance", scored.Breakdown[6].Name)
	assert.Equal(t, 7.0, scored.Breakdown[6].Score)
}
