package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"

	"github.com/google/generative-ai-go/genai"
)

// maxContentChars README 内容送入 LLM 前的截断长度，防止 Token 爆炸
const maxContentChars = 12000

// Evaluator 实现了 port.Evaluator 接口
// 对单个仓库的 README 内容做文档质量、易用性、相关性三个维度的评估
type Evaluator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewEvaluator 初始化内容评估器
func NewEvaluator(ctx context.Context, apiKey string) (*Evaluator, error) {
	client, model, err := newJSONModel(ctx, apiKey, DefaultModel)
	if err != nil {
		return nil, err
	}
	return &Evaluator{client: client, model: model}, nil
}

// 接收 AI 返回的 JSON
type evaluationResponse struct {
	Documentation float64 `json:"documentation"`
	EaseOfUse     float64 `json:"ease_of_use"`
	Relevance     float64 `json:"relevance"`
	Justification string  `json:"justification"`
}

// Evaluate 评估单个仓库
// 调用失败或返回格式错误时返回 EVALUATOR_ERROR，由精筛阶段降级成中性分
func (e *Evaluator) Evaluate(ctx context.Context, repo *domain.Repository, content, query string) (*domain.EvaluationResult, error) {
	prompt := buildEvaluatePrompt(repo, content, query)

	raw, err := generateText(ctx, e.model, prompt)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeEvaluator, fmt.Sprintf("评估 %s 失败", repo.FullName), err)
	}

	result, err := parseEvaluation(raw)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeEvaluator, fmt.Sprintf("评估 %s 的返回不可解析", repo.FullName), err)
	}
	return result, nil
}

// buildEvaluatePrompt 构造评估 Prompt：仓库内容 + 用户原始需求
func buildEvaluatePrompt(repo *domain.Repository, content, query string) string {
	content = truncateContent(content, maxContentChars)
	if content == "" {
		content = "(README 获取失败或不存在)"
	}

	return fmt.Sprintf(`
你是一个资深的开源项目评审专家。用户正在寻找满足以下需求的项目：

用户需求: %s

请评估下面这个项目：

项目名称: %s
项目描述: %s
README 内容:
---
%s
---

请严格按照 JSON 格式返回评估结果，包含以下字段：
1. documentation (0-10): 文档质量。README 是否完整、有示例、有安装说明。
2. ease_of_use (0-10): 易用性。上手难度、API 设计、配置复杂度。
3. relevance (0-10): 与用户需求的相关程度。
4. justification: 一句话的中文评价理由。

请直接返回 JSON，不要包含 Markdown 格式标记。
`, query, repo.FullName, repo.Description, content)
}

// truncateContent 按字节上限截断，但不允许切断多字节字符
// 中文 README 很常见，切出半个字符会给 LLM 送去非法 UTF-8
func truncateContent(content string, max int) string {
	if len(content) <= max {
		return content
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// parseEvaluation 清洗并解析评估结果，分数压回 [0,10] 并保留一位小数
func parseEvaluation(raw string) (*domain.EvaluationResult, error) {
	cleanJSON, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var res evaluationResponse
	if err := json.Unmarshal([]byte(cleanJSON), &res); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %w | 原文: %s", err, cleanJSON)
	}

	return &domain.EvaluationResult{
		Documentation: domain.RoundScore(domain.ClampScore(res.Documentation)),
		EaseOfUse:     domain.RoundScore(domain.ClampScore(res.EaseOfUse)),
		Relevance:     domain.RoundScore(domain.ClampScore(res.Relevance)),
		Justification: res.Justification,
	}, nil
}
