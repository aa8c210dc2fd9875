package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"

	"github.com/google/generative-ai-go/genai"
)

// Translator 实现了 port.Translator 接口
// 把用户的自然语言需求翻译成 GitHub 搜索参数
type Translator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewTranslator 初始化查询翻译器
func NewTranslator(ctx context.Context, apiKey string) (*Translator, error) {
	client, model, err := newJSONModel(ctx, apiKey, DefaultModel)
	if err != nil {
		return nil, err
	}
	return &Translator{client: client, model: model}, nil
}

// 接收 AI 返回的 JSON
type translationResponse struct {
	Keywords []string `json:"keywords"`
	Language string   `json:"language"`
	Topics   []string `json:"topics"`
}

// Translate 翻译查询；翻译不出可用参数时返回 TRANSLATION_ERROR
// 这是结构性错误，必须原样抛给调用方，不许静默给默认值
func (t *Translator) Translate(ctx context.Context, query string, mode domain.SearchMode) (*domain.SearchParams, error) {
	prompt := buildTranslatePrompt(query, mode)

	raw, err := generateText(ctx, t.model, prompt)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeTranslation, "查询翻译失败", err)
	}

	params, err := parseSearchParams(raw)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeTranslation, "翻译结果不可用", err)
	}
	return params, nil
}

// buildTranslatePrompt 构造翻译 Prompt，模式控制发散程度
func buildTranslatePrompt(query string, mode domain.SearchMode) string {
	var breadth string
	switch mode {
	case domain.ModeFocused:
		breadth = "最多给出 3 个最核心的关键词，不要扩展 topic（topics 返回空数组）。"
	case domain.ModeExploratory:
		breadth = "可以给出最多 6 个关键词和最多 4 个相关 topic，允许发散联想近义概念。"
	default:
		breadth = "给出 3-4 个关键词和最多 2 个相关 topic。"
	}

	return fmt.Sprintf(`
你是一个 GitHub 搜索专家。请把下面这句用户需求翻译成 GitHub 仓库搜索参数：

用户需求: %s

要求：
1. keywords: 英文搜索关键词数组。%s
2. language: 如果需求里明确或隐含了编程语言，给出语言名（例如 "Go"、"Python"），否则留空字符串。
3. topics: GitHub topic 标签数组（小写、连字符风格，例如 "machine-learning"）。

请严格按照 JSON 格式返回，只包含 keywords、language、topics 三个字段。
请直接返回 JSON，不要包含 Markdown 格式标记。
`, query, breadth)
}

// parseSearchParams 清洗并解析 AI 返回的 JSON
func parseSearchParams(raw string) (*domain.SearchParams, error) {
	cleanJSON, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var res translationResponse
	if err := json.Unmarshal([]byte(cleanJSON), &res); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %w | 原文: %s", err, cleanJSON)
	}

	// 清洗：去掉空白关键词
	params := &domain.SearchParams{
		Language: strings.TrimSpace(res.Language),
	}
	for _, kw := range res.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			params.Keywords = append(params.Keywords, kw)
		}
	}
	for _, topic := range res.Topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			params.Topics = append(params.Topics, topic)
		}
	}

	if !params.IsUsable() {
		return nil, fmt.Errorf("翻译结果没有任何可用的关键词或 topic")
	}
	return params, nil
}
