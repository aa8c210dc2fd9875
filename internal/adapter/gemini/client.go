package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel 默认使用的 Gemini 模型
const DefaultModel = "gemini-2.5-flash-lite"

// newJSONModel 创建一个强制返回 JSON 的生成模型
// ResponseMIMEType 能大幅降低解析错误的概率，但不能完全杜绝
func newJSONModel(ctx context.Context, apiKey, modelName string) (*genai.Client, *genai.GenerativeModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return client, model, nil
}

// generateText 调用模型并取出第一段文本
func generateText(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("AI 调用失败: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI 返回内容为空")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("AI 返回格式错误")
	}
	return string(text), nil
}

// extractJSON 智能寻找 JSON 的起止位置
// 即使 AI 返回 "```json { ... } \n ```"，也能精准抠出中间的 { ... }
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("无法提取 JSON, AI 原文: %s", raw)
	}
	return raw[start : end+1], nil
}
