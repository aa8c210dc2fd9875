package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
)

// Notifier 实现了 port.Notifier 接口，把一次搜索的摘要推成飞书卡片
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier 创建飞书推送器
func NewNotifier(webhook string) *Notifier {
	if webhook == "" {
		log.Println("⚠️ 警告: 飞书 Webhook 为空，推送功能将无法工作！")
	}
	return &Notifier{
		webhookURL: webhook,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify 发送飞书卡片消息 (Schema 2.0)，内容是榜单前三名和成本预估
func (n *Notifier) Notify(ctx context.Context, state *domain.PipelineState, cost *domain.CostEstimate) error {
	if n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "Webhook URL 为空")
	}

	title := fmt.Sprintf("🔭 搜索完成: %s", state.Query)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**模式:** %s  |  **候选池:** %d  |  **初筛后:** %d\n\n",
		state.Mode, len(state.CandidateRepos), len(state.CoarseFilteredRepos)))

	top := state.TopRepos
	if len(top) > 3 {
		top = top[:3]
	}
	for i, repo := range top {
		sb.WriteString(fmt.Sprintf("**%d. [%s](%s)**  ⭐ %d  |  总分 %.1f\n%s\n\n",
			i+1, repo.Repository.FullName, repo.Repository.URL,
			repo.Repository.Stars, repo.Scores.Overall, repo.Repository.Description))
	}

	if cost != nil {
		sb.WriteString(fmt.Sprintf("**💰 预估成本:** $%.4f (%d 次调用)\n", cost.TotalCostUSD, cost.TotalCalls))
	}

	payload := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": "blue",
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements": []map[string]interface{}{
					{
						"tag":       "markdown",
						"content":   sb.String(),
						"text_size": "normal",
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "序列化卡片失败", err)
	}

	return common.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return common.WrapError(common.ErrCodeNotification, "飞书请求失败", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return common.WrapError(common.ErrCodeNotification,
				fmt.Sprintf("飞书返回 %d: %s", resp.StatusCode, string(respBody)), nil)
		}
		return nil
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Second),
	)
}
