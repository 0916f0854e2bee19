package automod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tppcore/modbot/chat"
)

type Notifier interface {
	SendTimeout(ctx context.Context, msg chat.Message, v Verdict) error
}

type SlackNotifier struct {
	SlackWebhookURL string
	Client          *http.Client
}

var _ Notifier = (*SlackNotifier)(nil)

func (n *SlackNotifier) SendTimeout(ctx context.Context, msg chat.Message, v Verdict) error {
	return n.sendSlackMsg(ctx, slackBody(msg, v))
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

func slackBody(msg chat.Message, v Verdict) string {
	body := "⚠️ Automod Timeout ⚠️\n"
	body += fmt.Sprintf("`%s` / `%s`\n", msg.User.SimpleName, msg.User.ID)
	body += fmt.Sprintf("Rule: `%s`, duration: %s\n", v.Rule, v.Duration)
	body += fmt.Sprintf("Reason: %s\n", v.Reason)
	body += fmt.Sprintf("> %s\n", msg.Text)
	return body
}
