package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/shiftline/internal/model"
)

var _ model.Reporter = (*SlackReporter)(nil)

// maxSlackErrors caps how many record errors are listed in one message.
const maxSlackErrors = 10

// SlackReporter posts run summaries to a Slack channel via Incoming Webhooks.
type SlackReporter struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	// sleep is swapped in tests so a 429 does not stall the suite.
	sleep func(time.Duration)
}

// NewSlackReporter returns a reporter that posts each summary to a webhook.
func NewSlackReporter(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackReporter {
	return &SlackReporter{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Report sends one Block Kit message per summary. A 429 is retried once
// after the Retry-After delay.
func (r *SlackReporter) Report(s model.Summary) error {
	body, err := json.Marshal(buildPayload(s))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := r.post(body)
	if err != nil {
		return err
	}
	retried := false
	if status == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		r.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		r.sleep(time.Duration(secs) * time.Second)

		status, _, err = r.post(body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		retried = true
	}
	if status != http.StatusOK {
		if retried {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		return fmt.Errorf("slack returned %d", status)
	}
	r.logger.Info("slack summary sent", "employer", s.Employer, "retried", retried)
	return nil
}

func (r *SlackReporter) post(body []byte) (int, string, error) {
	resp, err := r.httpClient.Post(r.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage pushes a sample summary through r to verify the
// integration end to end.
func SendTestMessage(r model.Reporter) error {
	return r.Report(model.Summary{
		RunID:     "test-run",
		Employer:  "shiftline-test",
		Fetched:   3,
		Created:   1,
		Updated:   1,
		Skipped:   1,
		StartedAt: time.Now(),
		Duration:  1500 * time.Millisecond,
	})
}

func buildPayload(s model.Summary) slackPayload {
	title := s.Employer + " ingestion run"
	if s.DryRun {
		title += " (dry run)"
	}
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Fetched:*\n" + strconv.Itoa(s.Fetched)},
				{Type: "mrkdwn", Text: "*Created:*\n" + strconv.Itoa(s.Created)},
				{Type: "mrkdwn", Text: "*Updated:*\n" + strconv.Itoa(s.Updated)},
				{Type: "mrkdwn", Text: "*Skipped:*\n" + strconv.Itoa(s.Skipped)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Failed:*\n" + strconv.Itoa(s.Failed)},
				{Type: "mrkdwn", Text: "*Degraded:*\n" + strconv.Itoa(s.Degraded)},
				{Type: "mrkdwn", Text: "*Pages:*\n" + strconv.Itoa(s.Pages)},
				{Type: "mrkdwn", Text: "*Duration:*\n" + s.Duration.Round(time.Millisecond).String()},
			},
		},
	}

	if len(s.Errors) > 0 {
		var b strings.Builder
		b.WriteString("*Errors:*")
		for i, e := range s.Errors {
			if i == maxSlackErrors {
				fmt.Fprintf(&b, "\n_…and %d more_", len(s.Errors)-maxSlackErrors)
				break
			}
			fmt.Fprintf(&b, "\n• `%s` %s: %s", e.SourceID, e.Stage, strings.Join(e.Reasons, "; "))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: b.String()},
		})
	}
	return slackPayload{Blocks: blocks}
}
