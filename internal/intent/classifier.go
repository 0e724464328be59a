package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/llm"
)

// ErrMalformedResponse reports a classifier reply that is not well-formed
// JSON. It is a hard failure of the utterance; the main loop catches and
// logs it, there is no retry here.
var ErrMalformedResponse = errors.New("intent: malformed classifier response")

const systemPrompt = `你是智能管家缪尔赛思 (Muelsyse)。只输出一个 JSON 对象，不要输出任何其他文字。`

const promptTemplate = `请根据用户的话，判断用户的意图。
必须返回 JSON 格式，包含以下字段：
- intent: "light_control" (控制灯), "chat" (闲聊或其他问题)
- parameters: 意图参数。控制灯时为 {"action": "ON"} 或 {"action": "OFF"}，其他情况为 {}
- message: 你回复用户的话
- time: "%s"

用户说: "%s"`

const timestampLayout = "2006-01-02 15:04:05"

// defaultTimeout bounds one classification round trip. Reasoning services
// occasionally stall; without a bound a stalled request would freeze the
// whole listen loop.
const defaultTimeout = 60 * time.Second

// Classifier formats the residual command into an instructional prompt,
// sends it to the reasoning service, and parses the structured reply. The
// semantic mapping from text to intent lives in the external model; this
// type only owns the request/response contract.
type Classifier struct {
	provider llm.Provider
	timeout  time.Duration
	now      func() time.Time
}

// ClassifierOption configures a [Classifier].
type ClassifierOption func(*Classifier)

// WithClock overrides the wall clock embedded in the prompt. Tests use this
// for stable prompts.
func WithClock(now func() time.Time) ClassifierOption {
	return func(c *Classifier) {
		c.now = now
	}
}

// WithTimeout bounds a single classification request. Defaults to 60s;
// zero or negative disables the bound.
func WithTimeout(d time.Duration) ClassifierOption {
	return func(c *Classifier) {
		c.timeout = d
	}
}

// NewClassifier creates a gateway backed by the given completion provider.
func NewClassifier(provider llm.Provider, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		provider: provider,
		timeout:  defaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify sends command to the reasoning service and returns its decision.
// Transport errors and malformed replies are both hard failures of this
// utterance; malformed replies additionally match [ErrMalformedResponse]
// via errors.Is.
func (c *Classifier) Classify(ctx context.Context, command string) (Decision, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	timestamp := c.now().Format(timestampLayout)

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(promptTemplate, timestamp, command)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("intent: classify: %w", err)
	}

	return parseDecision(resp.Content)
}

// parseDecision deserialises the reply with per-field defaulting: a missing
// intent means chat, missing parameters an empty mapping, missing message
// the empty string.
func parseDecision(content string) (Decision, error) {
	payload := stripFences(strings.TrimSpace(content))

	var wire struct {
		Intent     string         `json:"intent"`
		Parameters map[string]any `json:"parameters"`
		Message    string         `json:"message"`
		Time       string         `json:"time"`
	}
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	d := Decision{
		Intent:     Intent(wire.Intent),
		Parameters: wire.Parameters,
		Message:    wire.Message,
		Time:       wire.Time,
	}
	if d.Intent == "" {
		d.Intent = IntentChat
	}
	if d.Parameters == nil {
		d.Parameters = map[string]any{}
	}
	return d, nil
}

// stripFences removes a markdown code fence some models wrap around JSON
// despite instructions not to.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
