package intent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DuoDuoJuZi/Myurujisu/internal/intent"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/llm"
	"github.com/DuoDuoJuZi/Myurujisu/pkg/provider/llm/mock"
)

func fixedClock() time.Time {
	return time.Date(2026, time.August, 27, 15, 4, 5, 0, time.UTC)
}

func TestClassifyLightControl(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"intent":"light_control","parameters":{"action":"ON"},"message":"好的，灯已打开","time":"2026-08-27 15:04:05"}`,
		},
	}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	d, err := c.Classify(context.Background(), "请把灯打开")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Intent != intent.IntentLightControl {
		t.Errorf("Intent = %q, want %q", d.Intent, intent.IntentLightControl)
	}
	action, ok := d.StringParam("action")
	if !ok || action != "ON" {
		t.Errorf("StringParam(action) = %q, %v, want ON, true", action, ok)
	}
	if d.Message != "好的，灯已打开" {
		t.Errorf("Message = %q", d.Message)
	}
}

func TestClassifyPromptCarriesCommandAndTimestamp(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{"intent":"chat","message":"hi"}`},
	}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	if _, err := c.Classify(context.Background(), "今天天气怎么样"); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	req := calls[0].Req
	if req.SystemPrompt == "" {
		t.Error("SystemPrompt is empty")
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Fatalf("Messages = %+v, want one user message", req.Messages)
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "今天天气怎么样") {
		t.Errorf("prompt does not carry the command: %q", prompt)
	}
	if !strings.Contains(prompt, "2026-08-27 15:04:05") {
		t.Errorf("prompt does not carry the timestamp: %q", prompt)
	}
}

func TestClassifyDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{}`},
	}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	d, err := c.Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Intent != intent.IntentChat {
		t.Errorf("Intent = %q, want default %q", d.Intent, intent.IntentChat)
	}
	if d.Parameters == nil || len(d.Parameters) != 0 {
		t.Errorf("Parameters = %v, want empty non-nil map", d.Parameters)
	}
	if d.Message != "" {
		t.Errorf("Message = %q, want empty", d.Message)
	}
}

func TestClassifyStripsCodeFences(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: "```json\n{\"intent\":\"chat\",\"message\":\"ok\"}\n```",
		},
	}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	d, err := c.Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Message != "ok" {
		t.Errorf("Message = %q, want ok", d.Message)
	}
}

func TestClassifyMalformedResponse(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "I cannot answer in JSON."},
	}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	_, err := c.Classify(context.Background(), "hello")
	if !errors.Is(err, intent.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestClassifyProviderError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend down")
	provider := &mock.Provider{CompleteErr: wantErr}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	_, err := c.Classify(context.Background(), "hello")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
	if errors.Is(err, intent.ErrMalformedResponse) {
		t.Error("transport error must not match ErrMalformedResponse")
	}
}

// providerFunc adapts a function to llm.Provider so a test can inspect the
// request context.
type providerFunc func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)

func (f providerFunc) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return f(ctx, req)
}

func TestClassifyBoundsTheRequest(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var hasDeadline bool
	provider := providerFunc(func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
		deadline, hasDeadline = ctx.Deadline()
		return &llm.CompletionResponse{Content: `{"intent":"chat"}`}, nil
	})
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock), intent.WithTimeout(time.Minute))

	if _, err := c.Classify(context.Background(), "hello"); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !hasDeadline {
		t.Fatal("request context has no deadline")
	}
	if remaining := time.Until(deadline); remaining > time.Minute {
		t.Errorf("deadline %v from now, want at most 1m", remaining)
	}
}

func TestClassifyZeroTimeoutDisablesBound(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	provider := providerFunc(func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
		_, hasDeadline = ctx.Deadline()
		return &llm.CompletionResponse{Content: `{"intent":"chat"}`}, nil
	})
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock), intent.WithTimeout(0))

	if _, err := c.Classify(context.Background(), "hello"); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if hasDeadline {
		t.Error("zero timeout must leave the context unbounded")
	}
}

func TestClassifyUnknownTagPassesThrough(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{"intent":"alarm_set","message":"还不支持闹钟"}`},
	}
	c := intent.NewClassifier(provider, intent.WithClock(fixedClock))

	d, err := c.Classify(context.Background(), "set an alarm")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	// Tags outside the known set are preserved; the dispatcher routes them
	// to the fallback handler.
	if d.Intent != intent.Intent("alarm_set") {
		t.Errorf("Intent = %q, want alarm_set", d.Intent)
	}
}
