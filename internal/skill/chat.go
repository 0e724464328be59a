package skill

import (
	"context"

	"github.com/DuoDuoJuZi/Myurujisu/internal/intent"
	"github.com/DuoDuoJuZi/Myurujisu/internal/reply"
)

// Compile-time assertions that both speech skills implement Skill.
var (
	_ Skill = (*Chat)(nil)
	_ Skill = (*SpeakMessage)(nil)
)

// Chat speaks the decision's message through the reply player's full
// latency-masking policy: long replies get a filler clip first.
type Chat struct {
	replies *reply.Player
}

// NewChat creates the conversational skill.
func NewChat(replies *reply.Player) *Chat {
	return &Chat{replies: replies}
}

// Execute implements Skill.
func (c *Chat) Execute(ctx context.Context, decision intent.Decision) (Result, error) {
	if err := c.replies.Deliver(ctx, decision.Message); err != nil {
		return Result{}, err
	}
	return Result{Spoke: decision.Message != ""}, nil
}

// SpeakMessage is the fallback for unrecognised intent tags: it speaks the
// message directly, with no filler regardless of length.
type SpeakMessage struct {
	replies *reply.Player
}

// NewSpeakMessage creates the fallback skill.
func NewSpeakMessage(replies *reply.Player) *SpeakMessage {
	return &SpeakMessage{replies: replies}
}

// Execute implements Skill.
func (s *SpeakMessage) Execute(ctx context.Context, decision intent.Decision) (Result, error) {
	if err := s.replies.Say(ctx, decision.Message); err != nil {
		return Result{}, err
	}
	return Result{Spoke: decision.Message != ""}, nil
}
