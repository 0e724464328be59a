// Package skill maps classified intents to their side effects.
//
// A Registry routes each known intent tag to one handler; anything else —
// including tags the classifier invents — falls through to a default handler
// that speaks the decision's message. Dispatch is therefore total: no
// decision value can make it fail to find a handler.
package skill

import (
	"context"

	"github.com/DuoDuoJuZi/Myurujisu/internal/intent"
)

// Result summarises the side effects one dispatch produced. Fields are zero
// when the corresponding effect did not happen.
type Result struct {
	// PlayedClip is the canned clip that was played, if any.
	PlayedClip string

	// Spoke reports whether a reply was synthesised and spoken.
	Spoke bool

	// Published is the payload delivered to the broker, if any.
	Published string
}

// Skill performs the side effects of one intent.
type Skill interface {
	Execute(ctx context.Context, decision intent.Decision) (Result, error)
}

// Registry routes decisions to skills by intent tag.
type Registry struct {
	skills   map[intent.Intent]Skill
	fallback Skill
}

// NewRegistry creates a registry with the given fallback handler. The
// fallback handles every tag no skill is registered for.
func NewRegistry(fallback Skill) *Registry {
	return &Registry{
		skills:   make(map[intent.Intent]Skill),
		fallback: fallback,
	}
}

// Register binds tag to s, replacing any previous binding.
func (r *Registry) Register(tag intent.Intent, s Skill) {
	r.skills[tag] = s
}

// Dispatch routes decision to the skill registered for its intent tag, or to
// the fallback when the tag is unknown.
func (r *Registry) Dispatch(ctx context.Context, decision intent.Decision) (Result, error) {
	s, ok := r.skills[decision.Intent]
	if !ok {
		s = r.fallback
	}
	return s.Execute(ctx, decision)
}
