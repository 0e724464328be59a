// Package intent defines the typed intent decision produced by the external
// reasoning service and the gateway that obtains it.
package intent

// Intent is the classified purpose of an utterance. The dispatcher treats
// tags outside the known set as [IntentUnknown], so new tags degrade to a
// spoken reply instead of an error.
type Intent string

const (
	// IntentLightControl toggles the smart light.
	IntentLightControl Intent = "light_control"

	// IntentChat answers conversationally.
	IntentChat Intent = "chat"

	// IntentUnknown is anything the classifier could not place.
	IntentUnknown Intent = "unknown"
)

// Decision is one classified utterance. Fields the classifier omits take
// their zero-value defaults during parsing; see [Classifier.Classify].
type Decision struct {
	// Intent is the classified tag. Defaults to [IntentChat] when absent.
	Intent Intent

	// Parameters carries intent-specific arguments, e.g. {"action": "ON"}
	// for light control. Never nil.
	Parameters map[string]any

	// Message is the text to speak for conversational intents.
	Message string

	// Time is the classifier's echo of the utterance timestamp.
	Time string
}

// StringParam returns the named parameter if it is present and a string.
func (d Decision) StringParam(key string) (string, bool) {
	v, ok := d.Parameters[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
