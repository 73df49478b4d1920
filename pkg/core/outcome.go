package core

// OutcomeKind tags an Outcome.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the result of one execution: Success carries the response text,
// Failure carries a message for the user. Exactly one is produced per
// request.
type Outcome struct {
	Kind OutcomeKind
	Text string
}

// Success builds a successful outcome.
func Success(text string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Text: text}
}

// Failure builds a failed outcome.
func Failure(message string) Outcome {
	return Outcome{Kind: OutcomeFailure, Text: message}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// IsZero reports whether no outcome has been recorded.
func (o Outcome) IsZero() bool { return o.Kind == "" }
