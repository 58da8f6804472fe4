package core

// ChoiceCancelled is what Confirm returns when the user gives no answer.
const ChoiceCancelled = ""

// Interactor is the blocking request/response surface for confirmations and
// pickers. Cancellation is an ordinary return value, never an error, and
// aborts the remaining steps of an operation before any write happens.
type Interactor interface {
	// Confirm presents a question with a set of option labels and returns
	// the chosen label, or ChoiceCancelled.
	Confirm(question string, options ...string) string

	// PickOne presents a single-choice list and returns the chosen index,
	// or -1 when cancelled.
	PickOne(question string, options []string) int
}

// AssumeYes is an Interactor for non-interactive runs: every confirmation
// takes the first option, every pick takes the first candidate.
type AssumeYes struct{}

func (AssumeYes) Confirm(question string, options ...string) string {
	if len(options) == 0 {
		return ChoiceCancelled
	}
	return options[0]
}

func (AssumeYes) PickOne(question string, options []string) int {
	if len(options) == 0 {
		return -1
	}
	return 0
}
