package domain

// Record is one labeled claim-evaluation unit. Identity is positional: a
// record's index within its source slice is its identity, and predictions
// are written back to the same index regardless of completion order.
type Record struct {
	Question    string `json:"question"`
	Choice      string `json:"choice,omitempty"`
	ChoiceAgree string `json:"choice_agree,omitempty"`
	Label       bool   `json:"label"`

	// Prediction is nil only when every attempt for this record failed.
	Prediction *bool  `json:"prediction"`
	Reasoning  string `json:"prediction_reasoning,omitempty"`
}

// Claim returns the claim text for the record, preferring choice_agree.
func (r Record) Claim() string {
	if r.ChoiceAgree != "" {
		return r.ChoiceAgree
	}
	return r.Choice
}

// Correct reports whether the record's prediction matches its label.
// A nil prediction is never correct.
func (r Record) Correct() bool {
	return r.Prediction != nil && *r.Prediction == r.Label
}

// JudgementString renders a verdict the way replies encode it.
func JudgementString(agree bool) string {
	if agree {
		return "agree"
	}
	return "disagree"
}
