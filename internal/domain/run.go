package domain

// RevisionState captures one completed round. The sequence of states is the
// experiment's full audit trail: round k can be reproduced from its saved
// document artifact alone.
type RevisionState struct {
	Iteration     int     `json:"iteration"`
	TrainAccuracy float64 `json:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
	WrongSampled  int     `json:"wrong_sampled"`
	EarlyStopped  bool    `json:"early_stopped,omitempty"`
}

// Summary is the per-run output artifact: configuration echo plus the
// accuracy series. Both series always hold iterations+1 entries, padded
// with the final round's values when the run stops early.
type Summary struct {
	RunID            string  `json:"run_id"`
	Task             string  `json:"task"`
	Persona          string  `json:"persona"`
	EvalModel        string  `json:"eval_model"`
	RevisionModel    string  `json:"revision_model"`
	Iterations       int     `json:"iterations"`
	Seed             int64   `json:"seed"`
	MaxWrongExamples int     `json:"max_wrong_examples"`
	TrainSize        int     `json:"train_size"`
	TestSize         int     `json:"test_size"`

	TrainAccuracies []float64       `json:"train_accuracies"`
	TestAccuracies  []float64       `json:"test_accuracies"`
	Rounds          []RevisionState `json:"rounds"`
}
