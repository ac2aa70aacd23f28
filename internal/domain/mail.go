package domain

const (
	MailTypeExperimentFinished = "experiment_finished"
	MailTypeExperimentFailed   = "experiment_failed"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ExperimentFinishedMailData struct {
	ExperimentID string  `json:"experimentID"`
	Name         string  `json:"name"`
	Trials       int     `json:"trials"`
	Generations  int     `json:"generations"`
	BestFitness  float64 `json:"bestFitness"`
	BestValue    int     `json:"bestValue"`
	BestWeight   int     `json:"bestWeight"`
	BestGenome   string  `json:"bestGenome"`
	AvgFitness   float64 `json:"avgFitness"`
}

type ExperimentFailedMailData struct {
	ExperimentID string `json:"experimentID"`
	Name         string `json:"name"`
	Error        string `json:"error"`
}
