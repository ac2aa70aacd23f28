package domain

import (
	"time"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

type ExperimentStatus string

const (
	ExperimentPending  ExperimentStatus = "pending"
	ExperimentRunning  ExperimentStatus = "running"
	ExperimentFinished ExperimentStatus = "finished"
	ExperimentFailed   ExperimentStatus = "failed"
)

// ExperimentSettings 描述一次实验：物品目录的生成方式、遗传算法参数以及多次试验的编排方式
type ExperimentSettings struct {
	Parameters    knapsack.Parameters `json:"parameters"`
	ItemCount     int                 `json:"itemCount"`
	MaxItemWeight int                 `json:"maxItemWeight"`
	ValueBias     int                 `json:"valueBias"`
	Trials        int                 `json:"trials"`
	Generations   int                 `json:"generations"`
	Seed          int64               `json:"seed"`
	Parallelism   int                 `json:"parallelism"`
}

type Experiment struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Status      ExperimentStatus   `json:"status"`
	Settings    ExperimentSettings `json:"settings"`
	Report      *ExperimentReport  `json:"report,omitempty"`
	Error       string             `json:"error,omitempty"`
	NotifyEmail string             `json:"notifyEmail,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	FinishedAt  *time.Time         `json:"finishedAt"`
	Version     int32              `json:"-"`
}

// ExperimentJob 是投递到 experiment_queue 中的消息
type ExperimentJob struct {
	ExperimentID string `json:"experimentID"`
}
