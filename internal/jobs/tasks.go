package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeDailyDigest = "digest:daily"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// DailyDigestPayload optionally pins the UTC day the digest reports
// on. An empty date means the previous UTC day at processing time, so
// the scheduled task stays valid across days.
type DailyDigestPayload struct {
	Date string `json:"date"`
}

// NewDailyDigestTask builds the digest task.
func NewDailyDigestTask(date string) (*asynq.Task, error) {
	payload, err := json.Marshal(DailyDigestPayload{Date: date})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeDailyDigest, payload, asynq.Queue(QueueDefault)), nil
}
