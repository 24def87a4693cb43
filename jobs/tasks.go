package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerVerify runs a full audit-ledger chain verification.
	TaskLedgerVerify = "ledger:verify"
)

// LedgerVerifyPayload parameterises a verification run.
type LedgerVerifyPayload struct {
	// Trigger notes what enqueued the run: "cron" or "manual".
	Trigger string `json:"trigger"`
}

// NewLedgerVerifyTask constructs an Asynq task for chain verification.
func NewLedgerVerifyTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerVerifyPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerVerify, data), nil
}
