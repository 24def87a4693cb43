package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/warden-authz/warden/internal/ledger"
)

// NewLedgerVerifyHandler returns the handler for TaskLedgerVerify. A failed
// verification is not a task error: the job's output is the report itself,
// surfaced through logs for the compliance channel.
func NewLedgerVerifyHandler(service *ledger.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerVerifyPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		report, err := service.Verify(ctx)
		if err != nil {
			if logger != nil {
				logger.Error("ledger verification aborted", slog.Any("error", err))
			}
			return err
		}

		if logger != nil {
			attrs := []any{
				slog.String("trigger", payload.Trigger),
				slog.Int64("checked", report.Checked),
				slog.Int64("verified", report.Verified),
				slog.Int64("degraded", report.Degraded),
				slog.Int("faults", len(report.Faults)),
			}
			if report.OK() {
				logger.Info("ledger chain verified", attrs...)
			} else {
				logger.Error("ledger chain verification failed", attrs...)
				for _, fault := range report.Faults {
					logger.Error("ledger fault",
						slog.Int64("entry_id", fault.EntryID),
						slog.String("detail", fault.Detail))
				}
			}
		}
		return nil
	}
}
