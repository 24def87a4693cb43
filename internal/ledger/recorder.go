package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultQueueSize = 256

// writeTimeout bounds a single persistence attempt. A write admitted to the
// serialization point runs to completion independently of request contexts.
const writeTimeout = 5 * time.Second

// Stats receives operational counters from the recorder.
type Stats interface {
	EntryWritten(integrityOK bool)
	EntryDropped()
}

// Recorder is the single designated writer for the ledger. All Record calls
// funnel through one goroutine owning the chain tail, so two decisions can
// never compute a chain link from the same predecessor.
type Recorder struct {
	repo   Repository
	signer *Signer
	logger *slog.Logger
	stats  Stats
	queue  chan Decision

	// tail is the entry hash of the most recently persisted healthy entry.
	// Only the Run goroutine touches it.
	tail *string
}

// Option customises a Recorder.
type Option func(*Recorder)

// WithQueueSize overrides the write queue capacity.
func WithQueueSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan Decision, n)
		}
	}
}

// WithStats attaches operational counters.
func WithStats(stats Stats) Option {
	return func(r *Recorder) { r.stats = stats }
}

// NewRecorder constructs a Recorder. Run must be started before Record is
// useful.
func NewRecorder(repo Repository, signer *Signer, logger *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		repo:   repo,
		signer: signer,
		logger: logger,
		queue:  make(chan Decision, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record hands a decision to the writer. It never blocks, never errors and
// never influences the authorization outcome already returned to the caller:
// when the queue is full the decision is dropped and counted, nothing more.
func (r *Recorder) Record(decision Decision) {
	select {
	case r.queue <- decision:
	default:
		if r.logger != nil {
			r.logger.Error("ledger queue full, decision dropped",
				slog.String("permission", decision.Permission))
		}
		if r.stats != nil {
			r.stats.EntryDropped()
		}
	}
}

// Run loads the chain tail and consumes the queue until ctx is cancelled.
// Pending decisions are drained before returning.
func (r *Recorder) Run(ctx context.Context) error {
	tail, err := r.repo.TailHash(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load chain tail: %w", err)
	}
	r.tail = tail

	for {
		select {
		case decision := <-r.queue:
			r.write(decision)
		case <-ctx.Done():
			for {
				select {
				case decision := <-r.queue:
					r.write(decision)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(decision Decision) {
	entry := Entry{
		UserID:     decision.UserID,
		TenantID:   decision.TenantID,
		Permission: decision.Permission,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
		Endpoint:   decision.Endpoint,
		Method:     decision.Method,
		Context:    Canonicalize(stringMap(decision.Context)),
		PrevHash:   r.tail,
	}

	entry.IntegrityOK = true
	signature, err := r.signer.Sign(entry.Payload())
	if err == nil {
		entry.Signature = signature
		entry.EntryHash, err = r.signer.EntryHash(entry.PrevHash, signature)
	}
	if err != nil {
		// Signing failure degrades the entry, never the decision. The row is
		// still persisted so the attempt itself remains on record.
		if r.logger != nil && !errors.Is(err, ErrNoSigningKey) {
			r.logger.Error("ledger signing failed", slog.Any("error", err))
		}
		entry.Signature = SentinelDigest
		entry.EntryHash = SentinelDigest
		entry.IntegrityOK = false
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.repo.Insert(ctx, entry); err != nil {
		if r.logger != nil {
			r.logger.Error("ledger write failed", slog.Any("error", err),
				slog.String("permission", entry.Permission))
		}
		if r.stats != nil {
			r.stats.EntryDropped()
		}
		return
	}

	if entry.IntegrityOK {
		hash := entry.EntryHash
		r.tail = &hash
	}
	if r.stats != nil {
		r.stats.EntryWritten(entry.IntegrityOK)
	}
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
