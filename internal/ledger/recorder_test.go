package ledger

import (
	"context"
	"sync"
	"testing"
	"time"
)

// memRepo is the in-memory Repository used across the package tests.
type memRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *memRepo) Insert(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memRepo) TailHash(context.Context) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].IntegrityOK {
			hash := m.entries[i].EntryHash
			return &hash, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ScanForward(_ context.Context, afterID int64, limit int32) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.ID > afterID {
			out = append(out, e)
			if int32(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memRepo) Window(_ context.Context, offset, limit int32) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for i := len(m.entries) - 1 - int(offset); i >= 0; i-- {
		out = append(out, m.entries[i])
		if int32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memRepo) Counts(context.Context) (Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c Counts
	for _, e := range m.entries {
		c.Total++
		if e.Allowed {
			c.Allowed++
		} else {
			c.Denied++
		}
		if !e.IntegrityOK {
			c.Degraded++
		}
	}
	return c, nil
}

func (m *memRepo) snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

type countingStats struct {
	mu      sync.Mutex
	written int
	healthy int
	dropped int
}

func (s *countingStats) EntryWritten(integrityOK bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written++
	if integrityOK {
		s.healthy++
	}
}

func (s *countingStats) EntryDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped++
}

func runRecorder(t *testing.T, r *Recorder, decisions []Decision) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	for _, d := range decisions {
		r.Record(d)
	}
	// Queued decisions are drained before Run returns.
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("recorder run: %v", err)
	}
}

func sampleDecision(allowed bool) Decision {
	uid := int64(1)
	tid := int64(10)
	reason := "permission_granted"
	if !allowed {
		reason = "policy_denied"
	}
	return Decision{
		UserID:     &uid,
		TenantID:   &tid,
		Permission: "users:read",
		Allowed:    allowed,
		Reason:     reason,
		Endpoint:   "/users/1",
		Method:     "GET",
	}
}

func TestRecorderChainsEntries(t *testing.T) {
	repo := &memRepo{}
	signer := NewSigner("test-key")
	stats := &countingStats{}
	rec := NewRecorder(repo, signer, nil, WithStats(stats))

	runRecorder(t, rec, []Decision{
		sampleDecision(true),
		sampleDecision(false),
		sampleDecision(true),
	})

	entries := repo.snapshot()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].PrevHash != nil {
		t.Fatal("first entry must have nil prev hash")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PrevHash == nil || *entries[i].PrevHash != entries[i-1].EntryHash {
			t.Fatalf("entry %d does not chain onto its predecessor", entries[i].ID)
		}
	}
	for _, e := range entries {
		if !e.IntegrityOK {
			t.Fatalf("entry %d unexpectedly degraded", e.ID)
		}
		if !signer.Verify(e.Payload(), e.Signature, e.PrevHash, e.EntryHash) {
			t.Fatalf("entry %d does not verify", e.ID)
		}
	}
	if stats.written != 3 || stats.healthy != 3 || stats.dropped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	report, err := VerifyChain(context.Background(), repo, signer)
	if err != nil {
		t.Fatalf("verify chain: %v", err)
	}
	if !report.OK() || report.Verified != 3 {
		t.Fatalf("fresh chain must verify, got %+v", report)
	}
}

func TestRecorderResumesChainAcrossRestart(t *testing.T) {
	repo := &memRepo{}
	signer := NewSigner("test-key")

	first := NewRecorder(repo, signer, nil)
	runRecorder(t, first, []Decision{sampleDecision(true)})

	second := NewRecorder(repo, signer, nil)
	runRecorder(t, second, []Decision{sampleDecision(false)})

	entries := repo.snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].PrevHash == nil || *entries[1].PrevHash != entries[0].EntryHash {
		t.Fatal("restarted recorder must continue from the persisted tail")
	}
}

func TestRecorderDegradesWithoutKey(t *testing.T) {
	repo := &memRepo{}
	stats := &countingStats{}
	rec := NewRecorder(repo, NewSigner(""), nil, WithStats(stats))

	runRecorder(t, rec, []Decision{
		sampleDecision(true),
		sampleDecision(false),
	})

	entries := repo.snapshot()
	if len(entries) != 2 {
		t.Fatalf("degraded decisions must still persist, got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.IntegrityOK {
			t.Fatalf("entry %d must be degraded", e.ID)
		}
		if e.Signature != SentinelDigest || e.EntryHash != SentinelDigest {
			t.Fatalf("entry %d must carry sentinel digests", e.ID)
		}
		// Degraded entries never advance the tail.
		if e.PrevHash != nil {
			t.Fatalf("entry %d must not reference a predecessor", e.ID)
		}
	}
	if stats.healthy != 0 || stats.written != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRecorderDegradedGapKeepsChainVerifiable(t *testing.T) {
	repo := &memRepo{}
	keyed := NewSigner("test-key")

	runRecorder(t, NewRecorder(repo, keyed, nil), []Decision{sampleDecision(true)})
	runRecorder(t, NewRecorder(repo, NewSigner(""), nil), []Decision{sampleDecision(false)})
	runRecorder(t, NewRecorder(repo, keyed, nil), []Decision{sampleDecision(true)})

	entries := repo.snapshot()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// The healthy entry after the gap chains onto the healthy tail, not the
	// degraded row.
	if entries[2].PrevHash == nil || *entries[2].PrevHash != entries[0].EntryHash {
		t.Fatal("healthy entry must skip the degraded gap")
	}

	report, err := VerifyChain(context.Background(), repo, keyed)
	if err != nil {
		t.Fatalf("verify chain: %v", err)
	}
	if !report.OK() {
		t.Fatalf("chain with degraded gap must still verify, got %+v", report)
	}
	if report.Degraded != 1 || report.Verified != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRecorderDropsWhenQueueFull(t *testing.T) {
	repo := &memRepo{}
	stats := &countingStats{}
	rec := NewRecorder(repo, NewSigner("test-key"), nil, WithQueueSize(1), WithStats(stats))

	// Run is never started: the queue holds one decision, the rest drop.
	rec.Record(sampleDecision(true))
	rec.Record(sampleDecision(true))
	rec.Record(sampleDecision(true))

	if stats.dropped != 2 {
		t.Fatalf("expected 2 drops, got %d", stats.dropped)
	}
}
