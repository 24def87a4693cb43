package cli

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warden-authz/warden/internal/ledger"
)

// LedgerCLI exposes offline compliance operations against the audit ledger:
// full chain verification and entry counts. It talks to the database
// directly so it works even when the API server is down.
type LedgerCLI struct {
	service *ledger.Service
	printer *message.Printer
}

// NewLedgerCLI constructs the helper around a ledger read service.
func NewLedgerCLI(service *ledger.Service) *LedgerCLI {
	return &LedgerCLI{
		service: service,
		printer: message.NewPrinter(language.English),
	}
}

// Verify runs a full chain verification and writes a human-readable report.
// It returns an error when the chain does not verify so callers can exit
// non-zero.
func (c *LedgerCLI) Verify(ctx context.Context, out io.Writer) error {
	report, err := c.service.Verify(ctx)
	if err != nil {
		return err
	}
	c.printer.Fprintf(out, "checked:  %d\n", report.Checked)
	c.printer.Fprintf(out, "verified: %d\n", report.Verified)
	c.printer.Fprintf(out, "degraded: %d\n", report.Degraded)
	for _, fault := range report.Faults {
		c.printer.Fprintf(out, "FAULT entry %d: %s\n", fault.EntryID, fault.Detail)
	}
	if !report.OK() {
		return fmt.Errorf("ledger: chain verification failed with %d faults", len(report.Faults))
	}
	fmt.Fprintln(out, "chain OK")
	return nil
}

// Stats writes the ledger entry counts.
func (c *LedgerCLI) Stats(ctx context.Context, out io.Writer) error {
	counts, err := c.service.Counts(ctx)
	if err != nil {
		return err
	}
	c.printer.Fprintf(out, "total:    %d\n", counts.Total)
	c.printer.Fprintf(out, "allowed:  %d\n", counts.Allowed)
	c.printer.Fprintf(out, "denied:   %d\n", counts.Denied)
	c.printer.Fprintf(out, "degraded: %d\n", counts.Degraded)
	return nil
}
