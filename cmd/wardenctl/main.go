package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/warden-authz/warden/cmd/warden/cli"
	"github.com/warden-authz/warden/internal/app"
	"github.com/warden-authz/warden/internal/ledger"
	"github.com/warden-authz/warden/internal/platform/db"
	"github.com/warden-authz/warden/jobs"
)

const usage = `usage: wardenctl <command>

commands:
  ledger verify   verify the audit ledger hash chain
  ledger stats    print audit ledger entry counts
  jobs trigger    enqueue a ledger verification job
  jobs stats      print background queue statistics
`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, group, command string) error {
	switch group {
	case "ledger":
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		service := ledger.NewService(ledger.NewRepository(pool), ledger.NewSigner(cfg.AuditSigningKey))
		ledgerCLI := cli.NewLedgerCLI(service)
		switch command {
		case "verify":
			return ledgerCLI.Verify(ctx, os.Stdout)
		case "stats":
			return ledgerCLI.Stats(ctx, os.Stdout)
		}
	case "jobs":
		jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = jobsCLI.Close() }()

		switch command {
		case "trigger":
			info, err := jobsCLI.Trigger(ctx, jobs.TaskLedgerVerify)
			if err != nil {
				return err
			}
			fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		case "stats":
			stats, err := jobsCLI.InspectQueue(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
			return nil
		}
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q %q", group, command)
}
