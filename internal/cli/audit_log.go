package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/library-catalog/internal/audit"
	"github.com/mrlokans/library-catalog/internal/config"
	auditrepo "github.com/mrlokans/library-catalog/internal/database/audit"
)

// AuditLogCommand lists recent audit events, newest first.
type AuditLogCommand struct {
	DatabasePath string
	UserID       uint
	Limit        int
	Offset       int
	JSON         bool

	cfg *config.Config
	out io.Writer
}

func NewAuditLogCommand() *AuditLogCommand {
	return &AuditLogCommand{cfg: config.NewConfig(), out: os.Stdout}
}

func (cmd *AuditLogCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("audit-log", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite catalog database (defaults to DATABASE_* settings)")
	fs.UintVar(&cmd.UserID, "user", 0, "Only show events of this user id (0 for everyone)")
	fs.IntVar(&cmd.Limit, "limit", 50, "Maximum number of events to show")
	fs.IntVar(&cmd.Offset, "offset", 0, "Number of events to skip")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the events as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s audit-log [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show logins, registrations and catalog changes from the audit trail.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Limit < 1 {
		return fmt.Errorf("-limit must be at least 1, got %d", cmd.Limit)
	}
	if cmd.Offset < 0 {
		return fmt.Errorf("-offset must not be negative, got %d", cmd.Offset)
	}
	return nil
}

func (cmd *AuditLogCommand) Run() error {
	db, err := openDatabase(cmd.cfg.Database, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	events, total, err := audit.NewService(auditrepo.NewRepository(db.DB)).GetEvents(cmd.UserID, cmd.Limit, cmd.Offset)
	if err != nil {
		return fmt.Errorf("failed to load audit events: %w", err)
	}

	if cmd.JSON {
		enc := json.NewEncoder(cmd.out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"events": events, "total": total})
	}

	if len(events) == 0 {
		fmt.Fprintln(cmd.out, "No audit events found")
		return nil
	}

	for _, event := range events {
		fmt.Fprintf(cmd.out, "%s  %-7s  user=%-4d  %-12s  %s",
			event.CreatedAt.Format("2006-01-02 15:04:05"), event.Status, event.UserID, event.Action, event.Description)
		if event.ErrorMsg != "" {
			fmt.Fprintf(cmd.out, "  (%s)", event.ErrorMsg)
		}
		fmt.Fprintln(cmd.out)
	}
	fmt.Fprintf(cmd.out, "\nShowing %d of %d events\n", len(events), total)
	return nil
}
