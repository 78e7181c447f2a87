package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/library-catalog/internal/audit"
	"github.com/mrlokans/library-catalog/internal/config"
	auditrepo "github.com/mrlokans/library-catalog/internal/database/audit"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/tasks"
)

// CleanupAuditCommand runs audit retention once, outside the task queue.
type CleanupAuditCommand struct {
	DatabasePath  string
	RetentionDays int

	cfg *config.Config
	out io.Writer
}

func NewCleanupAuditCommand() *CleanupAuditCommand {
	return &CleanupAuditCommand{cfg: config.NewConfig(), out: os.Stdout}
}

func (cmd *CleanupAuditCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-audit", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite catalog database (defaults to DATABASE_* settings)")
	fs.IntVar(&cmd.RetentionDays, "days", cmd.cfg.Audit.RetentionDays, "Delete audit events older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-audit [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete audit events past the retention period.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.RetentionDays < 1 {
		return fmt.Errorf("-days must be at least 1, got %d", cmd.RetentionDays)
	}
	return nil
}

func (cmd *CleanupAuditCommand) Run() error {
	db, err := openDatabase(cmd.cfg.Database, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	task := tasks.CleanupAuditEventsTask{RetentionDays: cmd.RetentionDays}
	deleted, err := tasks.RunAuditCleanup(auditService, task)
	if err != nil {
		return err
	}

	// Record the cleanup itself
	err = auditService.Log(&entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      "audit_cleanup",
		Description: fmt.Sprintf("deleted %d events older than %d days", deleted, cmd.RetentionDays),
		Status:      entities.AuditStatusSuccess,
	})
	if err != nil {
		return fmt.Errorf("failed to record cleanup: %w", err)
	}

	fmt.Fprintf(cmd.out, "Deleted %d audit events older than %d days\n", deleted, cmd.RetentionDays)
	return nil
}
