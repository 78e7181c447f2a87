package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/database"
)

// openDatabase opens the catalog database the commands operate on. A
// non-empty sqlitePath overrides the configured driver.
func openDatabase(cfg config.Database, sqlitePath string) (*database.Database, error) {
	if sqlitePath != "" {
		absPath, err := filepath.Abs(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Driver = config.DriverSQLite
		cfg.Path = absPath
		cfg.LogLevel = "silent"
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}
