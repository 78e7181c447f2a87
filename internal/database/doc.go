// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// Connection setup and migrations live here; queries are grouped into
// domain-specific sub-packages:
//
//	database/
//	├── database.go      # Driver selection (sqlite, postgres, mysql), migrations
//	├── catalog/         # Books, authors and categories
//	├── users/           # Registered users
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	catalogRepo := catalog.NewRepository(db.DB, cfg.Catalog.EditPolicy)
//	usersRepo := users.NewRepository(db.DB)
//
//	books, err := catalogRepo.ListBooks()
//
// Each repository holds a *gorm.DB and returns gorm errors unchanged
// (gorm.ErrRecordNotFound in particular) so callers can map them with
// errors.Is.
package database
