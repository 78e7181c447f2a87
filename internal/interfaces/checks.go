package interfaces

// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library-catalog/internal/audit"
	"github.com/mrlokans/library-catalog/internal/auth"
	"github.com/mrlokans/library-catalog/internal/database/catalog"
	"github.com/mrlokans/library-catalog/internal/database/users"
	"github.com/mrlokans/library-catalog/internal/http"
	"github.com/mrlokans/library-catalog/internal/scheduler"
	"github.com/mrlokans/library-catalog/internal/services"
	"github.com/mrlokans/library-catalog/internal/tasks"
)

// Data access
var _ services.CatalogStore = (*catalog.Repository)(nil)
var _ auth.UserRepository = (*users.Repository)(nil)

// Services
var _ http.CatalogService = (*services.CatalogService)(nil)
var _ services.AuditLogger = (*audit.Service)(nil)
var _ auth.AuditLogger = (*audit.Service)(nil)

// Background work
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
