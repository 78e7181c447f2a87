// Package interfaces holds compile-time checks that the concrete types wired
// together in internal/entrypoint satisfy the narrow interfaces their
// consumers declare.
//
// # Data Access
//
//   - services.CatalogStore: books with their author and category (internal/database/catalog)
//   - auth.UserRepository: user accounts (internal/database/users)
//
// # Services
//
//   - http.CatalogService: what the catalog pages need (internal/services)
//   - services.AuditLogger, auth.AuditLogger: audit trail writers (internal/audit)
//
// # Background Work
//
//   - tasks.AuditEventCleaner: audit retention (internal/audit)
//   - scheduler.AuditCleanupEnqueuer: task queue handoff (internal/tasks)
//
// New implementations should add a check here:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
package interfaces
