// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the small interfaces they need next to the code that
// uses them; the concrete implementations live in the database, auth, audit
// and tasks packages. checks.go pins every pairing at compile time.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookCatalog: Trending, search, lists and lookups (internal/http/stores.go)
//   - ShelfReader: A reader's shelves and per-book statuses (internal/http/stores.go)
//   - ReviewLister: Reviews of one book (internal/http/stores.go)
//   - ActivityReader: A reader's audit trail (internal/http/stores.go)
//   - ReviewSource, ProfileSource, CatalogCounter: Community page inputs (internal/community/community.go)
//
// ## Write Path Interfaces
//
//   - SessionSource: The signed-in reader, if any (internal/actions/actions.go)
//   - UserBookStore, ReviewStore: Keyed upserts (internal/actions/actions.go)
//   - Auditor: Outcome logging for writes (internal/actions/actions.go)
//   - StatsRefresher: Deferred rating/review count recomputation (internal/actions/actions.go)
//
// ## Presentation Interfaces
//
//   - Notifier: Toast-style notifications (internal/notify/notify.go)
//   - SessionStore: Session-backed flash storage (internal/notify/flash.go)
//   - Renderer: HTML page rendering for the auth pages (internal/auth/handlers.go)
//
// ## Background Work Interfaces
//
//   - BookStatsRefresher, AuditEventCleaner: Task processors (internal/tasks/)
//   - CleanupQueue: Where the cron scheduler hands off work (internal/scheduler/audit_cleanup.go)
//
// # Adding a New Book Action
//
//  1. Add the store method to a repository in internal/database/ and an
//     interface for it in internal/actions/.
//
//  2. Implement the action on actions.Service so that it checks the session,
//     validates input, performs one upsert and notifies the outcome:
//
//     func (s *Service) AddToFavourites(ctx context.Context, bookID string) Result
//
//  3. Expose it on http.ActionRunner and register form and JSON routes in
//     router.go behind the throttle.
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/:
//
//     type RecountShelvesTask struct{ UserID string }
//
//     func (t RecountShelvesTask) Config() backlite.QueueConfig
//
//  2. Register the queue in entrypoint.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
