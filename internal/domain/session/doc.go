// Package session owns the lifecycle of the workspace session.
//
// The Manager converts between the live registries and an immutable
// types.Session:
//   - Capture runs pre-save hooks, then snapshots every network marked for
//     the session file together with its root, the views of those networks,
//     their tables, all visual styles and the session-scoped properties.
//   - Apply disposes of the current workspace and rebuilds it from a model.
//     A nil model starts an empty session that keeps only the default style.
//   - HandleSaved records that a model was written without touching the
//     workspace.
//
// A manager starts in StateNoSession and moves to StateLoaded on the first
// Apply or HandleSaved. Listeners receive EventLoaded after the workspace
// is rebuilt and EventSaved after a successful write.
//
// The Service wraps a Manager with archive I/O: Save writes atomically via a
// temporary file, Open reads a local archive and OpenURL downloads one with
// retries behind a circuit breaker.
//
// Example Usage:
//
//	regs := registry.New()
//	manager := session.NewManager(regs, logger)
//	svc := session.NewService(manager, session.WithBaseDir(dir))
//	report, err := svc.Save(ctx, "analysis.cys", nil)
//	_, err = svc.Open(ctx, "analysis.cys", nil)
package session
