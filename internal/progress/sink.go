// Package progress routes compute-module progress events out of the
// worker host. Modules publish named events (assignment updates,
// completion) without knowing whether anything is listening.
package progress

// Sink receives progress events from running modules. Publish must be
// safe for concurrent use and must never block module execution for long;
// a slow consumer is the sink's problem, not the module's.
type Sink interface {
	Publish(event string, data map[string]any)
}

// Event names published by the built-in modules.
const (
	EventAssignments = "worker:assignments"
	EventDone        = "worker:done"
	EventFailed      = "worker:failed"
)

// Discard is a Sink that drops every event. Used when no progress gateway
// is configured.
type Discard struct{}

// Publish implements Sink.
func (Discard) Publish(event string, data map[string]any) {}
