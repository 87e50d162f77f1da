package submission

import "context"

// Recorder defines the interface for persisting received submissions.
type Recorder interface {
	Record(ctx context.Context, event *Queued) error
}
