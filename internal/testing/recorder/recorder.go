// package recorder contains a recording notifier for tests. It lives in its
// own package so that internal/testing does not import internal/services,
// which would create an import cycle in the services test binary.
package recorder

import (
	"context"
	"sync"

	"github.com/iamankun/studio-sub000/internal/services"
)

// RecordingNotifier captures every event it receives.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []services.Event
}

func (n *RecordingNotifier) Notify(ctx context.Context, event services.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Events = append(n.Events, event)
	return nil
}

// Kinds returns the kinds of the recorded events in order.
func (n *RecordingNotifier) Kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	kinds := make([]string, len(n.Events))
	for i, event := range n.Events {
		kinds[i] = event.Kind
	}
	return kinds
}
