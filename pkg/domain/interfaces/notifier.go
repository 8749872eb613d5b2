package interfaces

import (
	"context"

	"github.com/vendops-lab/vigil/pkg/domain/event"
)

// Notifier receives events from the core pipeline. Each event type has a
// dedicated method for type-safe handling. Implementations can write to the
// console or forward to an external channel; delivery is best-effort and a
// failure must not affect the transition that produced the event.
type Notifier interface {
	NotifyIncidentOpened(ctx context.Context, ev *event.IncidentOpenedEvent)
	NotifyIncidentAcknowledged(ctx context.Context, ev *event.IncidentAcknowledgedEvent)
	NotifyPenaltyAssessed(ctx context.Context, ev *event.PenaltyAssessedEvent)
	NotifyError(ctx context.Context, ev *event.ErrorEvent)
}
