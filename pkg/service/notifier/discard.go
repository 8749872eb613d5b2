package notifier

import (
	"context"

	"github.com/vendops-lab/vigil/pkg/domain/event"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
)

// discardNotifier is a no-op implementation of Notifier
type discardNotifier struct{}

// NewDiscardNotifier creates a no-op notifier, used when no output channel is
// configured.
func NewDiscardNotifier() interfaces.Notifier {
	return &discardNotifier{}
}

func (d *discardNotifier) NotifyIncidentOpened(ctx context.Context, ev *event.IncidentOpenedEvent) {
}

func (d *discardNotifier) NotifyIncidentAcknowledged(ctx context.Context, ev *event.IncidentAcknowledgedEvent) {
}

func (d *discardNotifier) NotifyPenaltyAssessed(ctx context.Context, ev *event.PenaltyAssessedEvent) {
}

func (d *discardNotifier) NotifyError(ctx context.Context, ev *event.ErrorEvent) {
}
