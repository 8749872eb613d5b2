package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/vendops-lab/vigil/pkg/domain/event"
	"github.com/vendops-lab/vigil/pkg/domain/interfaces"
)

// ConsoleNotifier writes fleet events to the console with color formatting.
// Useful for local runs and debugging; production deployments typically swap
// in an external channel.
type ConsoleNotifier struct{}

// NewConsoleNotifier creates a new console notifier
func NewConsoleNotifier() interfaces.Notifier {
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) NotifyIncidentOpened(ctx context.Context, ev *event.IncidentOpenedEvent) {
	printIncidentOpened(ev)
}

func (n *ConsoleNotifier) NotifyIncidentAcknowledged(ctx context.Context, ev *event.IncidentAcknowledgedEvent) {
	printIncidentAcknowledged(ev)
}

func (n *ConsoleNotifier) NotifyPenaltyAssessed(ctx context.Context, ev *event.PenaltyAssessedEvent) {
	printPenaltyAssessed(ev)
}

func (n *ConsoleNotifier) NotifyError(ctx context.Context, ev *event.ErrorEvent) {
	printError(ev)
}

func printIncidentOpened(e *event.IncidentOpenedEvent) {
	yellow := color.New(color.FgYellow, color.Bold)
	gray := color.New(color.FgHiBlack)

	yellow.Printf("Incident Opened [%s]\n", e.IncidentID)
	fmt.Printf("  Device: %s\n", e.DeviceID)
	fmt.Printf("  Source: %s\n", e.Source)
	gray.Printf("  Silent since %s (%s)\n",
		e.SilenceStartedAt.Format(time.RFC3339),
		humanize.RelTime(e.SilenceStartedAt, e.OpenedAt, "before open", ""),
	)
}

func printIncidentAcknowledged(e *event.IncidentAcknowledgedEvent) {
	blue := color.New(color.FgBlue, color.Bold)

	blue.Printf("Incident Acknowledged [%s]\n", e.IncidentID)
	fmt.Printf("  Device: %s\n", e.DeviceID)
	fmt.Printf("  Operator: %s\n", e.AssignedOpsID)
	fmt.Printf("  At: %s\n", e.AcknowledgedAt.Format(time.RFC3339))
}

func printPenaltyAssessed(e *event.PenaltyAssessedEvent) {
	red := color.New(color.FgRed, color.Bold)
	white := color.New(color.FgWhite)

	red.Printf("Penalty Assessed [%s]\n", e.PenaltyID)
	fmt.Printf("  Incident: %s\n", e.IncidentID)
	fmt.Printf("  Driver: %s\n", e.DriverID)
	white.Printf("  Amount: %s %s\n", humanize.Comma(e.Amount), e.Currency)
	white.Printf("  Outage: %s\n", e.Outage)
}

func printError(e *event.ErrorEvent) {
	red := color.New(color.FgRed, color.Bold)

	red.Printf("Error: %s\n", e.Message)
	if e.Error != nil {
		gray := color.New(color.FgHiBlack)
		gray.Printf("  %v\n", e.Error)
	}
}
