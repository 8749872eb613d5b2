package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type IncidentID string

func (x IncidentID) String() string {
	return string(x)
}

func NewIncidentID() IncidentID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return IncidentID(id.String())
}

func (x IncidentID) Validate() error {
	if x == EmptyIncidentID {
		return goerr.New("empty incident ID")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "invalid incident ID format", goerr.V("id", x))
	}
	return nil
}

const (
	EmptyIncidentID IncidentID = ""
)

type IncidentStatus string

const (
	IncidentStatusOpen         IncidentStatus = "open"
	IncidentStatusAcknowledged IncidentStatus = "acknowledged"
	IncidentStatusResolved     IncidentStatus = "resolved"
)

var incidentStatusLabels = map[IncidentStatus]string{
	IncidentStatusOpen:         "🔴 Open",
	IncidentStatusAcknowledged: "🟡 Acknowledged",
	IncidentStatusResolved:     "✅️ Resolved",
}

func (s IncidentStatus) String() string {
	return string(s)
}

func (s IncidentStatus) Label() string {
	return incidentStatusLabels[s]
}

func (s IncidentStatus) Validate() error {
	switch s {
	case IncidentStatusOpen, IncidentStatusAcknowledged, IncidentStatusResolved:
		return nil
	}
	return goerr.New("invalid incident status", goerr.V("status", s))
}

// IncidentSource records how an incident came into existence.
type IncidentSource string

const (
	IncidentSourceDetector IncidentSource = "detector"
	IncidentSourceManual   IncidentSource = "manual"
)

func (s IncidentSource) String() string {
	return string(s)
}

func (s IncidentSource) Validate() error {
	switch s {
	case IncidentSourceDetector, IncidentSourceManual:
		return nil
	}
	return goerr.New("invalid incident source", goerr.V("source", s))
}
