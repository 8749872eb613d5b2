package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type StagingID string

func (x StagingID) String() string {
	return string(x)
}

func NewStagingID() StagingID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return StagingID(id.String())
}

func (x StagingID) Validate() error {
	if x == EmptyStagingID {
		return goerr.New("empty staging entry ID")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "invalid staging entry ID format", goerr.V("id", x))
	}
	return nil
}

const (
	EmptyStagingID StagingID = ""
)

// StagingStatus is the lifecycle state of a zero-sales staging entry.
// An entry starts open and ends either promoted (escalated to an incident)
// or dismissed (sales resumed before promotion). Both are terminal.
type StagingStatus string

const (
	StagingStatusOpen      StagingStatus = "open"
	StagingStatusPromoted  StagingStatus = "promoted"
	StagingStatusDismissed StagingStatus = "dismissed"
)

func (s StagingStatus) String() string {
	return string(s)
}

func (s StagingStatus) Validate() error {
	switch s {
	case StagingStatusOpen, StagingStatusPromoted, StagingStatusDismissed:
		return nil
	}
	return goerr.New("invalid staging status", goerr.V("status", s))
}
