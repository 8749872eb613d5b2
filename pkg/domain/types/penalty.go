package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type PenaltyID string

func (x PenaltyID) String() string {
	return string(x)
}

func NewPenaltyID() PenaltyID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return PenaltyID(id.String())
}

func (x PenaltyID) Validate() error {
	if x == EmptyPenaltyID {
		return goerr.New("empty penalty ID")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "invalid penalty ID format", goerr.V("id", x))
	}
	return nil
}

const (
	EmptyPenaltyID PenaltyID = ""
)

// AppealStatus tracks the adjudication of a penalty. The only legal path is
// none → pending → {approved | rejected}; approved and rejected are final.
type AppealStatus string

const (
	AppealStatusNone     AppealStatus = "none"
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusRejected AppealStatus = "rejected"
)

var appealStatusLabels = map[AppealStatus]string{
	AppealStatusNone:     "— None",
	AppealStatusPending:  "🕒 Pending",
	AppealStatusApproved: "👍 Approved",
	AppealStatusRejected: "🚫 Rejected",
}

func (s AppealStatus) String() string {
	return string(s)
}

func (s AppealStatus) Label() string {
	return appealStatusLabels[s]
}

func (s AppealStatus) Validate() error {
	switch s {
	case AppealStatusNone, AppealStatusPending, AppealStatusApproved, AppealStatusRejected:
		return nil
	}
	return goerr.New("invalid appeal status", goerr.V("status", s))
}

// IsFinal reports whether the appeal has been adjudicated. A final penalty
// record is immutable.
func (s AppealStatus) IsFinal() bool {
	return s == AppealStatusApproved || s == AppealStatusRejected
}

// AppealAction is a closed set of operations over a penalty appeal. Raw
// action strings from callers must go through ParseAppealAction so that
// unrecognized values are rejected before any persisted state is touched.
type AppealAction string

const (
	AppealActionSubmit  AppealAction = "submit"
	AppealActionApprove AppealAction = "approve"
	AppealActionReject  AppealAction = "reject"
)

func (a AppealAction) String() string {
	return string(a)
}

func ParseAppealAction(raw string) (AppealAction, error) {
	switch AppealAction(raw) {
	case AppealActionSubmit, AppealActionApprove, AppealActionReject:
		return AppealAction(raw), nil
	}
	return "", goerr.New("unknown appeal action", goerr.V("action", raw))
}
