package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

func TestParseAppealAction(t *testing.T) {
	for _, raw := range []string{"submit", "approve", "reject"} {
		action := gt.R1(types.ParseAppealAction(raw)).NoError(t)
		gt.Equal(t, action.String(), raw)
	}

	for _, raw := range []string{"", "Submit", "APPROVE", "escalate", "cancel"} {
		_, err := types.ParseAppealAction(raw)
		gt.Error(t, err)
	}
}

func TestAppealStatusIsFinal(t *testing.T) {
	gt.False(t, types.AppealStatusNone.IsFinal())
	gt.False(t, types.AppealStatusPending.IsFinal())
	gt.True(t, types.AppealStatusApproved.IsFinal())
	gt.True(t, types.AppealStatusRejected.IsFinal())
}

func TestStatusValidation(t *testing.T) {
	gt.NoError(t, types.IncidentStatusOpen.Validate())
	gt.NoError(t, types.StagingStatusPromoted.Validate())
	gt.NoError(t, types.AppealStatusPending.Validate())
	gt.Error(t, types.IncidentStatus("bogus").Validate())
	gt.Error(t, types.StagingStatus("bogus").Validate())
	gt.Error(t, types.AppealStatus("bogus").Validate())
}

func TestNewIDsAreUniqueAndValid(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := types.NewIncidentID()
		gt.NoError(t, id.Validate())
		gt.False(t, seen[id.String()])
		seen[id.String()] = true
	}
}
