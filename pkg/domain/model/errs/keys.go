package errs

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/vendops-lab/vigil/pkg/domain/types"
)

var (
	// Client errors (4xx)
	TagNotFound       = goerr.NewTag("not_found")       // 404
	TagValidation     = goerr.NewTag("validation")      // 400
	TagInvalidRequest = goerr.NewTag("invalid_request") // 400
	TagConflict       = goerr.NewTag("conflict")        // 409

	// Server errors (5xx)
	TagInternal = goerr.NewTag("internal") // 500
	TagDatabase = goerr.NewTag("database") // 500, transient infrastructure; retryable
)

var (
	// IDs
	DeviceIDKey   = goerr.NewTypedKey[types.DeviceID]("device_id")
	DriverIDKey   = goerr.NewTypedKey[types.DriverID]("driver_id")
	OperatorIDKey = goerr.NewTypedKey[types.OperatorID]("operator_id")
	StagingIDKey  = goerr.NewTypedKey[types.StagingID]("staging_id")
	IncidentIDKey = goerr.NewTypedKey[types.IncidentID]("incident_id")
	PenaltyIDKey  = goerr.NewTypedKey[types.PenaltyID]("penalty_id")

	// Values
	RepositoryKey = goerr.NewTypedKey[string]("repository")
	StatusKey     = goerr.NewTypedKey[string]("status")
	ActionKey     = goerr.NewTypedKey[string]("action")
	OperationKey  = goerr.NewTypedKey[string]("operation")
	CollectionKey = goerr.NewTypedKey[string]("collection")
	LimitKey      = goerr.NewTypedKey[int]("limit")
	OffsetKey     = goerr.NewTypedKey[int]("offset")
	DurationKey   = goerr.NewTypedKey[time.Duration]("duration")
)
