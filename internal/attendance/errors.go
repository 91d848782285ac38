package attendance

import "errors"

// Rejection reasons surfaced to the caller. Each gate in Mark fails with
// exactly one of these; the handler maps them to HTTP status codes.
var (
	ErrOutsideTimeWindow  = errors.New("attendance can only be marked within allowed time slots")
	ErrLocationRequired   = errors.New("location is required to mark attendance")
	ErrOutsideGeofence    = errors.New("you are outside the permitted classroom area")
	ErrUnknownStudent     = errors.New("student is not registered")
	ErrDuplicateMark      = errors.New("attendance already marked for this slot")
	ErrStorageUnavailable = errors.New("attendance storage unavailable")
)
