// Package services owns the write paths: report lifecycle, attendance
// recording, group assignment, QR tokens. Handlers stay thin and pass
// db.Conn(); tests pass their own database.
package services

import "errors"

// Actor is the authenticated profile performing an operation.
type Actor struct {
	ProfileID string
	Role      string
}

var (
	ErrNotFound         = errors.New("record not found")
	ErrRoleNotAllowed   = errors.New("role not allowed")
	ErrAlreadyValidated = errors.New("report already validated")
	ErrNotSubmitted     = errors.New("report not awaiting review")
	ErrCapacityExceeded = errors.New("group capacity exceeded")
	ErrInvalidScanType  = errors.New("scan type must be arrival or departure")
)
