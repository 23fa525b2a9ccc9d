// file: internals/features/allocation/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// CapacityError: requested seats exceed what the candidate rooms still hold.
type CapacityError struct {
	Required  int
	Available int
	Shortfall int
	Date      string
	Window    Window
}

func (e *CapacityError) Error() string {
	if e.Date == "" {
		return fmt.Sprintf("insufficient room capacity: required %d, available %d (shortfall %d)",
			e.Required, e.Available, e.Shortfall)
	}
	return fmt.Sprintf("insufficient room capacity on %s %s: required %d, available %d (shortfall %d)",
		e.Date, e.Window, e.Required, e.Available, e.Shortfall)
}

// StaffingShortageError: no conflict-free invigilator exists for a slot.
type StaffingShortageError struct {
	Slot     SlotKey
	RoomName string
}

func (e *StaffingShortageError) Error() string {
	room := e.RoomName
	if room == "" {
		room = e.Slot.RoomID.String()
	}
	return fmt.Sprintf("no available faculty for room %s on %s at %s", room, e.Slot.Date, e.Slot.Window)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// StorageError wraps any failure coming back from a store; always fatal to the run.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func validationErr(field, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &ValidationError{Field: field, Reason: reason}
}

/* =========================
   Failure payload
========================= */

type FailureResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Failure renders err as the {success:false, message} shape callers forward as-is.
func Failure(err error) FailureResult {
	if err == nil {
		return FailureResult{Success: true}
	}
	return FailureResult{Success: false, Message: err.Error()}
}

// ErrorKind classifies err for status mapping; "" means unexpected.
func ErrorKind(err error) string {
	var (
		capErr   *CapacityError
		staffErr *StaffingShortageError
		valErr   *ValidationError
		stErr    *StorageError
	)
	switch {
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &capErr):
		return "capacity"
	case errors.As(err, &staffErr):
		return "staffing_shortage"
	case errors.As(err, &stErr):
		return "storage"
	default:
		return ""
	}
}
