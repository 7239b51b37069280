package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInputMissing        = errors.New("input file missing")
	ErrExternalTool        = errors.New("external tool failed")
	ErrAPIFailure          = errors.New("text generation api failure")
	ErrStructuralMismatch  = errors.New("translated block count does not match chunk")
	ErrValidationFailed    = errors.New("subtitle failed format validation")
	ErrTaskNotRunnable     = errors.New("task is not in a runnable state")
	ErrInvalidExecContext  = errors.New("invalid executor context")
)
