package ingest

import "fmt"

// ReconcileError reports a failed write of the roster. The roster keeps
// its prior state when it occurs.
type ReconcileError struct {
	Err error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile roster: %v", e.Err)
}

func (e *ReconcileError) Unwrap() error { return e.Err }
