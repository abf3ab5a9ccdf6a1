package submission

import "errors"

// Domain errors for the submission package.
var (
	// ErrSubmissionNotFound is returned when a submission does not exist or
	// is not owned by the caller.
	ErrSubmissionNotFound = errors.New("submission: not found")
)
