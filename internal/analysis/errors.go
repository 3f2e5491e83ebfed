package analysis

import "errors"

// Common errors returned by analyzers.
var (
	// ErrAnalysisFailed is returned when an entry could not be analyzed for
	// any general reason.
	ErrAnalysisFailed = errors.New("failed to analyze journal entry")

	// ErrInvalidResponse is returned when the model response cannot be
	// parsed or is missing scores.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model refuses the content.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for errors that may resolve on retry.
	ErrTransientFailure = errors.New("transient error during entry analysis")

	// ErrInvalidConfig is returned when the analyzer configuration is invalid.
	ErrInvalidConfig = errors.New("invalid analyzer configuration")
)
