package gemini

import "errors"

// ErrEmptyEntryText is returned when asked to analyze an empty entry.
var ErrEmptyEntryText = errors.New("entry text cannot be empty")
