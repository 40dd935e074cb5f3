package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Player errors
	ErrMediaUnavailable = fmt.Errorf("media element unavailable")
	ErrEmptyQueue       = fmt.Errorf("queue is empty")
	ErrIndexOutOfRange  = fmt.Errorf("index out of range")
	ErrCorruptSettings  = fmt.Errorf("corrupt player settings")

	// Media errors
	ErrNoSource          = fmt.Errorf("no media source")
	ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")
	ErrSourceUnreachable = fmt.Errorf("media source unreachable")

	// Storage errors
	ErrKeyNotFound = fmt.Errorf("key not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
