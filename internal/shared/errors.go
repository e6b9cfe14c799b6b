package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Library errors
	ErrMutationInFlight = fmt.Errorf("another library mutation is in progress")
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrPlaylistExists   = fmt.Errorf("playlist already exists")
	ErrNotAFolder       = fmt.Errorf("playlist is not a folder")
	ErrIsAFolder        = fmt.Errorf("playlist is a folder")

	// Collaborator errors
	ErrStore       = fmt.Errorf("library store failed")
	ErrTagRead     = fmt.Errorf("failed to read tags")
	ErrUnsupported = fmt.Errorf("unsupported file type")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotConfirmed    = fmt.Errorf("operation not confirmed")
)
