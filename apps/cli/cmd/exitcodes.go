package cmd

// Exit codes for fauxhttp CLI
const (
	// ExitSuccess indicates the command succeeded
	ExitSuccess = 0

	// ExitFailure indicates a command error, e.g. no route matched
	ExitFailure = 1

	// ExitFixtureError indicates a fixture file failed to load or validate
	ExitFixtureError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
