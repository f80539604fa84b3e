// Package exitcode defines the process exit codes of the todoflow CLI.
package exitcode

const (
	Success = 0

	// UserError covers bad arguments, unknown ids and out of range pages.
	UserError = 1

	// ConfigError covers missing or rejected credentials and invalid settings.
	ConfigError = 2

	// BackendError covers failures reported by the record store or the network.
	BackendError = 3
)
