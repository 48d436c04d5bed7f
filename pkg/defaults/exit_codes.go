package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Clean exit, scan completed
	ExitFindings      = 1 // Scan completed and the injection engine reported a hit
	ExitUserError     = 2 // Invalid arguments, configuration, or target URL
	ExitNetworkError  = 3 // Network/connection failure
	ExitInternalError = 4 // Unexpected internal error
)
