package main

// Exit codes for the CLI. A watch that times out exits with ExitSuccess:
// the task may still be running server-side and the watch can be resumed.
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitTokenMissing  = 2
	ExitOrgUnresolved = 3
	ExitValidation    = 4
	ExitAPIError      = 5
	ExitEventRejected = 6
)
