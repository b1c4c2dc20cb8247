// Package errors provides the structured error type used by the gofetch
// command line and configuration layers. Each AppError carries a
// machine-readable code that maps to a process exit status.
//
// The fetch package does not use these errors: transport failures reach
// callers exactly as the transport reported them.
package errors
