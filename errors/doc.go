// Package errors provides the error taxonomy shared by the binding packages.
//
// Every failure raised while binding a request or a response is an *AppError
// carrying a machine-readable code. Precondition violations name the offending
// parameter in Details["param"]; low-level failures (decoder errors, unknown
// charsets, transport read errors) are wrapped into a single CLIENT_ERROR whose
// Cause keeps the original error reachable through errors.Is / errors.As.
package errors
