// Package errors provides the classified error primitives used across qrnotes.
//
// A ClassifiedError carries a category, a severity, a retry hint and a small
// context map. Packages classify errors at their boundaries (configuration
// loading, QR emission, document I/O) and the CLI adapter turns the category
// into a process exit code.
//
//	err := errors.QRError("qr emission failed").
//		WithContext("qr_id", id).
//		WithCause(cause).
//		Build()
package errors
