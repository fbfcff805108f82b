package elements

import "errors"

var (
	// ErrSchema marks structural corruption in the raw table store, such as a
	// data-description entry referencing a spectral-window or polarization row
	// that does not exist. Aborts the whole conversion.
	ErrSchema = errors.New("table schema corrupt")
	// ErrConfiguration marks an invalid or incomplete caller configuration.
	// Surfaced before any table I/O is attempted.
	ErrConfiguration = errors.New("configuration invalid")
	// ErrLookup marks a failed coordinate join for an otherwise well-formed
	// partition. The partition is skipped and processing continues.
	ErrLookup = errors.New("coordinate lookup failed")

	ErrUnknownLayout    = errors.New("unknown payload layout")
	ErrShapeMismatch    = errors.New("payload shape mismatch")
	ErrInvalidChunkSpec = errors.New("invalid chunk specification")
)
