package attribution

import "errors"

var (
	// ErrDataUnavailable means the vitals source gave nothing usable.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMalformedInstanceID means an instance has no uuid component.
	ErrMalformedInstanceID = errors.New("malformed instance id")

	// ErrJoinColumnMismatch means a joined row lacks an output column.
	ErrJoinColumnMismatch = errors.New("join column mismatch")

	// ErrShortIDCollision means two ranked workers derive the same short id.
	ErrShortIDCollision = errors.New("short id collision")
)

// Section error kinds as shown in reports
const (
	KindMalformedInstanceID = "MalformedInstanceId"
	KindJoinColumnMismatch  = "JoinColumnMismatch"
	KindShortIDCollision    = "ShortIdCollision"
	KindInternal            = "Internal"
)

// ErrorKind maps an attribution error to its report kind.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedInstanceID):
		return KindMalformedInstanceID
	case errors.Is(err, ErrJoinColumnMismatch):
		return KindJoinColumnMismatch
	case errors.Is(err, ErrShortIDCollision):
		return KindShortIDCollision
	default:
		return KindInternal
	}
}
