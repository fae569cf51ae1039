package core

import "errors"

// Error kinds per §7. All are recovered locally by the caller; the core
// never panics except ErrBusConflict, which can only occur during
// construction (overlapping page-handler claims).
var (
	// ErrStateDeserialize is returned by SetState/Deserialize on a bad
	// magic tag, version mismatch, truncated snapshot or CRC32
	// mismatch. No ROM checksum is recorded, so a snapshot taken against
	// a different ROM is not detected. Prior state is retained.
	ErrStateDeserialize = errors.New("core: save state is invalid or incompatible")

	// ErrBusConflict is returned by Bus.AddPageHandler when two
	// handlers claim overlapping pages. Construction-time only.
	ErrBusConflict = errors.New("core: overlapping page-handler range")
)
