package topology

import "errors"

var (
	// ErrEmpty is returned when the database holds no topology.
	ErrEmpty = errors.New("topology: no layout stored")

	// ErrInvalidDocument is returned for YAML that cannot be decoded.
	ErrInvalidDocument = errors.New("topology: invalid document")

	// ErrUnknownSource is returned for an unsupported topology.source value.
	ErrUnknownSource = errors.New("topology: unknown source")
)
