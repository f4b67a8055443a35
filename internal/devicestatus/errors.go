package devicestatus

import "errors"

// Domain errors for the devicestatus package.
//
// Check with errors.Is():
//
//	if errors.Is(err, devicestatus.ErrInvalidLayout) {
//	    // configuration problem, not a per-request failure
//	}
var (
	// ErrMalformedPayload is returned when the upstream payload has no devices array.
	ErrMalformedPayload = errors.New("devicestatus: malformed payload")

	// ErrInvalidLayout is returned when a Layout fails validation.
	ErrInvalidLayout = errors.New("devicestatus: invalid layout")

	// ErrUnknownSource is returned when a layout references a source other than ds or geo.
	ErrUnknownSource = errors.New("devicestatus: unknown source")
)
