package modem

import "errors"

// ErrConfig is returned when a ModConfig or a component built from one
// violates an invariant the constructor must enforce. Wrapped with
// fmt.Errorf("%w: ...", ErrConfig, ...) at the raising site so callers can
// both errors.Is against it and read a specific reason.
var ErrConfig = errors.New("modem: invalid configuration")
