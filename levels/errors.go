package levels

import "errors"

var (
	ErrInvalidDimensions = errors.New("levels: invalid level dimensions")
	ErrLayerSize         = errors.New("levels: layer size does not match level dimensions")
	ErrMissingLayer      = errors.New("levels: missing layer")
	ErrSpawnBlocked      = errors.New("levels: spawn on a blocked tile")
)
