package runlog

import "errors"

// ErrInvalidLevel is returned for log level names other than debug, info, warn and error.
var ErrInvalidLevel = errors.New("invalid log level")
