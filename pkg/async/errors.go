package async

import "errors"

// ErrTimeout is returned by AwaitWithTimeout when the future has not
// completed within the allowed duration.
var ErrTimeout = errors.New("async: operation timed out waiting for future completion")
