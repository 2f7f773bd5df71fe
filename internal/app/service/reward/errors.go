package reward

import "errors"

// ErrPointProcessingFailed wraps any unexpected failure in the reaction path.
// The triggering caller decides whether to report a partial success; the
// payment state change itself is already committed.
var ErrPointProcessingFailed = errors.New("reward: point processing failed")
