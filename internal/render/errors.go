package render

import "errors"

// ErrStale is wrapped by every error Render returns. The accompanying tree
// is the last successfully rendered one.
var ErrStale = errors.New("render failed, previous tree retained")
