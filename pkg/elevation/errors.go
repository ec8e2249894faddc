package elevation

import "errors"

// ErrAllElevationsFailed is returned by Resolve when every input point
// failed to resolve, across both cache and network strategies.
var ErrAllElevationsFailed = errors.New("elevation: all elevations failed")

// ErrProviderExhausted names the case where a batch's primary and
// fallback providers both failed after retries. No code path in this
// package returns it: Provider.ResolveBatch leaves the affected points
// unresolved (nil) instead, and Resolve reports them that way.
var ErrProviderExhausted = errors.New("elevation: provider exhausted")
