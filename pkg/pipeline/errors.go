package pipeline

import "errors"

// ErrLocationDataUnavailable is returned when elevation resolution for
// the candidate grid itself fails entirely — fatal, since there is
// nothing left to score.
var ErrLocationDataUnavailable = errors.New("pipeline: location data unavailable")

// ErrCancelled is returned when a run is superseded by a newer run
// (one-run-at-a-time policy) or its context is cancelled directly.
var ErrCancelled = errors.New("pipeline: cancelled")
