package viewshed

import "errors"

// ErrNoCandidates is returned by Analyze when it is called with no
// candidates.
var ErrNoCandidates = errors.New("viewshed: no candidates with elevation")
