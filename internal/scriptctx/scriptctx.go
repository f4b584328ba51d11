// Package scriptctx classifies template lines as inside or outside an
// embedded sub-language region (e.g. <script> blocks in an HTML template)
// in a single forward pass.
package scriptctx

import "strings"

// Verdict is the classification for one line.
type Verdict struct {
	// Inside reports whether this line's content must be checked under the
	// embedded-script rule set.
	Inside bool
	// Structural marks a line that only opens a region: the marker itself is
	// structure, not payload, and is excluded from content checks.
	Structural bool
}

// Tracker scans lines left to right. Markers are matched case-insensitively
// as substrings (an opening tag may carry attributes).
type Tracker struct {
	open   string
	close  string
	inside bool
}

func New(openMarker, closeMarker string) *Tracker {
	return &Tracker{open: strings.ToLower(openMarker), close: strings.ToLower(closeMarker)}
}

// NewScript returns a tracker for HTML <script> regions.
func NewScript() *Tracker { return New("<script", "</script>") }

// Line consumes the next line and returns its verdict.
//
// A line carrying both markers is inside for its own checks only; the
// persistent state entering the next line is unchanged. A line with only an
// opening marker flips the state to inside but is itself structural. A line
// with only a closing marker is still checked under the inside rules before
// the state flips to outside, so payload on the closing line is not missed.
func (t *Tracker) Line(s string) Verdict {
	low := strings.ToLower(s)
	hasOpen := strings.Contains(low, t.open)
	hasClose := strings.Contains(low, t.close)

	switch {
	case hasOpen && hasClose:
		return Verdict{Inside: true}
	case hasOpen:
		t.inside = true
		return Verdict{Inside: true, Structural: true}
	case hasClose:
		t.inside = false
		return Verdict{Inside: true}
	default:
		return Verdict{Inside: t.inside}
	}
}

// Reset returns the tracker to the outside state for reuse on another file.
func (t *Tracker) Reset() { t.inside = false }
