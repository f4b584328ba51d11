// Package pairing detects "protection disabled without being re-enabled"
// patterns: given the positions of disabling (Open) and re-enabling (Close)
// calls in one file, it reports the Opens left unmatched.
package pairing

import "sort"

type Kind int

const (
	Open Kind = iota
	Close
)

// Event is an Open or Close marker at a 1-based line. Events are transient,
// built and consumed within one file's analysis.
type Event struct {
	Kind Kind
	Line int
}

// Unresolved returns the Open events that no later Close resolves, in
// ascending line order.
//
// Opens are resolved in file order. Before matching an Open, every Close at
// or before its line is discarded: those belong to an earlier, already
// resolved Open and must not be reused. The first remaining Close (if any)
// is consumed; otherwise the Open is unresolved. Each Close therefore
// resolves at most one Open, and always one strictly above its own line.
func Unresolved(opens, closes []Event) []Event {
	if len(opens) == 0 {
		return nil
	}
	sortedOpens := make([]Event, len(opens))
	copy(sortedOpens, opens)
	sort.Slice(sortedOpens, func(i, j int) bool { return sortedOpens[i].Line < sortedOpens[j].Line })

	remaining := make([]Event, len(closes))
	copy(remaining, closes)
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Line < remaining[j].Line })

	var unresolved []Event
	for _, open := range sortedOpens {
		for len(remaining) > 0 && remaining[0].Line <= open.Line {
			remaining = remaining[1:]
		}
		if len(remaining) > 0 {
			remaining = remaining[1:]
			continue
		}
		unresolved = append(unresolved, open)
	}
	return unresolved
}

// OpensAt builds Open events from line numbers.
func OpensAt(lines ...int) []Event {
	out := make([]Event, 0, len(lines))
	for _, l := range lines {
		out = append(out, Event{Kind: Open, Line: l})
	}
	return out
}

// ClosesAt builds Close events from line numbers.
func ClosesAt(lines ...int) []Event {
	out := make([]Event, 0, len(lines))
	for _, l := range lines {
		out = append(out, Event{Kind: Close, Line: l})
	}
	return out
}
