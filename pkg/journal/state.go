package journal

// stateT is the decode context for one journal: append-only
// host/source/sourcetype dictionaries, the active index into each,
// and the rolling base timestamp. Events are deltas against this
// context. Constructed empty at journal start, discarded at end;
// nothing persists across journals.
type stateT struct {
	hosts       []string
	sources     []string
	sourcetypes []string

	activeHost       int
	activeSource     int
	activeSourcetype int

	baseTime    uint64
	baseTimeSet bool
}

func newState() stateT {
	return stateT{
		activeHost:       -1,
		activeSource:     -1,
		activeSourcetype: -1,
	}
}

// Host returns the active host string, or "" when no SetActive has
// fired yet. Indices are validated at SetActive time, so a
// non-negative index is always in range.
func (s *stateT) Host() string {
	if s.activeHost < 0 {
		return ""
	}
	return s.hosts[s.activeHost]
}

func (s *stateT) Source() string {
	if s.activeSource < 0 {
		return ""
	}
	return s.sources[s.activeSource]
}

func (s *stateT) Sourcetype() string {
	if s.activeSourcetype < 0 {
		return ""
	}
	return s.sourcetypes[s.activeSourcetype]
}
