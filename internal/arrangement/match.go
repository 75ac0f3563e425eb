package arrangement

// Monitors carry no stable hardware identity, so matching is done by display
// name alone: a candidate arrangement matches the live one when both hold the
// same multiset of display names. Records are assigned first-fit, in order.
// When a model appears twice, which physical unit receives which stored
// geometry is decided by enumeration order and nothing else.

// ShapeCompatible reports whether a and b contain the same multiset of
// display names, ignoring geometry.
func ShapeCompatible(a, b Arrangement) bool {
	if len(a) != len(b) {
		return false
	}
	_, ok := assign(b, a)
	return ok
}

// FindMatch returns the first stored arrangement that is shape-compatible
// with live. stored is expected in priority order (most recent first).
func FindMatch(live Arrangement, stored []Arrangement) (Arrangement, bool) {
	for _, candidate := range stored {
		if len(candidate) != len(live) {
			continue
		}
		if _, ok := assign(candidate, live); ok {
			return candidate, true
		}
	}
	return nil, false
}

// Pair links one live monitor to the stored record it should converge to.
type Pair struct {
	Live   Monitor
	Target Monitor
}

// Changed reports whether applying Target would alter the live monitor.
func (p Pair) Changed() bool {
	return p.Live.Geometry != p.Target.Geometry
}

// PairUp assigns every live monitor a target record with the same display
// name, consuming targets first-fit. ok is false when any live monitor or
// target record is left unassigned.
func PairUp(live, target Arrangement) (pairs []Pair, ok bool) {
	if len(live) != len(target) {
		return nil, false
	}
	idx, ok := assign(live, target)
	if !ok {
		return nil, false
	}
	pairs = make([]Pair, len(live))
	for i, j := range idx {
		pairs[i] = Pair{Live: live[i], Target: target[j]}
	}
	return pairs, true
}

// assign walks from in order and, for each record, consumes the first
// unconsumed record of to with the same display name. It returns the index
// in to chosen for every record of from.
func assign(from, to Arrangement) ([]int, bool) {
	consumed := make([]bool, len(to))
	idx := make([]int, len(from))
	for i, m := range from {
		found := false
		for j := range to {
			if !consumed[j] && to[j].DisplayName == m.DisplayName {
				consumed[j] = true
				idx[i] = j
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return idx, true
}
