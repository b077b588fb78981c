package records

// Matcher decides whether two records from different sources refer to the
// same real-world event. The predicate must be symmetric; it is used both as
// an equality test for deduplication and as the matching criterion during
// sync. The strategy is pluggable so callers can trade recall for precision
// without changing call sites.
type Matcher interface {
	SameEvent(a, b *CrimeRecord) bool
}

// NewTieredMatcher returns the default tiered identity heuristic. First
// matching rule wins:
//
//  1. both records carry an ExternalID and the ids are equal
//  2. address equal AND occurredAt equal
//  3. name equal AND occurredAt equal
//
// ExternalID is authoritative when available; address+time and name+time are
// independent two-of-three corroborating signals, because the feed frequently
// omits the name while the time is almost always present.
//
// Rules 2 and 3 are literal field comparisons, so two "unknown" (empty)
// values compare equal: two records both missing address and time but naming
// different people still match under rule 2. That is a known weakness of the
// heuristic, preserved for parity with the data already reconciled; use
// NewStrictMatcher to require non-empty fields instead.
func NewTieredMatcher() Matcher {
	return tieredMatcher{}
}

type tieredMatcher struct{}

func (tieredMatcher) SameEvent(a, b *CrimeRecord) bool {
	if a.ExternalID != "" && b.ExternalID != "" && a.ExternalID == b.ExternalID {
		return true
	}
	if a.Address == b.Address && a.OccurredAt == b.OccurredAt {
		return true
	}
	if a.Name == b.Name && a.OccurredAt == b.OccurredAt {
		return true
	}
	return false
}

// NewStrictMatcher returns a stricter variant of the tiered heuristic that
// only lets a rule fire when every field it compares is non-empty on both
// sides. Two records that are both missing address and time never match.
func NewStrictMatcher() Matcher {
	return strictMatcher{}
}

type strictMatcher struct{}

func (strictMatcher) SameEvent(a, b *CrimeRecord) bool {
	if a.ExternalID != "" && b.ExternalID != "" && a.ExternalID == b.ExternalID {
		return true
	}
	if a.OccurredAt == "" || b.OccurredAt == "" || a.OccurredAt != b.OccurredAt {
		return false
	}
	if a.Address != "" && b.Address != "" && a.Address == b.Address {
		return true
	}
	if a.Name != "" && b.Name != "" && a.Name == b.Name {
		return true
	}
	return false
}
