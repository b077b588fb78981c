package records

import (
	"context"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
)

// Geocoder resolves an address to a coordinate pair. Implementations must
// return (nil, nil) on failure; a geocoding problem is never allowed to raise
// into the merge engine.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng *float64)
}

// Authoritative merges incoming into target under the authoritative-overwrite
// policy: every tracked field that differs is overwritten with the incoming
// value, and the changed field names are returned in schema order. Used when
// folding store-retrieved data into a freshly scraped record; the store copy
// carries manually curated fields and the record's ExternalID, both of which
// must win.
//
// The two records must satisfy the matcher's same-event test first; merging
// unmatched records is a caller error. Applying the same merge twice yields
// an empty changed set the second time.
func Authoritative(m Matcher, target, incoming *CrimeRecord) ([]Field, error) {
	if m == nil {
		m = NewTieredMatcher()
	}
	if !m.SameEvent(target, incoming) {
		return nil, &errors.IdentityMismatchError{
			Target:   target.String(),
			Incoming: incoming.String(),
		}
	}

	var changed []Field
	for _, f := range Fields() {
		if !equalField(target, incoming, f) {
			copyField(target, incoming, f)
			changed = append(changed, f)
		}
	}
	return changed, nil
}

// FillMissing merges incoming into target under the fill-missing-only policy
// and returns the payload of fields to set - never touching a target field
// that already holds a value. Used when reconciling a feed row against an
// already-stored record believed more complete. An empty payload means no
// mutation is needed.
//
// The coordinate pair is a single derived field: when the target gains an
// address it previously lacked, the pair is taken from the incoming record if
// present, otherwise looked up through the geocoder. Both halves are always
// set together.
func FillMissing(ctx context.Context, target, incoming *CrimeRecord, geo Geocoder) map[Field]any {
	fill := make(map[Field]any)

	addressFilled := false
	for _, f := range Fields() {
		switch f {
		case FieldExternalID, FieldLatitude, FieldLongitude:
			continue
		}
		if !target.IsZero(f) || incoming.IsZero(f) {
			continue
		}
		fill[f] = incoming.Value(f)
		copyField(target, incoming, f)
		if f == FieldAddress {
			addressFilled = true
		}
	}

	if !target.HasCoordinates() {
		switch {
		case incoming.HasCoordinates():
			target.Latitude = clone(incoming.Latitude)
			target.Longitude = clone(incoming.Longitude)
		case addressFilled && geo != nil:
			lat, lng := geo.Geocode(ctx, target.Address)
			if lat == nil || lng == nil {
				logging.Ctx(ctx).Debug().
					Str("address", target.Address).
					Msg("Geocode unavailable, leaving coordinates empty")
				break
			}
			target.Latitude = lat
			target.Longitude = lng
		}
		if target.HasCoordinates() {
			fill[FieldLatitude] = target.Latitude
			fill[FieldLongitude] = target.Longitude
		}
	}

	return fill
}
