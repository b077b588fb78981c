package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recoilapp/recoil/pkg/errors"
)

// fakeGeocoder returns a fixed coordinate pair, or nothing when failing.
type fakeGeocoder struct {
	lat, lng float64
	fail     bool
	calls    int
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) (*float64, *float64) {
	g.calls++
	if g.fail {
		return nil, nil
	}
	lat, lng := g.lat, g.lng
	return &lat, &lng
}

func TestAuthoritativeOverwritesDifferingFields(t *testing.T) {
	scraped := &CrimeRecord{
		Address:    "100 N State St",
		OccurredAt: "2014-03-05T23:30:00",
		Cause:      "Shooting",
		Age:        20,
	}
	stored := &CrimeRecord{
		Address:    "100 N State St",
		OccurredAt: "2014-03-05T23:30:00",
		Cause:      "Shooting",
		Age:        21,
		Name:       "John Doe",
		ExternalID: "abc123",
	}

	changed, err := Authoritative(nil, scraped, stored)
	require.NoError(t, err)

	assert.ElementsMatch(t, []Field{FieldAge, FieldName, FieldExternalID}, changed)
	assert.Equal(t, 21.0, scraped.Age)
	assert.Equal(t, "John Doe", scraped.Name)
	// The scraped record acquires the store identity.
	assert.Equal(t, "abc123", scraped.ExternalID)
}

func TestAuthoritativeIsIdempotent(t *testing.T) {
	scraped := &CrimeRecord{Address: "100 N State St", OccurredAt: "2014-03-05T23:30:00"}
	stored := fullRecord()
	stored.Address = scraped.Address
	stored.OccurredAt = scraped.OccurredAt

	first, err := Authoritative(nil, scraped, stored)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := Authoritative(nil, scraped, stored)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestAuthoritativeRejectsUnmatchedRecords(t *testing.T) {
	a := &CrimeRecord{Address: "100 N State St", OccurredAt: "2014-03-05T23:30:00", Name: "John Doe"}
	b := &CrimeRecord{Address: "200 W Lake St", OccurredAt: "2014-03-06T01:00:00", Name: "Jane Roe"}

	changed, err := Authoritative(nil, a, b)
	assert.Nil(t, changed)
	assert.True(t, errors.IsIdentityMismatch(err))

	// The target must be untouched after a refused merge.
	assert.Equal(t, "John Doe", a.Name)
}

func TestAuthoritativeHonorsMatcherStrategy(t *testing.T) {
	// Both records lack address and time; the tiered matcher lets them
	// through, the strict one refuses.
	a := &CrimeRecord{Name: "John Doe"}
	b := &CrimeRecord{Name: "Jane Roe"}

	_, err := Authoritative(NewTieredMatcher(), a, b)
	assert.NoError(t, err)

	_, err = Authoritative(NewStrictMatcher(), &CrimeRecord{Name: "A"}, &CrimeRecord{Name: "B"})
	assert.True(t, errors.IsIdentityMismatch(err))
}

func TestFillMissingNeverOverwrites(t *testing.T) {
	stored := fullRecord()
	original := *stored

	feed := &CrimeRecord{
		Address:      "999 Different St",
		Age:          99,
		Cause:        "Other",
		OccurredAt:   "2015-01-01T00:00:00",
		Name:         "Someone Else",
		Neighborhood: "Elsewhere",
	}

	fill := FillMissing(context.Background(), stored, feed, nil)

	assert.Empty(t, fill)
	assert.Equal(t, original, *stored)
}

func TestFillMissingFillsOnlyEmptyFields(t *testing.T) {
	stored := &CrimeRecord{
		Address:    "100 N State St",
		OccurredAt: "2014-03-05T23:30:00",
		ExternalID: "abc123",
	}
	lat, lng := 41.881, -87.623
	feed := &CrimeRecord{
		Address:    "100 N State St",
		OccurredAt: "2014-03-05T23:30:00",
		Name:       "John Doe",
		Age:        34,
		Latitude:   &lat,
		Longitude:  &lng,
	}

	fill := FillMissing(context.Background(), stored, feed, nil)

	assert.Equal(t, "John Doe", fill[FieldName])
	assert.Equal(t, 34.0, fill[FieldAge])
	assert.NotContains(t, fill, FieldAddress)
	assert.NotContains(t, fill, FieldExternalID)

	// Coordinates fill jointly from the incoming record.
	require.Contains(t, fill, FieldLatitude)
	require.Contains(t, fill, FieldLongitude)
	assert.True(t, stored.HasCoordinates())
}

func TestFillMissingGeocodesNewlyFilledAddress(t *testing.T) {
	geo := &fakeGeocoder{lat: 41.9, lng: -87.65}

	stored := &CrimeRecord{OccurredAt: "2014-03-05T23:30:00", ExternalID: "abc123"}
	feed := &CrimeRecord{Address: "4600 S Drexel Blvd", OccurredAt: "2014-03-05T23:30:00"}

	fill := FillMissing(context.Background(), stored, feed, geo)

	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, "4600 S Drexel Blvd", fill[FieldAddress])
	require.True(t, stored.HasCoordinates())
	assert.Equal(t, 41.9, *stored.Latitude)
	assert.Equal(t, -87.65, *stored.Longitude)
}

func TestFillMissingToleratesGeocodeFailure(t *testing.T) {
	geo := &fakeGeocoder{fail: true}

	stored := &CrimeRecord{OccurredAt: "2014-03-05T23:30:00"}
	feed := &CrimeRecord{Address: "4600 S Drexel Blvd", OccurredAt: "2014-03-05T23:30:00"}

	fill := FillMissing(context.Background(), stored, feed, geo)

	assert.Equal(t, "4600 S Drexel Blvd", fill[FieldAddress])
	assert.NotContains(t, fill, FieldLatitude)
	assert.NotContains(t, fill, FieldLongitude)
	assert.False(t, stored.HasCoordinates())
}

func TestFillMissingDoesNotGeocodeExistingAddress(t *testing.T) {
	geo := &fakeGeocoder{lat: 1, lng: 2}

	stored := &CrimeRecord{Address: "100 N State St", OccurredAt: "t"}
	feed := &CrimeRecord{Address: "100 N State St", OccurredAt: "t", Name: "John Doe"}

	FillMissing(context.Background(), stored, feed, geo)
	assert.Zero(t, geo.calls)
}
