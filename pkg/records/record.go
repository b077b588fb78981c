// Package records defines the CrimeRecord data model shared by the feed
// parser, the store client, and the reconciliation engine, along with the
// identity-matching strategies and field-level merge policies that decide how
// two loosely-identified records converge.
package records

import (
	"fmt"
	"slices"
)

// Field names a tracked CrimeRecord attribute. Mutation payloads are keyed by
// Field and validated against the known schema, so a typo in a field key is a
// construction-time error instead of a silent no-op downstream.
type Field string

// Tracked fields.
const (
	FieldAddress          Field = "address"
	FieldAge              Field = "age"
	FieldCause            Field = "cause"
	FieldChargesTrialsURL Field = "chargesTrialsUrl"
	FieldOccurredAt       Field = "occurredAt"
	FieldGender           Field = "gender"
	FieldLatitude         Field = "latitude"
	FieldLongitude        Field = "longitude"
	FieldLocationType     Field = "locationType"
	FieldName             Field = "name"
	FieldNeighborhood     Field = "neighborhood"
	FieldExternalID       Field = "externalId"
	FieldRace             Field = "race"
	FieldReportNumber     Field = "reportNumber"
	FieldStoryURL         Field = "storyUrl"
	FieldSourceRowNumber  Field = "sourceRowNumber"
)

// Fields returns every merge-tracked field in declaration order.
// SourceRowNumber is deliberately absent: it is a feed-side ordinal used only
// by the row-ordinal identity strategy, never merged between records.
func Fields() []Field {
	return []Field{
		FieldAddress,
		FieldAge,
		FieldCause,
		FieldChargesTrialsURL,
		FieldOccurredAt,
		FieldGender,
		FieldLatitude,
		FieldLongitude,
		FieldLocationType,
		FieldName,
		FieldNeighborhood,
		FieldExternalID,
		FieldRace,
		FieldReportNumber,
		FieldStoryURL,
	}
}

// IsValid returns true if the field is part of the known schema.
func (f Field) IsValid() bool {
	return f == FieldSourceRowNumber || slices.Contains(Fields(), f)
}

// String returns the string representation of the field.
func (f Field) String() string {
	return string(f)
}

// CrimeRecord represents one real-world casualty event. A record is
// constructed fresh from a parsed feed row (no ExternalID) or hydrated from a
// store query result (ExternalID present). Latitude and Longitude are set
// together or both nil.
type CrimeRecord struct {
	Address          string
	Age              float64
	Cause            string
	ChargesTrialsURL string
	OccurredAt       string // canonical ISO-8601 date-time, midnight when time unknown
	Gender           string
	Latitude         *float64
	Longitude        *float64
	LocationType     string
	Name             string
	Neighborhood     string
	ExternalID       string // opaque store identifier, immutable once assigned
	Race             string
	ReportNumber     string
	StoryURL         string
	SourceRowNumber  int // stable ordinal position in the source feed
}

// Value returns the current value of a tracked field.
func (r *CrimeRecord) Value(f Field) any {
	switch f {
	case FieldAddress:
		return r.Address
	case FieldAge:
		return r.Age
	case FieldCause:
		return r.Cause
	case FieldChargesTrialsURL:
		return r.ChargesTrialsURL
	case FieldOccurredAt:
		return r.OccurredAt
	case FieldGender:
		return r.Gender
	case FieldLatitude:
		return r.Latitude
	case FieldLongitude:
		return r.Longitude
	case FieldLocationType:
		return r.LocationType
	case FieldName:
		return r.Name
	case FieldNeighborhood:
		return r.Neighborhood
	case FieldExternalID:
		return r.ExternalID
	case FieldRace:
		return r.Race
	case FieldReportNumber:
		return r.ReportNumber
	case FieldStoryURL:
		return r.StoryURL
	case FieldSourceRowNumber:
		return r.SourceRowNumber
	default:
		return nil
	}
}

// IsZero reports whether a tracked field is empty/unset.
func (r *CrimeRecord) IsZero(f Field) bool {
	switch f {
	case FieldAge:
		return r.Age == 0
	case FieldLatitude:
		return r.Latitude == nil
	case FieldLongitude:
		return r.Longitude == nil
	case FieldSourceRowNumber:
		return r.SourceRowNumber == 0
	default:
		s, _ := r.Value(f).(string)
		return s == ""
	}
}

// HasCoordinates reports whether both halves of the coordinate pair are set.
func (r *CrimeRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SetCoordinates sets both halves of the coordinate pair together.
func (r *CrimeRecord) SetCoordinates(lat, lng float64) {
	r.Latitude = &lat
	r.Longitude = &lng
}

// equalField compares one tracked field of two records.
func equalField(a, b *CrimeRecord, f Field) bool {
	switch f {
	case FieldLatitude:
		return equalCoord(a.Latitude, b.Latitude)
	case FieldLongitude:
		return equalCoord(a.Longitude, b.Longitude)
	default:
		return a.Value(f) == b.Value(f)
	}
}

// copyField copies one tracked field from src onto dst.
func copyField(dst, src *CrimeRecord, f Field) {
	switch f {
	case FieldAddress:
		dst.Address = src.Address
	case FieldAge:
		dst.Age = src.Age
	case FieldCause:
		dst.Cause = src.Cause
	case FieldChargesTrialsURL:
		dst.ChargesTrialsURL = src.ChargesTrialsURL
	case FieldOccurredAt:
		dst.OccurredAt = src.OccurredAt
	case FieldGender:
		dst.Gender = src.Gender
	case FieldLatitude:
		dst.Latitude = clone(src.Latitude)
	case FieldLongitude:
		dst.Longitude = clone(src.Longitude)
	case FieldLocationType:
		dst.LocationType = src.LocationType
	case FieldName:
		dst.Name = src.Name
	case FieldNeighborhood:
		dst.Neighborhood = src.Neighborhood
	case FieldExternalID:
		dst.ExternalID = src.ExternalID
	case FieldRace:
		dst.Race = src.Race
	case FieldReportNumber:
		dst.ReportNumber = src.ReportNumber
	case FieldStoryURL:
		dst.StoryURL = src.StoryURL
	}
}

func equalCoord(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// String returns a short description used in identity-mismatch diagnostics.
func (r *CrimeRecord) String() string {
	id := r.ExternalID
	if id == "" {
		id = "unsaved"
	}
	return fmt.Sprintf("CrimeRecord(%s %q @ %s)", id, r.Address, r.OccurredAt)
}
