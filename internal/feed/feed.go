// Package feed fetches and parses the public spreadsheet of homicide records
// that drives reconciliation. The spreadsheet is exported as CSV with fixed
// textual column headers; rows are loosely structured free text, so each row
// passes through the normalizer before it becomes a CrimeRecord.
package feed

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"time"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/normalize"
	"github.com/recoilapp/recoil/pkg/records"
)

// Column headers of the source spreadsheet. A missing column reads as an
// empty string for every row.
const (
	colAddress      = "Address"
	colAge          = "Age"
	colCause        = "Cause"
	colCharges      = "Charges and trials"
	colDate         = "Date"
	colTime         = "Time"
	colGender       = "Gender"
	colLocation     = "Location"
	colName         = "Name"
	colNeighborhood = "Neighborhood"
	colRace         = "Race"
	colRDNumber     = "RD Number"
	colStoryURL     = "Story url"
)

// SheetSource reads the feed snapshot from a published spreadsheet CSV URL.
type SheetSource struct {
	url  string
	http *http.Client
	geo  records.Geocoder
}

// Option configures a SheetSource.
type Option func(*SheetSource)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(s *SheetSource) { s.http = h }
}

// WithGeocoder enables per-row geocoding of feed addresses. Lookups are
// best-effort; rows keep an empty coordinate pair when the lookup fails.
func WithGeocoder(g records.Geocoder) Option {
	return func(s *SheetSource) { s.geo = g }
}

// NewSheetSource creates a feed source for the given CSV export URL.
func NewSheetSource(url string, opts ...Option) *SheetSource {
	s := &SheetSource{
		url:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads and parses the feed snapshot, returning records ordered
// most-recent-first. Rows whose required date cannot be parsed are skipped
// and logged; the snapshot continues with the remaining rows.
func (s *SheetSource) Fetch(ctx context.Context) ([]records.CrimeRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.WrapTransport("feed", 0, err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.WrapTransport("feed", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewTransportError("feed", resp.StatusCode, errors.New("unexpected feed status"))
	}

	rows, err := Parse(ctx, resp.Body)
	if err != nil {
		return nil, err
	}

	if s.geo != nil {
		geocodeRows(ctx, rows, s.geo)
	}

	// The spreadsheet appends chronologically; the engine wants the most
	// recent casualty first.
	reverse(rows)
	return rows, nil
}

// Parse reads the CSV feed into CrimeRecords in source order, assigning each
// row its stable source ordinal.
func Parse(ctx context.Context, r io.Reader) ([]records.CrimeRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // hand-edited sheets drop trailing cells

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewMalformedInputError(0, "header", err.Error())
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	log := logging.Ctx(ctx)

	var out []records.CrimeRecord
	rowNum := 0
	for {
		raw, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewMalformedInputError(rowNum+1, "row", err.Error())
		}
		rowNum++

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(raw) {
				return ""
			}
			return raw[i]
		}

		occurredAt, err := normalize.ParseDateTime(cell(colDate), cell(colTime))
		if err != nil {
			log.Warn().
				Int("row", rowNum).
				Str("date", cell(colDate)).
				Msg("Skipping feed row with unparseable date")
			continue
		}

		out = append(out, records.CrimeRecord{
			Address:          cell(colAddress),
			Age:              normalize.ParseAge(cell(colAge)),
			Cause:            cell(colCause),
			ChargesTrialsURL: cell(colCharges),
			OccurredAt:       occurredAt,
			Gender:           cell(colGender),
			LocationType:     cell(colLocation),
			Name:             normalize.CleanName(cell(colName)),
			Neighborhood:     cell(colNeighborhood),
			Race:             cell(colRace),
			ReportNumber:     cell(colRDNumber),
			StoryURL:         cell(colStoryURL),
			SourceRowNumber:  rowNum,
		})
	}

	return out, nil
}

func geocodeRows(ctx context.Context, rows []records.CrimeRecord, geo records.Geocoder) {
	for i := range rows {
		if rows[i].Address == "" || rows[i].HasCoordinates() {
			continue
		}
		lat, lng := geo.Geocode(ctx, rows[i].Address)
		if lat != nil && lng != nil {
			rows[i].Latitude = lat
			rows[i].Longitude = lng
		}
	}
}

func reverse(rows []records.CrimeRecord) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
