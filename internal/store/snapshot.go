package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/normalize"
	"github.com/recoilapp/recoil/pkg/records"
)

// casualtyObject is the wire shape of a stored casualty record.
type casualtyObject struct {
	ObjectID         string  `json:"objectId"`
	Address          string  `json:"address"`
	Age              float64 `json:"age"`
	Cause            string  `json:"cause"`
	ChargesTrialsURL string  `json:"chargesTrialsUrl"`
	Gender           string  `json:"gender"`
	LocationType     string  `json:"locationType"`
	Name             string  `json:"name"`
	Neighborhood     string  `json:"neighborhood"`
	Race             string  `json:"race"`
	ReportNumber     string  `json:"rdNumber"`
	StoryURL         string  `json:"storyUrl"`
	SourceRowNumber  int     `json:"sourceRowNumber"`

	DateTime *struct {
		ISO string `json:"iso"`
	} `json:"dateTime"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// Snapshot retrieves the store's recent records, most-recent-first. A zero
// window retrieves everything.
func (c *Client) Snapshot(ctx context.Context, window time.Duration) ([]records.CrimeRecord, error) {
	params := url.Values{}
	if window > 0 {
		cutoff := time.Now().UTC().Add(-window).Format(normalize.CanonicalTimeLayout)
		where, err := json.Marshal(map[string]any{
			"dateTime": map[string]any{
				"$gte": map[string]any{"__type": "Date", "iso": cutoff},
			},
		})
		if err != nil {
			return nil, errors.WrapTransport("snapshot", 0, err)
		}
		params.Set("where", string(where))
	}

	status, body, err := c.do(ctx, http.MethodGet, casualtyPath, params, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.NewTransportError("snapshot", status, errors.New(string(body)))
	}

	var out struct {
		Results []casualtyObject `json:"results"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.WrapTransport("snapshot", status, err)
	}

	recs := make([]records.CrimeRecord, 0, len(out.Results))
	for _, obj := range out.Results {
		recs = append(recs, hydrate(obj))
	}

	// The store returns ascending insertion order; the engine aligns
	// against the most recent record first.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}

	logging.Ctx(ctx).Debug().Int("records", len(recs)).Msg("Fetched store snapshot")
	return recs, nil
}

// hydrate converts a wire object into a CrimeRecord.
func hydrate(obj casualtyObject) records.CrimeRecord {
	rec := records.CrimeRecord{
		Address:          obj.Address,
		Age:              obj.Age,
		Cause:            obj.Cause,
		ChargesTrialsURL: obj.ChargesTrialsURL,
		Gender:           obj.Gender,
		LocationType:     obj.LocationType,
		Name:             obj.Name,
		Neighborhood:     obj.Neighborhood,
		ExternalID:       obj.ObjectID,
		Race:             obj.Race,
		ReportNumber:     obj.ReportNumber,
		StoryURL:         obj.StoryURL,
		SourceRowNumber:  obj.SourceRowNumber,
	}
	if obj.DateTime != nil {
		rec.OccurredAt = canonicalISO(obj.DateTime.ISO)
	}
	if obj.Location != nil {
		rec.SetCoordinates(obj.Location.Latitude, obj.Location.Longitude)
	}
	return rec
}

// canonicalISO trims store timestamps (which carry fractional seconds and a
// zone suffix) down to the canonical layout so literal equality against
// normalized feed values works.
func canonicalISO(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format(normalize.CanonicalTimeLayout)
	}
	if len(iso) >= len(normalize.CanonicalTimeLayout) {
		return iso[:len(normalize.CanonicalTimeLayout)]
	}
	return iso
}
