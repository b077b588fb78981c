package store

import (
	"context"
	"net/http"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/logging"
	"github.com/recoilapp/recoil/pkg/mutation"
	"github.com/recoilapp/recoil/pkg/records"
)

// batchItem is one operation inside a physical batch request.
type batchItem struct {
	Method string         `json:"method"`
	Path   string         `json:"path"`
	Body   map[string]any `json:"body,omitempty"`
}

// Transmit sends create/update descriptors to the store in chunks of at most
// the configured size, one physical request per chunk. It returns one raw
// result per chunk and surfaces the first transport failure to the caller;
// retry policy belongs to the caller.
func (c *Client) Transmit(ctx context.Context, descriptors []mutation.Descriptor) ([]mutation.BatchResult, error) {
	items := make([]batchItem, 0, len(descriptors))
	for _, d := range descriptors {
		item, err := encodeDescriptor(d)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	log := logging.Ctx(ctx)

	var results []mutation.BatchResult
	for start := 0; start < len(items); start += c.cfg.ChunkSize {
		end := min(start+c.cfg.ChunkSize, len(items))
		chunk := items[start:end]

		status, body, err := c.do(ctx, http.MethodPost, "/1/batch/", nil, map[string]any{
			"requests": chunk,
		})
		if err != nil {
			return results, err
		}
		if status != http.StatusOK {
			return results, errors.NewTransportError("batch", status, errors.New(string(body)))
		}

		results = append(results, mutation.BatchResult{StatusCode: status, Body: body})
		log.Debug().
			Int("chunk_size", len(chunk)).
			Int("status", status).
			Msg("Batch chunk transmitted")
	}

	return results, nil
}

// Notify delivers the push notification to subscribed devices.
func (c *Client) Notify(ctx context.Context, d mutation.Descriptor) error {
	if d.Kind != mutation.KindNotify {
		return errors.NewValidationError("kind", string(d.Kind), "notify transport only accepts notification descriptors")
	}

	status, body, err := c.do(ctx, http.MethodPost, "/1/push", nil, map[string]any{
		"where": map[string]any{"deviceType": "ios"},
		"data":  map[string]any{"alert": d.Alert},
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errors.NewTransportError("push", status, errors.New(string(body)))
	}

	logging.Ctx(ctx).Info().Str("alert", d.Alert).Msg("Push notification sent")
	return nil
}

// encodeDescriptor converts a descriptor into a store batch item. The
// canonical date-time becomes a Date object, and the coordinate pair becomes
// a single GeoPoint - emitted only when both halves are present.
func encodeDescriptor(d mutation.Descriptor) (batchItem, error) {
	var item batchItem
	switch d.Kind {
	case mutation.KindCreate:
		item.Method = http.MethodPost
		item.Path = casualtyPath
	case mutation.KindUpdate:
		item.Method = http.MethodPut
		item.Path = casualtyPath + "/" + d.TargetID
	default:
		return batchItem{}, errors.NewValidationError("kind", string(d.Kind), "batch transport only accepts create and update descriptors")
	}

	item.Body = encodeBody(d.Payload)
	return item, nil
}

func encodeBody(p mutation.Payload) map[string]any {
	body := make(map[string]any, len(p))

	var lat, lng *float64
	for f, v := range p {
		switch f {
		case records.FieldOccurredAt:
			body["dateTime"] = map[string]any{"__type": "Date", "iso": v}
		case records.FieldLatitude:
			lat = coord(v)
		case records.FieldLongitude:
			lng = coord(v)
		case records.FieldReportNumber:
			body["rdNumber"] = v
		default:
			body[f.String()] = v
		}
	}

	if lat != nil && lng != nil {
		body["location"] = map[string]any{
			"__type":    "GeoPoint",
			"latitude":  *lat,
			"longitude": *lng,
		}
	}

	return body
}

func coord(v any) *float64 {
	switch c := v.(type) {
	case *float64:
		return c
	case float64:
		return &c
	default:
		return nil
	}
}
