// Package mutation defines the pending-write descriptors produced by a
// reconciliation pass and consumed exactly once by the batch transport.
// Descriptors are decoupled from the transport that executes them and are
// never mutated after creation.
package mutation

import (
	"encoding/json"
	"fmt"

	"github.com/recoilapp/recoil/pkg/errors"
	"github.com/recoilapp/recoil/pkg/records"
)

// Kind identifies what a descriptor asks the transport to do.
type Kind string

const (
	// KindCreate inserts a new record into the store.
	KindCreate Kind = "create"
	// KindUpdate patches fields of an existing record.
	KindUpdate Kind = "update"
	// KindNotify delivers a push notification; opaque to the engine.
	KindNotify Kind = "notify"
)

// Payload maps tracked field names to their new values. Keys are validated
// against the CrimeRecord schema at descriptor construction.
type Payload map[records.Field]any

// Descriptor is a single pending write. TargetID is present only for
// updates; Alert only for notifications.
type Descriptor struct {
	Kind     Kind
	TargetID string
	Payload  Payload
	Alert    string
}

// NewCreate builds a create descriptor. The payload must be non-empty and
// must not carry the store-assigned ExternalID.
func NewCreate(p Payload) (Descriptor, error) {
	if err := validatePayload(p); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: KindCreate, Payload: p}, nil
}

// NewUpdate builds an update descriptor targeting an existing store record.
func NewUpdate(targetID string, p Payload) (Descriptor, error) {
	if targetID == "" {
		return Descriptor{}, errors.NewValidationError("targetId", targetID, "update requires a target external id")
	}
	if err := validatePayload(p); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: KindUpdate, TargetID: targetID, Payload: p}, nil
}

// NewNotification builds a push-notification descriptor. The engine hands it
// to the notification transport unchanged.
func NewNotification(alert string) Descriptor {
	return Descriptor{Kind: KindNotify, Alert: alert}
}

func validatePayload(p Payload) error {
	if len(p) == 0 {
		return errors.NewValidationError("payload", p, "payload must not be empty")
	}
	for f := range p {
		if !f.IsValid() {
			return errors.NewValidationError("payload", f.String(), "unknown record field")
		}
		if f == records.FieldExternalID {
			return errors.NewValidationError("payload", f.String(), "externalId is assigned by the store and cannot be written")
		}
	}
	return nil
}

// AlertText renders the push notification body for a number of newly
// recorded casualties.
func AlertText(count int) string {
	if count == 1 {
		return "1 person in Chicago just died due to gun violence."
	}
	return fmt.Sprintf("%d people in Chicago just died due to gun violence.", count)
}

// BatchResult is the raw result the transport returns for one physical
// request chunk. The engine does not inspect it beyond logging.
type BatchResult struct {
	StatusCode int
	Body       json.RawMessage
}

// CreatePayload extracts the full create payload from a record: every tracked
// field except the store-assigned ExternalID, coordinates only when the pair
// is complete, and the feed ordinal only when assigned.
func CreatePayload(r *records.CrimeRecord) Payload {
	p := make(Payload)
	for _, f := range records.Fields() {
		switch f {
		case records.FieldExternalID:
			continue
		case records.FieldLatitude, records.FieldLongitude:
			continue
		}
		p[f] = r.Value(f)
	}
	if r.HasCoordinates() {
		p[records.FieldLatitude] = r.Latitude
		p[records.FieldLongitude] = r.Longitude
	}
	if r.SourceRowNumber > 0 {
		p[records.FieldSourceRowNumber] = r.SourceRowNumber
	}
	return p
}

// UpdatePayload extracts the values of the changed fields from a merged
// record. ExternalID never appears in a payload; the descriptor carries the
// target identity separately.
func UpdatePayload(r *records.CrimeRecord, changed []records.Field) Payload {
	p := make(Payload)
	for _, f := range changed {
		if f == records.FieldExternalID {
			continue
		}
		p[f] = r.Value(f)
	}
	return p
}
