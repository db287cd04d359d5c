// Package pereval holds the rules that decide whether a stored pass record may
// be changed. Both the SQL store and the in-memory mock apply them inside their
// update so a rejected patch never writes anything.
package pereval

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/pereval/pkg/models"
	"github.com/garnizeh/pereval/pkg/repository"
)

// CheckEditable rejects records that have left moderation status new.
func CheckEditable(rec *models.PassRecord) error {
	if rec.Status != models.StatusNew {
		return &repository.RuleViolation{
			Field:  "status",
			Reason: fmt.Sprintf("editing is forbidden: record status is %q, only %q records can be changed", rec.Status, models.StatusNew),
		}
	}
	return nil
}

// CheckIdentity compares every identity field present in next with the value
// stored in current. raw_data is replaced wholesale, so this is a whole-document
// comparison rather than a diff of the patch.
func CheckIdentity(current, next models.RawData) error {
	for _, field := range models.IdentityFields {
		nv, ok := next.Identity(field)
		if !ok {
			continue
		}
		cv, _ := current.Identity(field)
		if !sameValue(cv, nv) {
			return &repository.RuleViolation{
				Field:  field,
				Reason: fmt.Sprintf("field %q cannot be changed", field),
			}
		}
	}
	return nil
}

// Apply runs the update rules for patch against rec and returns the raw_data
// and images that should be persisted.
func Apply(rec *models.PassRecord, patch models.PerevalPatch) (models.RawData, models.Images, error) {
	if err := CheckEditable(rec); err != nil {
		return nil, nil, err
	}

	raw := rec.RawData
	if patch.RawData != nil {
		raw = patch.RawData
	}
	if err := CheckIdentity(rec.RawData, raw); err != nil {
		return nil, nil, err
	}

	images := rec.Images
	if patch.Images != nil {
		images = patch.Images
	}
	if images == nil {
		images = models.Images{}
	}

	return raw, images, nil
}

// sameValue reports whether a and b have byte-identical JSON encodings. A
// missing stored value never equals a supplied one.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
