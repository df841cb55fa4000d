package replicator

import (
	"fmt"

	"time"

	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/store/model"
)

// MappingError marks a document that cannot be materialized because a
// required identity field is missing. The batch continues past it.
type MappingError struct {
	DocumentID string
	Field      string
}

func (e *MappingError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("document has no %q field", e.Field)
	}
	return fmt.Sprintf("document %s has no %q field", e.DocumentID, e.Field)
}

func NewMappingError(docID, field string) *MappingError {
	return &MappingError{DocumentID: docID, Field: field}
}

// MapTask maps a raw task document onto its relational row. Pure: no I/O.
// Optional fields default; the duration may appear under the legacy
// "durationMinutes" key on older documents.
func MapTask(doc docstore.Document) (model.Task, error) {
	r := reader{doc}

	id := r.str("id")
	if id == "" {
		return model.Task{}, NewMappingError("", "id")
	}
	locationID := r.str("locationId")
	if locationID == "" {
		return model.Task{}, NewMappingError(id, "locationId")
	}

	status := r.str("status")
	if status == "" {
		status = model.TaskStatusAvailable
	}

	return model.Task{
		ID:                       id,
		Title:                    r.str("title"),
		Description:              r.str("description"),
		Category:                 r.str("category"),
		Priority:                 r.str("priority"),
		Status:                   status,
		LocationID:               locationID,
		EstimatedDurationMinutes: r.intval("estimatedDurationMinutes", "durationMinutes"),
		RoomID:                   r.strPtr("roomId"),
		TargetID:                 r.strPtr("targetId"),
		ActionID:                 r.strPtr("actionId"),
		CreatedAt:                r.ts("createdAt"),
		UpdatedAt:                r.ts("updatedAt", "changedAt"),
	}, nil
}

// MapMedia maps a raw media document onto its relational row. Older
// documents carry the blob location under "url" instead of "storageUrl".
func MapMedia(doc docstore.Document) (model.Media, error) {
	r := reader{doc}

	id := r.str("id")
	if id == "" {
		return model.Media{}, NewMappingError("", "id")
	}
	locationID := r.str("locationId")
	if locationID == "" {
		return model.Media{}, NewMappingError(id, "locationId")
	}

	return model.Media{
		ID:          id,
		TaskID:      r.str("taskId"),
		LocationID:  locationID,
		URL:         r.str("storageUrl", "url"),
		ContentType: r.str("contentType"),
		UploadedBy:  r.str("uploadedBy"),
		CapturedAt:  r.ts("capturedAt"),
		CreatedAt:   r.ts("createdAt"),
		UpdatedAt:   r.ts("updatedAt", "changedAt"),
	}, nil
}

// MapLocation maps a raw location document onto its relational row.
func MapLocation(doc docstore.Document) (model.Location, error) {
	r := reader{doc}

	id := r.str("id")
	if id == "" {
		return model.Location{}, NewMappingError("", "id")
	}

	return model.Location{
		ID:        id,
		Name:      r.str("name"),
		Address:   r.str("address"),
		Timezone:  r.str("timezone"),
		CreatedAt: r.ts("createdAt"),
		UpdatedAt: r.ts("updatedAt", "changedAt"),
	}, nil
}

// reader probes a raw document, trying keys in order so legacy field names
// stay handled in one place.
type reader struct {
	doc docstore.Document
}

func (r reader) str(keys ...string) string {
	for _, key := range keys {
		if v, ok := r.doc[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (r reader) strPtr(keys ...string) *string {
	if v := r.str(keys...); v != "" {
		return &v
	}
	return nil
}

func (r reader) intval(keys ...string) int {
	for _, key := range keys {
		switch v := r.doc[key].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func (r reader) ts(keys ...string) time.Time {
	for _, key := range keys {
		if t, ok := docstore.NormalizeTime(r.doc[key]); ok {
			return t
		}
	}
	return time.Time{}
}
