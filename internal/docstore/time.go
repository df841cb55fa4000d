package docstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeTime converts the timestamp shapes seen in documents into a
// single UTC time.Time: native times, the driver's timestamp wrappers,
// RFC3339 strings and epoch milliseconds. Legacy writers produced all of
// them at one point or another.
func NormalizeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case primitive.DateTime:
		return t.Time().UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC(), true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC(), true
		}
		return time.Time{}, false
	case int64:
		return time.UnixMilli(t).UTC(), true
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	default:
		return time.Time{}, false
	}
}
