package surreal

import (
	"encoding/json"
	"fmt"
	"time"

	"campaignhub/internal/domain"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// entity is any domain type that embeds domain.Meta
type entity[T any] interface {
	*T
	Base() *domain.Meta
}

// toDocument flattens an entity into the map written to SurrealDB. The
// identifier lives in the record ID, so it is dropped from the body, and
// timestamps become native datetimes.
func toDocument[T any, P entity[T]](v P) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	meta := v.Base()
	delete(doc, "id")
	doc["createdAt"] = models.CustomDateTime{Time: meta.CreatedAt}
	doc["updatedAt"] = models.CustomDateTime{Time: meta.UpdatedAt}
	return doc, nil
}

// fromDocument converts a document read from SurrealDB back into an entity,
// normalizing record IDs to plain strings and datetimes to time.Time.
func fromDocument[T any, P entity[T]](doc map[string]any) (P, error) {
	normalized, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected document shape %T", doc)
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// normalize walks a decoded value and replaces driver types with values
// encoding/json understands
func normalize(v any) any {
	switch val := v.(type) {
	case models.RecordID:
		return recordKey(val)
	case *models.RecordID:
		if val == nil {
			return nil
		}
		return recordKey(*val)
	case models.CustomDateTime:
		return val.Time.UTC().Format(time.RFC3339Nano)
	case *models.CustomDateTime:
		if val == nil {
			return nil
		}
		return val.Time.UTC().Format(time.RFC3339Nano)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

// recordKey returns the record part of a table:key identifier
func recordKey(id models.RecordID) string {
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprint(id.ID)
}
