package store

import "github.com/stemsi/lms-admin-mock/internal/model"

// The helpers below are pure: they never modify the slice or records they
// are given, so a MutateFunc can return their result as the next state.

// Find returns the record with the given id.
func Find(records []model.Record, id string) (model.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Record{}, false
}

// Prepend returns a new slice with r placed first (newest first).
func Prepend(records []model.Record, r model.Record) []model.Record {
	out := make([]model.Record, 0, len(records)+1)
	out = append(out, r)
	return append(out, records...)
}

// Append returns a new slice with r placed last.
func Append(records []model.Record, r model.Record) []model.Record {
	out := make([]model.Record, 0, len(records)+1)
	out = append(out, records...)
	return append(out, r)
}

// Merge shallow-merges patch over the record with the given id; patch keys
// win. "status" sets Status; "id" and "dateCreated" are ignored. Callers
// reject a non-string status with model.CheckStatus first.
// It returns the new slice, the merged record and whether the id was found.
func Merge(records []model.Record, id string, patch model.Payload) ([]model.Record, model.Record, bool) {
	idx := -1
	for i, r := range records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return records, model.Record{}, false
	}

	cur := records[idx]
	merged := model.Record{
		ID:          cur.ID,
		DateCreated: cur.DateCreated,
		Status:      cur.Status,
		Fields:      make(model.Payload, len(cur.Fields)+len(patch)),
	}
	for k, v := range cur.Fields {
		merged.Fields[k] = v
	}
	for k, v := range patch {
		switch k {
		case model.FieldStatus:
			if s, ok := v.(string); ok {
				merged.Status = model.Status(s)
			} else if s, ok := v.(model.Status); ok {
				merged.Status = s
			}
		case model.FieldID, model.FieldDateCreated:
		default:
			merged.Fields[k] = v
		}
	}

	out := make([]model.Record, len(records))
	copy(out, records)
	out[idx] = merged
	return out, merged, true
}

// Remove returns a new slice without the record with the given id, and
// whether anything was removed.
func Remove(records []model.Record, id string) ([]model.Record, bool) {
	out := make([]model.Record, 0, len(records))
	removed := false
	for _, r := range records {
		if r.ID == id {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if !removed {
		return records, false
	}
	return out, true
}
