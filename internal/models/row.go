package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// emptyObject is written in place of a map that could not be serialized.
const emptyObject = "{}"

// Row is the fixed column layout of the destination table.
// Field order and names must match the table schema.
type Row struct {
	EventID    string `json:"event_id"`
	TargetName string `json:"target_name"`
	EventType  string `json:"event_type"`
	Timestamp  string `json:"timestamp"`
	Data       string `json:"data"`
	Labels     string `json:"labels"`
}

// InsertID is the deduplication key the warehouse uses for this row.
func (r Row) InsertID() string {
	return r.EventID
}

// Columns returns the column names in table order.
func Columns() []string {
	return []string{"event_id", "target_name", "event_type", "timestamp", "data", "labels"}
}

// Values returns the row values in the same order as Columns.
func (r Row) Values() []any {
	return []any{r.EventID, r.TargetName, r.EventType, r.Timestamp, r.Data, r.Labels}
}

// ProjectRow maps a decoded request onto the table layout. It never fails:
// data and labels are serialized independently and fall back to "{}".
func ProjectRow(req IngestRequest) Row {
	var ev Event
	if req.Event != nil {
		ev = *req.Event
	}

	return Row{
		EventID:    deref(ev.EventID),
		TargetName: deref(ev.TargetName),
		EventType:  deref(ev.EventType),
		Timestamp:  deref(ev.Timestamp),
		Data:       compactJSON(ev.Data),
		Labels:     compactJSON(req.Labels),
	}
}

// compactJSON writes v without HTML escaping, so "<" and "&" are stored as sent.
func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return emptyObject
	}

	out := strings.TrimSuffix(buf.String(), "\n")
	if out == "null" {
		return emptyObject
	}
	return out
}
