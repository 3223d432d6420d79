// Package flatten converts heterogeneous per-game score payloads into a
// single rectangular table with a dynamically discovered column set.
package flatten

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/tally/internal/domain/model"
)

// dynamicPrefix keeps payload-derived columns from colliding with the
// fixed ones.
const dynamicPrefix = "data_"

// fixedHeader is the invariant leading part of every export.
var fixedHeader = []string{
	"submission_id",
	"game_id",
	"recorded_at",
	"entity_name",
	"entity_group",
	"entity_kind",
}

// Table is the flattened export: one header, one row per input record,
// every row exactly len(Header) cells. Row cells are already CSV-quoted;
// header names are raw and quoted by the writer.
type Table struct {
	Header []string
	Rows   [][]string
}

// Flatten derives the union of payload keys across records, sorts them
// lexicographically for determinism and renders every record against that
// uniform schema. Records lacking a key get an empty cell; no row is ever
// dropped because of payload shape.
func Flatten(records []model.ScoreRow) Table {
	payloads := make([]map[string]any, len(records))
	keySet := make(map[string]struct{})
	for i, r := range records {
		m := decodePayload(r.Payload)
		payloads[i] = m
		for k := range m {
			keySet[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := make([]string, 0, len(fixedHeader)+len(keys))
	header = append(header, fixedHeader...)
	for _, k := range keys {
		header = append(header, dynamicPrefix+k)
	}

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			Quote(r.SubmissionID),
			Quote(r.GameID),
			Quote(time.UnixMilli(r.RecordedAt).UTC().Format(time.RFC3339)),
			Quote(r.EntityName),
			Quote(r.EntityGroup),
			Quote(string(r.EntityKind)),
		)
		for _, k := range keys {
			v, ok := payloads[i][k]
			if !ok {
				row = append(row, Quote(""))
				continue
			}
			row = append(row, Quote(renderValue(v)))
		}
		rows = append(rows, row)
	}

	return Table{Header: header, Rows: rows}
}

// WriteCSV renders the table as CSV text, quoting header names the same
// way row cells already are.
func (t Table) WriteCSV(sb *strings.Builder) {
	for i, name := range t.Header {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(Quote(name))
	}
	sb.WriteByte('\n')
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, ","))
		sb.WriteByte('\n')
	}
}

// Quote wraps s in double quotes with embedded quote characters doubled.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// decodePayload parses an opaque payload into a key/value map. UseNumber
// keeps numeric fields exactly as submitted instead of going through
// float64. Payloads that are not JSON objects contribute no columns.
func decodePayload(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil
	}
	return m
}

// renderValue converts a decoded payload value to its cell text.
func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		// Nested objects and arrays keep their compact JSON form.
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
