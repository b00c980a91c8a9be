// Package rowtable defines the row contract shared by every row source: an
// ordered tuple of string fields of which only the device id and payload are
// meaningful downstream. Sources (UDP, serial bridge, fixtures) produce rows;
// the frame loop consumes them in arrival order.
package rowtable

import "strings"

// Field indices within a row. The first two fields are carried for debugging
// but never interpreted.
const (
	FieldMessage = 0
	FieldAddress = 1
	FieldDevice  = 2
	FieldPayload = 3

	// MinFields is the minimum number of fields for a row to be usable.
	MinFields = 4
)

// Row is one message row. Rows with fewer than MinFields fields are dropped
// by consumers rather than reported.
type Row []string

// Valid reports whether the row carries enough fields to be decoded.
func (r Row) Valid() bool {
	return len(r) >= MinFields
}

// Device returns the raw (unnormalized) device id field.
func (r Row) Device() string {
	if len(r) <= FieldDevice {
		return ""
	}
	return r[FieldDevice]
}

// Payload returns the raw payload field.
func (r Row) Payload() string {
	if len(r) <= FieldPayload {
		return ""
	}
	return r[FieldPayload]
}

// NormalizeDeviceID cleans a raw device id: double quotes are removed and
// spaces become underscores, so `"My Device"` and `My_Device` identify the
// same device. Normalization is idempotent.
func NormalizeDeviceID(raw string) string {
	id := strings.ReplaceAll(raw, `"`, "")
	return strings.ReplaceAll(id, " ", "_")
}

// ParseLine splits one tab-separated row line from a line-based source
// (serial bridge, fixtures file) into a Row. Empty lines and comment lines
// (leading '#' followed by a space) return nil.
func ParseLine(line string) Row {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, "# ") {
		return nil
	}
	return Row(strings.Split(line, "\t"))
}
