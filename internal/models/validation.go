package models

import "sort"

// Field names a booking form field
type Field string

const (
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldTravelers Field = "travelers"
)

// ValidationResult maps a field to its error message. Empty means valid.
type ValidationResult map[Field]string

// Valid reports whether no field failed.
func (v ValidationResult) Valid() bool {
	return len(v) == 0
}

// Fields returns the failing fields in a stable order.
func (v ValidationResult) Fields() []Field {
	fields := make([]Field, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Clone returns an independent copy.
func (v ValidationResult) Clone() ValidationResult {
	out := make(ValidationResult, len(v))
	for f, msg := range v {
		out[f] = msg
	}
	return out
}
