package firewire

import (
	"encoding/json"
	"sort"
)

// rawNull is the JSON literal stored in a Value's
// NullValue field when the null kind is populated.
var rawNull = json.RawMessage("null")

// A Firewire Value is the tagged union used by the
// Firestore REST protocol to represent any field value.
//
// Exactly one of the kind fields is populated per
// instance. Values received over the wire are checked
// during unmarshalling - a Value with zero or more
// than one populated kind fails with a
// MalformedValueError.
type Value struct {
	NullValue      json.RawMessage `json:"nullValue,omitempty"`
	BooleanValue   *bool           `json:"booleanValue,omitempty"`
	IntegerValue   *string         `json:"integerValue,omitempty"`
	DoubleValue    *float64        `json:"doubleValue,omitempty"`
	TimestampValue *string         `json:"timestampValue,omitempty"`
	StringValue    *string         `json:"stringValue,omitempty"`
	BytesValue     *string         `json:"bytesValue,omitempty"`
	ReferenceValue *string         `json:"referenceValue,omitempty"`
	GeoPointValue  *LatLng         `json:"geoPointValue,omitempty"`
	ArrayValue     *ArrayValue     `json:"arrayValue,omitempty"`
	MapValue       *MapValue       `json:"mapValue,omitempty"`
}

// An ArrayValue holds an ordered sequence of Values.
type ArrayValue struct {
	Values []*Value `json:"values,omitempty"`
}

// A MapValue holds named Values with unique keys.
type MapValue struct {
	Fields map[string]*Value `json:"fields,omitempty"`
}

// A LatLng is a geographical point, expressed as a
// latitude/longitude pair in degrees.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// populatedKinds returns the JSON keys of every kind
// field set on the Value.
func (v *Value) populatedKinds() []string {
	var kinds []string

	if v.NullValue != nil {
		kinds = append(kinds, "nullValue")
	}
	if v.BooleanValue != nil {
		kinds = append(kinds, "booleanValue")
	}
	if v.IntegerValue != nil {
		kinds = append(kinds, "integerValue")
	}
	if v.DoubleValue != nil {
		kinds = append(kinds, "doubleValue")
	}
	if v.TimestampValue != nil {
		kinds = append(kinds, "timestampValue")
	}
	if v.StringValue != nil {
		kinds = append(kinds, "stringValue")
	}
	if v.BytesValue != nil {
		kinds = append(kinds, "bytesValue")
	}
	if v.ReferenceValue != nil {
		kinds = append(kinds, "referenceValue")
	}
	if v.GeoPointValue != nil {
		kinds = append(kinds, "geoPointValue")
	}
	if v.ArrayValue != nil {
		kinds = append(kinds, "arrayValue")
	}
	if v.MapValue != nil {
		kinds = append(kinds, "mapValue")
	}

	return kinds
}

// UnmarshalJSON decodes a wire Value, rejecting
// objects with zero or multiple populated kinds
// (unrecognised kind keys are dropped by the JSON
// decoder and therefore count as zero).
func (v *Value) UnmarshalJSON(data []byte) error {
	type plain Value

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*v = Value(p)

	if kinds := v.populatedKinds(); len(kinds) != 1 {
		return &MalformedValueError{Kinds: kinds}
	}

	return nil
}

func nullValue() *Value {
	return &Value{NullValue: rawNull}
}

func booleanValue(b bool) *Value {
	return &Value{BooleanValue: &b}
}

func integerValue(s string) *Value {
	return &Value{IntegerValue: &s}
}

func doubleValue(f float64) *Value {
	return &Value{DoubleValue: &f}
}

func timestampValue(s string) *Value {
	return &Value{TimestampValue: &s}
}

func stringValue(s string) *Value {
	return &Value{StringValue: &s}
}

func bytesValue(s string) *Value {
	return &Value{BytesValue: &s}
}

func referenceValue(s string) *Value {
	return &Value{ReferenceValue: &s}
}

// sortedFieldKeys returns the keys of a wire fields
// map in sorted order, for deterministic decoding.
func sortedFieldKeys(fields map[string]*Value) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}
