package firewire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func testClient(t *testing.T) *Client {
	t.Helper()

	c, err := Connect(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	return c
}

func TestEncodeValue(t *testing.T) {
	c := testClient(t)

	tests := []struct {
		name  string
		input interface{}
		want  *Value
	}{
		{"Nil", nil, nullValue()},
		{"Bool", true, booleanValue(true)},
		{"Int", 42, integerValue("42")},
		{"Int64 min", int64(math.MinInt64), integerValue("-9223372036854775808")},
		{"Int64 max", int64(math.MaxInt64), integerValue("9223372036854775807")},
		{"Uint8", uint8(255), integerValue("255")},
		{"Uint64 in range", uint64(7), integerValue("7")},
		{"Float", 1.5, doubleValue(1.5)},
		{"Float32", float32(0.5), doubleValue(0.5)},
		{"Whole float stays double", 5.0, doubleValue(5)},
		{"JSON number integer", json.Number("12"), integerValue("12")},
		{"JSON number fraction", json.Number("1.25"), doubleValue(1.25)},
		{"String", "hi", stringValue("hi")},
		{"Bytes", []byte{0xff, 0x00, 0x01}, bytesValue("/wAB")},
		{
			"Time",
			time.Date(2024, 6, 1, 12, 0, 0, 500, time.UTC),
			timestampValue("2024-06-01T12:00:00.0000005Z"),
		},
		{
			"GeoPoint",
			LatLng{Latitude: 1.5, Longitude: -2.5},
			&Value{GeoPointValue: &LatLng{Latitude: 1.5, Longitude: -2.5}},
		},
		{
			"Reference",
			c.Doc("users/alice"),
			referenceValue("projects/test-project/databases/(default)/documents/users/alice"),
		},
		{
			"Slice",
			[]interface{}{int64(1), "a"},
			&Value{ArrayValue: &ArrayValue{Values: []*Value{integerValue("1"), stringValue("a")}}},
		},
		{
			"Map",
			map[string]interface{}{"a": true},
			&Value{MapValue: &MapValue{Fields: map[string]*Value{"a": booleanValue(true)}}},
		},
		{"Named string type", namedString("x"), stringValue("x")},
		{"Typed slice", []int{1, 2}, &Value{ArrayValue: &ArrayValue{
			Values: []*Value{integerValue("1"), integerValue("2")},
		}}},
		{"Typed map", map[string]int{"n": 3}, &Value{MapValue: &MapValue{
			Fields: map[string]*Value{"n": integerValue("3")},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValue(tt.input)
			if err != nil {
				t.Fatalf("encodeValue() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("encodeValue() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

type namedString string

func TestEncodeValueUint64Overflow(t *testing.T) {
	// above the signed 64-bit range there is no
	// integer wire representation
	got, err := encodeValue(uint64(math.MaxUint64))
	if err != nil {
		t.Fatalf("encodeValue() error = %v", err)
	}
	if got.DoubleValue == nil {
		t.Fatalf("encodeValue() = %+v, want a double", got)
	}
}

func TestEncodeValueNegativeZero(t *testing.T) {
	got, err := encodeValue(math.Copysign(0, -1))
	if err != nil {
		t.Fatalf("encodeValue() error = %v", err)
	}
	if got.DoubleValue == nil {
		t.Fatalf("encodeValue() = %+v, want a double", got)
	}
	if !math.Signbit(*got.DoubleValue) {
		t.Error("encodeValue() lost the sign of negative zero")
	}
}

func TestEncodeValueUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"Func", func() {}},
		{"Chan", make(chan int)},
		{"Complex", complex(1, 2)},
		{"Uintptr", uintptr(1)},
		{"Int-keyed map", map[int]string{1: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encodeValue(tt.input)

			var unsupported *UnsupportedTypeError
			if !errors.As(err, &unsupported) {
				t.Fatalf("encodeValue() error = %v, want UnsupportedTypeError", err)
			}
			if unsupported.Type != reflect.TypeOf(tt.input) {
				t.Errorf("UnsupportedTypeError.Type = %v, want %v", unsupported.Type, reflect.TypeOf(tt.input))
			}
		})
	}
}

func TestEncodeValueBareSentinel(t *testing.T) {
	// a sentinel outside a write collector context
	// must fail loudly
	if _, err := encodeValue(Increment(1)); err == nil {
		t.Fatal("encodeValue(Increment(1)) returned nil error")
	}

	// sentinels cannot hide inside arrays either
	if _, err := encodeValue([]interface{}{ServerTimestamp}); err == nil {
		t.Fatal("encodeValue([ServerTimestamp]) returned nil error")
	}
}

func TestEncodeValueStruct(t *testing.T) {
	type address struct {
		Street string `firewire:"street"`
		City   string `firewire:"city,omitempty"`
	}

	type user struct {
		Name    string  `firewire:"name"`
		Age     int     `firewire:"age"`
		Ignored string  `firewire:"-"`
		Addr    address `firewire:"addr"`
		secret  string
	}

	got, err := encodeValue(user{Name: "Alice", Age: 30, Ignored: "x", Addr: address{Street: "Main St"}, secret: "s"})
	if err != nil {
		t.Fatalf("encodeValue() error = %v", err)
	}

	want := &Value{MapValue: &MapValue{Fields: map[string]*Value{
		"name": stringValue("Alice"),
		"age":  integerValue("30"),
		"addr": {MapValue: &MapValue{Fields: map[string]*Value{
			// City carries omitempty and is zero
			"street": stringValue("Main St"),
		}}},
	}}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("encodeValue() = %+v, want %+v", got, want)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	c := testClient(t)

	// native values drawn from the supported set must
	// survive encode/decode unchanged
	inputs := []interface{}{
		nil,
		true,
		int64(0),
		int64(math.MaxInt64),
		int64(math.MinInt64),
		1.5,
		math.MaxFloat64,
		"hello",
		"",
		[]byte{0xde, 0xad, 0xbe, 0xef},
		time.Date(2024, 6, 1, 12, 30, 15, 123456789, time.UTC),
		LatLng{Latitude: 1.5, Longitude: -2.5},
		[]interface{}{int64(1), "a", false},
		map[string]interface{}{"a": int64(1), "b": map[string]interface{}{"c": "x"}},
	}

	for _, input := range inputs {
		encoded, err := encodeValue(input)
		if err != nil {
			t.Fatalf("encodeValue(%v) error = %v", input, err)
		}

		decoded, err := decodeValue(c, encoded)
		if err != nil {
			t.Fatalf("decodeValue(%v) error = %v", input, err)
		}

		switch want := input.(type) {
		case time.Time:
			got, ok := decoded.(time.Time)
			if !ok || !got.Equal(want) {
				t.Errorf("round trip of %v = %v", input, decoded)
			}
		case []byte:
			got, ok := decoded.([]byte)
			if !ok || !bytes.Equal(got, want) {
				t.Errorf("round trip of %v = %v", input, decoded)
			}
		default:
			if !reflect.DeepEqual(decoded, input) {
				t.Errorf("round trip of %#v = %#v", input, decoded)
			}
		}
	}
}

func TestDecodeValueReference(t *testing.T) {
	c := testClient(t)

	decoded, err := decodeValue(c, referenceValue(
		"projects/test-project/databases/(default)/documents/users/alice",
	))
	if err != nil {
		t.Fatalf("decodeValue() error = %v", err)
	}

	ref, ok := decoded.(*DocumentRef)
	if !ok {
		t.Fatalf("decodeValue() = %T, want *DocumentRef", decoded)
	}
	if ref.Path != "users/alice" {
		t.Errorf("ref.Path = %q, want %q", ref.Path, "users/alice")
	}
	if ref.ID != "alice" {
		t.Errorf("ref.ID = %q, want %q", ref.ID, "alice")
	}
	if ref.c != c {
		t.Error("decoded reference is not bound to the client")
	}
}

func TestDecodeValueMalformed(t *testing.T) {
	c := testClient(t)

	tests := []struct {
		name  string
		value *Value
	}{
		{"Nil", nil},
		{"Empty", &Value{}},
		{"Two kinds", &Value{IntegerValue: strPtr("1"), StringValue: strPtr("1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeValue(c, tt.value)

			var malformed *MalformedValueError
			if !errors.As(err, &malformed) {
				t.Fatalf("decodeValue() error = %v, want MalformedValueError", err)
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}
