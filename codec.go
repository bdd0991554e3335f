package firewire

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	latLngType = reflect.TypeOf(LatLng{})
)

// encodeValue converts a native value into its wire
// representation.
//
// Supported native types are nil, booleans, all
// integer and float kinds, strings, byte slices,
// time.Time, LatLng, *DocumentRef, json.Number,
// string-keyed maps, slices and arrays, and structs
// carrying "firewire" field tags. Integer kinds map
// to the integer wire kind (a uint64 above the signed
// 64-bit range falls back to a double); float kinds
// always map to the double wire kind.
//
// Sentinels are consumed by the write collector
// before generic encoding; a sentinel reaching
// encodeValue (e.g. inside an array) is an error.
// Any other unsupported type fails with an
// UnsupportedTypeError.
func encodeValue(v interface{}) (*Value, error) {
	switch x := v.(type) {
	case nil:
		return nullValue(), nil
	case *sentinel:
		return nil, errors.New("firewire: sentinel value must be the direct value of a document field")
	case bool:
		return booleanValue(x), nil
	case int:
		return integerValue(strconv.FormatInt(int64(x), 10)), nil
	case int8:
		return integerValue(strconv.FormatInt(int64(x), 10)), nil
	case int16:
		return integerValue(strconv.FormatInt(int64(x), 10)), nil
	case int32:
		return integerValue(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return integerValue(strconv.FormatInt(x, 10)), nil
	case uint:
		return encodeUint(uint64(x)), nil
	case uint8:
		return integerValue(strconv.FormatUint(uint64(x), 10)), nil
	case uint16:
		return integerValue(strconv.FormatUint(uint64(x), 10)), nil
	case uint32:
		return integerValue(strconv.FormatUint(uint64(x), 10)), nil
	case uint64:
		return encodeUint(x), nil
	case float32:
		return doubleValue(float64(x)), nil
	case float64:
		return doubleValue(x), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return integerValue(strconv.FormatInt(i, 10)), nil
		}

		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("firewire: cannot encode malformed number %q", string(x))
		}

		return doubleValue(f), nil
	case string:
		return stringValue(x), nil
	case []byte:
		return bytesValue(base64.StdEncoding.EncodeToString(x)), nil
	case time.Time:
		return timestampValue(x.UTC().Format(time.RFC3339Nano)), nil
	case LatLng:
		return &Value{GeoPointValue: &x}, nil
	case *LatLng:
		if x == nil {
			return nullValue(), nil
		}

		return &Value{GeoPointValue: x}, nil
	case *DocumentRef:
		if x == nil {
			return nullValue(), nil
		}

		return referenceValue(x.name), nil
	case map[string]interface{}:
		fields, err := encodeFieldsPlain(x)
		if err != nil {
			return nil, err
		}

		return &Value{MapValue: &MapValue{Fields: fields}}, nil
	case []interface{}:
		return encodeSlice(x)
	}

	return encodeReflect(reflect.ValueOf(v))
}

// unsigned values above the signed 64-bit range have
// no integer wire representation and degrade to a
// double
func encodeUint(x uint64) *Value {
	if x > math.MaxInt64 {
		return doubleValue(float64(x))
	}

	return integerValue(strconv.FormatUint(x, 10))
}

func encodeSlice(s []interface{}) (*Value, error) {
	values := make([]*Value, 0, len(s))

	for _, e := range s {
		v, err := encodeValue(e)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return &Value{ArrayValue: &ArrayValue{Values: values}}, nil
}

// encodeFieldsPlain encodes a native map without a
// collector, for map values nested inside arrays or
// other non-write contexts. Keys are visited in
// sorted order so output is deterministic.
func encodeFieldsPlain(data map[string]interface{}) (map[string]*Value, error) {
	fields := make(map[string]*Value, len(data))

	for _, k := range sortedDataKeys(data) {
		v, err := encodeValue(data[k])
		if err != nil {
			return nil, err
		}

		fields[k] = v
	}

	return fields, nil
}

// encodeReflect covers named and composite types that
// the concrete type switch misses.
func encodeReflect(rv reflect.Value) (*Value, error) {
	if !rv.IsValid() {
		return nullValue(), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return booleanValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return integerValue(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return doubleValue(rv.Float()), nil
	case reflect.String:
		return stringValue(rv.String()), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nullValue(), nil
		}

		return encodeValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return nullValue(), nil
		}

		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return bytesValue(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}

		return encodeReflectSequence(rv)
	case reflect.Array:
		return encodeReflectSequence(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &UnsupportedTypeError{Type: rv.Type()}
		}

		if rv.IsNil() {
			return nullValue(), nil
		}

		fields, err := encodeFieldsPlain(mapToTree(rv))
		if err != nil {
			return nil, err
		}

		return &Value{MapValue: &MapValue{Fields: fields}}, nil
	case reflect.Struct:
		if rv.Type() == timeType {
			return encodeValue(rv.Interface().(time.Time))
		}

		if rv.Type() == latLngType {
			return encodeValue(rv.Interface().(LatLng))
		}

		fields, err := encodeFieldsPlain(structToTree(rv))
		if err != nil {
			return nil, err
		}

		return &Value{MapValue: &MapValue{Fields: fields}}, nil
	}

	return nil, &UnsupportedTypeError{Type: rv.Type()}
}

func encodeReflectSequence(rv reflect.Value) (*Value, error) {
	values := make([]*Value, 0, rv.Len())

	for i := 0; i < rv.Len(); i++ {
		v, err := encodeValue(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return &Value{ArrayValue: &ArrayValue{Values: values}}, nil
}

// treeFields reports whether a native value encodes as
// a wire map whose children contribute their own mask
// paths, and returns its entries if so. Leaf struct
// types (time.Time, LatLng) are excluded.
func treeFields(v interface{}) (map[string]interface{}, bool) {
	switch x := v.(type) {
	case map[string]interface{}:
		return x, true
	case time.Time, LatLng, *LatLng, *DocumentRef, []byte, *sentinel, nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return nil, false
		}

		return mapToTree(rv), true
	case reflect.Struct:
		if rv.Type() == timeType || rv.Type() == latLngType {
			return nil, false
		}

		return structToTree(rv), true
	}

	return nil, false
}

func mapToTree(rv reflect.Value) map[string]interface{} {
	tree := make(map[string]interface{}, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		tree[iter.Key().String()] = iter.Value().Interface()
	}

	return tree
}

func structToTree(rv reflect.Value) map[string]interface{} {
	fields := fieldCache.fields(rv.Type())
	tree := make(map[string]interface{}, len(fields))

	for _, f := range fields {
		fv := rv.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}

		tree[f.name] = fv.Interface()
	}

	return tree
}

// decodeValue converts a wire Value back into its
// native form. Reference kinds are materialised as
// DocumentRefs bound to the given client. Malformed
// Values (zero or multiple populated kinds) fail with
// a MalformedValueError.
func decodeValue(c *Client, v *Value) (interface{}, error) {
	if v == nil {
		return nil, &MalformedValueError{}
	}

	if kinds := v.populatedKinds(); len(kinds) != 1 {
		return nil, &MalformedValueError{Kinds: kinds}
	}

	switch {
	case v.NullValue != nil:
		return nil, nil
	case v.BooleanValue != nil:
		return *v.BooleanValue, nil
	case v.IntegerValue != nil:
		i, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("firewire: malformed integer value %q", *v.IntegerValue)
		}

		return i, nil
	case v.DoubleValue != nil:
		return *v.DoubleValue, nil
	case v.TimestampValue != nil:
		t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue)
		if err != nil {
			return nil, fmt.Errorf("firewire: malformed timestamp value %q", *v.TimestampValue)
		}

		return t, nil
	case v.StringValue != nil:
		return *v.StringValue, nil
	case v.BytesValue != nil:
		b, err := base64.StdEncoding.DecodeString(*v.BytesValue)
		if err != nil {
			return nil, fmt.Errorf("firewire: malformed bytes value: %v", err)
		}

		return b, nil
	case v.ReferenceValue != nil:
		return decodeReference(c, *v.ReferenceValue)
	case v.GeoPointValue != nil:
		return *v.GeoPointValue, nil
	case v.ArrayValue != nil:
		out := make([]interface{}, 0, len(v.ArrayValue.Values))
		for _, e := range v.ArrayValue.Values {
			dv, err := decodeValue(c, e)
			if err != nil {
				return nil, err
			}

			out = append(out, dv)
		}

		return out, nil
	default:
		return decodeFields(c, v.MapValue.Fields)
	}
}

// decodeFields decodes every entry of a wire fields
// map, visiting keys in sorted order so decode errors
// and reference construction are deterministic.
func decodeFields(c *Client, fields map[string]*Value) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))

	for _, k := range sortedFieldKeys(fields) {
		dv, err := decodeValue(c, fields[k])
		if err != nil {
			return nil, err
		}

		out[k] = dv
	}

	return out, nil
}

func sortedDataKeys(data map[string]interface{}) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}
