package firewire

import "errors"

// sentinelKind discriminates the directives a sentinel
// can stand for.
type sentinelKind int

const (
	sentinelDelete sentinelKind = iota + 1
	sentinelServerTimestamp
	sentinelIncrement
	sentinelMaximum
	sentinelMinimum
	sentinelArrayUnion
	sentinelArrayRemove
)

// A sentinel is a placeholder directive used in place
// of a literal value inside write data. It carries no
// literal value itself - the write collector consumes
// it and converts it into a field transform (or, for
// Delete, a bare mask entry), so it never appears in
// the encoded fields map.
type sentinel struct {
	kind     sentinelKind
	operand  interface{}
	elements []interface{}
}

// ServerTimestamp is used as a value in write data to
// indicate that the field should be set to the time
// at which the server processed the request.
//
// ServerTimestamp must be the value of a field
// directly; it cannot appear in array values, or in
// any value that is itself inside an array.
var ServerTimestamp interface{} = &sentinel{kind: sentinelServerTimestamp}

// Delete is used as a value in a call to Update or a
// merge Set to indicate that the corresponding field
// should be deleted from the document.
var Delete interface{} = &sentinel{kind: sentinelDelete}

// Increment returns a value that can be used in write
// data to increment a numeric field atomically.
//
// If the field does not yet exist, the transformation
// will set the field to the given value.
//
// The supported values are:
//
//	int, int8, int16, int32, int64
//	uint, uint8, uint16, uint32
//	float32, float64
func Increment(n interface{}) interface{} {
	return &sentinel{kind: sentinelIncrement, operand: n}
}

// Maximum returns a value that can be used in write
// data to set a field to the larger of its current
// value and the given value.
//
// If the field does not yet exist, the transformation
// will set the field to the given value.
func Maximum(n interface{}) interface{} {
	return &sentinel{kind: sentinelMaximum, operand: n}
}

// Minimum returns a value that can be used in write
// data to set a field to the smaller of its current
// value and the given value.
//
// If the field does not yet exist, the transformation
// will set the field to the given value.
func Minimum(n interface{}) interface{} {
	return &sentinel{kind: sentinelMinimum, operand: n}
}

// ArrayUnion specifies elements to be added to
// whatever array already exists, or to create an
// array if no value exists.
//
// If a value exists and it's an array, values are
// appended to it. Any duplicate value is ignored.
// If a value exists and it's not an array, the value
// is replaced by an array of the values in
// the ArrayUnion. If a value does not exist, an
// array of the values in the ArrayUnion is created.
//
// ArrayUnion must be the value of a field directly;
// it cannot appear in array values, or in any value
// that is itself inside an array.
func ArrayUnion(elements ...interface{}) interface{} {
	return &sentinel{kind: sentinelArrayUnion, elements: elements}
}

// ArrayRemove specifies elements to be removed from
// whatever array already exists.
//
// If a value exists and it's an array, values are
// removed from it. All duplicate values are removed.
// If a value exists and it's not an array, the value
// is replaced by an empty array. If a value does not
// exist, an empty array is created.
//
// ArrayRemove must be the value of a field directly;
// it cannot appear in array values, or in any value
// that is itself inside an array.
func ArrayRemove(elements ...interface{}) interface{} {
	return &sentinel{kind: sentinelArrayRemove, elements: elements}
}

// transform converts a consumed sentinel into the wire
// field transform applied at the given path. Delete
// sentinels have no transform and must be handled by
// the collector before reaching here.
func (s *sentinel) transform(path string) (FieldTransform, error) {
	switch s.kind {
	case sentinelServerTimestamp:
		return FieldTransform{FieldPath: path, SetToServerValue: serverValueRequestTime}, nil
	case sentinelIncrement, sentinelMaximum, sentinelMinimum:
		operand, err := encodeValue(s.operand)
		if err != nil {
			return FieldTransform{}, err
		}

		switch s.kind {
		case sentinelIncrement:
			return FieldTransform{FieldPath: path, Increment: operand}, nil
		case sentinelMaximum:
			return FieldTransform{FieldPath: path, Maximum: operand}, nil
		default:
			return FieldTransform{FieldPath: path, Minimum: operand}, nil
		}
	case sentinelArrayUnion, sentinelArrayRemove:
		elements := make([]*Value, 0, len(s.elements))
		for _, e := range s.elements {
			v, err := encodeValue(e)
			if err != nil {
				return FieldTransform{}, err
			}

			elements = append(elements, v)
		}

		if s.kind == sentinelArrayUnion {
			return FieldTransform{
				FieldPath:             path,
				AppendMissingElements: &ArrayValue{Values: elements},
			}, nil
		}

		return FieldTransform{
			FieldPath:          path,
			RemoveAllFromArray: &ArrayValue{Values: elements},
		}, nil
	default:
		return FieldTransform{}, errors.New("firewire: sentinel has no transform")
	}
}
