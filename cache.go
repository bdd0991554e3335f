package firewire

import (
	"reflect"
	"strings"
	"sync"
)

// holds parsed struct encoding metadata
type structCache struct {
	sync.Map // map[reflect.Type][]*encodedField
}

// contains a single struct field's encoding data
type encodedField struct {
	name      string
	index     int
	omitEmpty bool
}

// package-wide cache, tags are parsed once per struct type
var fieldCache structCache

// get parsed fields for a struct type, parsing and
// caching them on first use
func (sc *structCache) fields(structType reflect.Type) []*encodedField {
	if cached, ok := sc.Load(structType); ok {
		return cached.([]*encodedField)
	}

	fields := parseFields(structType)
	sc.Store(structType, fields)

	return fields
}

// parse the "firewire" tag of every exported field
func parseFields(structType reflect.Type) []*encodedField {
	fields := make([]*encodedField, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		fieldType := structType.Field(i)

		// skip unexported fields
		if fieldType.PkgPath != "" {
			continue
		}

		tag := fieldType.Tag.Get("firewire")
		if tag == "-" {
			continue
		}

		field := &encodedField{name: fieldType.Name, index: i}

		// use first tag rule as new field name, if not empty
		name, opts, _ := strings.Cut(tag, ",")
		if name != "" {
			field.name = name
		}

		for _, opt := range strings.Split(opts, ",") {
			if opt == "omitempty" {
				field.omitEmpty = true
			}
		}

		fields = append(fields, field)
	}

	return fields
}
