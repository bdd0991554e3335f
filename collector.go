package firewire

import "strings"

// A writeCollector walks one write's data while the
// codec encodes it, tracking the dotted field path,
// accumulating the update mask and the transform
// list, and keeping the two path sets disjoint.
//
// A collector is created fresh per planned write,
// drives exactly one top-level encodeFields call, and
// is then discarded. It must not be shared across
// concurrent planning calls.
type writeCollector struct {
	path       []string
	maskPaths  []string
	transforms []FieldTransform
}

// enterField pushes a segment onto the path stack.
func (wc *writeCollector) enterField(name string) {
	wc.path = append(wc.path, name)
}

// currentPath returns the dot-joined path stack.
// Segments are opaque - embedded dots are not escaped.
func (wc *writeCollector) currentPath() string {
	return strings.Join(wc.path, ".")
}

// leaveField pops the top of the path stack. A leaf
// path (scalar, array or cleared field) is appended
// to the mask, unless the most recently appended
// transform already claimed that exact path. Map
// fields are never appended at their own path - only
// their descendant leaves are.
func (wc *writeCollector) leaveField(leaf bool) {
	if leaf {
		p := wc.currentPath()

		if n := len(wc.transforms); n == 0 || wc.transforms[n-1].FieldPath != p {
			wc.maskPaths = append(wc.maskPaths, p)
		}
	}

	wc.path = wc.path[:len(wc.path)-1]
}

// encodeFields encodes one level of write data,
// visiting keys in sorted order. Sentinels are
// intercepted here: a Delete yields a bare mask entry
// and no field, any other sentinel yields a transform
// and no field. Nested maps and structs recurse with
// the same collector; everything else encodes as a
// leaf.
func (wc *writeCollector) encodeFields(data map[string]interface{}) (map[string]*Value, error) {
	fields := make(map[string]*Value, len(data))

	for _, k := range sortedDataKeys(data) {
		v := data[k]
		wc.enterField(k)

		if s, ok := v.(*sentinel); ok {
			if s.kind == sentinelDelete {
				// the field is cleared: mask entry only,
				// nothing is emitted
				wc.leaveField(true)
				continue
			}

			ft, err := s.transform(wc.currentPath())
			if err != nil {
				return nil, err
			}

			wc.transforms = append(wc.transforms, ft)

			// the path matches the transform just
			// appended, so no mask entry results
			wc.leaveField(true)
			continue
		}

		if tree, ok := treeFields(v); ok {
			sub, err := wc.encodeFields(tree)
			if err != nil {
				return nil, err
			}

			fields[k] = &Value{MapValue: &MapValue{Fields: sub}}
			wc.leaveField(false)
			continue
		}

		ev, err := encodeValue(v)
		if err != nil {
			return nil, err
		}

		fields[k] = ev
		wc.leaveField(true)
	}

	return fields, nil
}
