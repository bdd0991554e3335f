package firewire

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// A Firewire DocumentSnapshot wraps a fetched wire
// document. Field values stay in wire form until
// decoded through Data or DataAt.
type DocumentSnapshot struct {
	// Ref is the reference the snapshot was fetched
	// through.
	Ref *DocumentRef

	// CreateTime is the time the document was created.
	// Zero for non-existent documents.
	CreateTime time.Time

	// UpdateTime is the time the document was last
	// changed. Zero for non-existent documents.
	UpdateTime time.Time

	fields map[string]*Value
	exists bool
}

// newDocumentSnapshot wraps a wire document fetched
// through ref. A nil document yields a non-existent
// snapshot.
func newDocumentSnapshot(ref *DocumentRef, doc *Document) (*DocumentSnapshot, error) {
	ds := &DocumentSnapshot{Ref: ref}

	if doc == nil {
		return ds, nil
	}

	ds.exists = true
	ds.fields = doc.Fields

	if doc.CreateTime != "" {
		t, err := time.Parse(time.RFC3339Nano, doc.CreateTime)
		if err != nil {
			return nil, fmt.Errorf("firewire: malformed create time %q", doc.CreateTime)
		}

		ds.CreateTime = t
	}

	if doc.UpdateTime != "" {
		t, err := time.Parse(time.RFC3339Nano, doc.UpdateTime)
		if err != nil {
			return nil, fmt.Errorf("firewire: malformed update time %q", doc.UpdateTime)
		}

		ds.UpdateTime = t
	}

	return ds, nil
}

// Exists reports whether the document existed at the
// time the snapshot was taken.
func (ds *DocumentSnapshot) Exists() bool {
	return ds != nil && ds.exists
}

// Data decodes every field of the snapshot into its
// native form. Returns nil for a non-existent
// document.
//
// Keys are decoded in sorted order, so repeated
// decodes of the same snapshot behave identically.
func (ds *DocumentSnapshot) Data() (map[string]interface{}, error) {
	if ds == nil {
		return nil, errors.New("firewire: nil DocumentSnapshot")
	}

	if !ds.exists {
		return nil, nil
	}

	return decodeFields(ds.client(), ds.fields)
}

// DataAt decodes the field at a dotted path (e.g.
// "address.city"), navigating nested map values
// without decoding the rest of the document.
//
// Returns nil, and no error, if any path segment is
// absent. Note that an absent field and a field
// holding a wire null both decode to nil.
func (ds *DocumentSnapshot) DataAt(path string) (interface{}, error) {
	if ds == nil {
		return nil, errors.New("firewire: nil DocumentSnapshot")
	}

	if path == "" {
		return nil, errors.New("firewire: empty field path")
	}

	segments := strings.Split(path, ".")
	fields := ds.fields

	for _, segment := range segments[:len(segments)-1] {
		v, ok := fields[segment]
		if !ok || v.MapValue == nil {
			return nil, nil
		}

		fields = v.MapValue.Fields
	}

	v, ok := fields[segments[len(segments)-1]]
	if !ok {
		return nil, nil
	}

	return decodeValue(ds.client(), v)
}

func (ds *DocumentSnapshot) client() *Client {
	if ds.Ref == nil {
		return nil
	}

	return ds.Ref.c
}
