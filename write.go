package firewire

import (
	"errors"
	"reflect"
)

// serverValueRequestTime requests the time at which
// the server processed the write.
const serverValueRequestTime = "REQUEST_TIME"

// A Document is the wire representation of a
// Firestore document.
type Document struct {
	Name       string            `json:"name,omitempty"`
	Fields     map[string]*Value `json:"fields,omitempty"`
	CreateTime string            `json:"createTime,omitempty"`
	UpdateTime string            `json:"updateTime,omitempty"`
}

// A DocumentMask is a set of dotted field paths whose
// wire fields are replaced or cleared by a write.
type DocumentMask struct {
	FieldPaths []string `json:"fieldPaths"`
}

// A Precondition guards a write on the current state
// of the target document.
type Precondition struct {
	Exists     *bool  `json:"exists,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// A FieldTransform is a server-executed mutation
// applied at a specific field path, independent of
// the literal fields map. Exactly one directive is
// populated.
type FieldTransform struct {
	FieldPath             string      `json:"fieldPath"`
	SetToServerValue      string      `json:"setToServerValue,omitempty"`
	Increment             *Value      `json:"increment,omitempty"`
	Maximum               *Value      `json:"maximum,omitempty"`
	Minimum               *Value      `json:"minimum,omitempty"`
	AppendMissingElements *ArrayValue `json:"appendMissingElements,omitempty"`
	RemoveAllFromArray    *ArrayValue `json:"removeAllFromArray,omitempty"`
}

// A DocumentTransform applies field transforms to a
// document without a literal-fields write. Used when
// a planned write consists of transforms only.
type DocumentTransform struct {
	Document        string           `json:"document"`
	FieldTransforms []FieldTransform `json:"fieldTransforms"`
}

// A Write is one entry of a commit request. Exactly
// one write maps to exactly one document.
type Write struct {
	Update           *Document          `json:"update,omitempty"`
	UpdateMask       *DocumentMask      `json:"updateMask,omitempty"`
	UpdateTransforms []FieldTransform   `json:"updateTransforms,omitempty"`
	CurrentDocument  *Precondition      `json:"currentDocument,omitempty"`
	Delete           string             `json:"delete,omitempty"`
	Transform        *DocumentTransform `json:"transform,omitempty"`
}

// writeTree normalises write data into its map form.
// Maps are used as-is, tagged structs are converted;
// anything else cannot be a document body.
func writeTree(data interface{}) (map[string]interface{}, error) {
	if data == nil {
		return nil, errors.New("firewire: write data must not be nil")
	}

	tree, ok := treeFields(data)
	if !ok {
		return nil, &UnsupportedTypeError{Type: reflect.TypeOf(data)}
	}

	return tree, nil
}

// planCreate builds a write that creates a document,
// guarded on the document not yet existing. Every
// provided field is written, so no mask is attached.
func planCreate(ref *DocumentRef, data interface{}) (*Write, error) {
	tree, err := writeTree(data)
	if err != nil {
		return nil, err
	}

	wc := &writeCollector{}

	fields, err := wc.encodeFields(tree)
	if err != nil {
		return nil, err
	}

	exists := false
	w := &Write{
		Update:          &Document{Name: ref.name, Fields: fields},
		CurrentDocument: &Precondition{Exists: &exists},
	}

	if len(wc.transforms) > 0 {
		w.UpdateTransforms = wc.transforms
	}

	return w, nil
}

// planSet builds a write that replaces a document in
// full: a literal replace, so no mask and no
// precondition are attached.
func planSet(ref *DocumentRef, data interface{}) (*Write, error) {
	tree, err := writeTree(data)
	if err != nil {
		return nil, err
	}

	wc := &writeCollector{}

	fields, err := wc.encodeFields(tree)
	if err != nil {
		return nil, err
	}

	w := &Write{Update: &Document{Name: ref.name, Fields: fields}}

	if len(wc.transforms) > 0 {
		w.UpdateTransforms = wc.transforms
	}

	return w, nil
}

// planMerge builds a write that merges the provided
// fields into a document. A nil Write (and no error)
// means the input produced neither mask entries nor
// transforms: a defined no-op, skipped entirely.
func planMerge(ref *DocumentRef, data interface{}, pre *Precondition) (*Write, error) {
	tree, err := writeTree(data)
	if err != nil {
		return nil, err
	}

	wc := &writeCollector{}

	fields, err := wc.encodeFields(tree)
	if err != nil {
		return nil, err
	}

	if len(wc.maskPaths) == 0 && len(wc.transforms) == 0 {
		return nil, nil
	}

	// transforms only: the literal-fields write is
	// omitted entirely
	if len(wc.maskPaths) == 0 {
		return &Write{
			Transform: &DocumentTransform{
				Document:        ref.name,
				FieldTransforms: wc.transforms,
			},
			CurrentDocument: pre,
		}, nil
	}

	w := &Write{
		Update:          &Document{Name: ref.name, Fields: fields},
		UpdateMask:      &DocumentMask{FieldPaths: wc.maskPaths},
		CurrentDocument: pre,
	}

	if len(wc.transforms) > 0 {
		w.UpdateTransforms = wc.transforms
	}

	return w, nil
}

// planDelete builds a write that deletes a document,
// with an optional precondition.
func planDelete(ref *DocumentRef, pre *Precondition) *Write {
	return &Write{Delete: ref.name, CurrentDocument: pre}
}
