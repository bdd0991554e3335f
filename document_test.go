package firewire

import (
	"reflect"
	"testing"
	"time"
)

func testSnapshot(t *testing.T) *DocumentSnapshot {
	t.Helper()

	c := testClient(t)
	ref := c.Doc("users/alice")

	ds, err := newDocumentSnapshot(ref, &Document{
		Name: ref.name,
		Fields: map[string]*Value{
			"name": stringValue("Alice"),
			"age":  integerValue("30"),
			"address": {MapValue: &MapValue{Fields: map[string]*Value{
				"city": stringValue("Anytown"),
				"geo":  {GeoPointValue: &LatLng{Latitude: 1.5, Longitude: -2.5}},
			}}},
			"nickname": nullValue(),
		},
		CreateTime: "2024-01-01T00:00:00Z",
		UpdateTime: "2024-06-01T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("newDocumentSnapshot() error = %v", err)
	}

	return ds
}

func TestSnapshotData(t *testing.T) {
	ds := testSnapshot(t)

	if !ds.Exists() {
		t.Fatal("snapshot does not exist")
	}

	data, err := ds.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}

	want := map[string]interface{}{
		"name": "Alice",
		"age":  int64(30),
		"address": map[string]interface{}{
			"city": "Anytown",
			"geo":  LatLng{Latitude: 1.5, Longitude: -2.5},
		},
		"nickname": nil,
	}

	if !reflect.DeepEqual(data, want) {
		t.Errorf("Data() = %#v, want %#v", data, want)
	}

	wantUpdate := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !ds.UpdateTime.Equal(wantUpdate) {
		t.Errorf("UpdateTime = %v, want %v", ds.UpdateTime, wantUpdate)
	}
}

func TestSnapshotDataAt(t *testing.T) {
	ds := testSnapshot(t)

	tests := []struct {
		name string
		path string
		want interface{}
	}{
		{"Top-level", "name", "Alice"},
		{"Nested leaf", "address.city", "Anytown"},
		{"Nested geo point", "address.geo", LatLng{Latitude: 1.5, Longitude: -2.5}},
		{"Whole map", "address", map[string]interface{}{
			"city": "Anytown",
			"geo":  LatLng{Latitude: 1.5, Longitude: -2.5},
		}},
		{"Null field", "nickname", nil},
		{"Absent field", "missing", nil},
		{"Absent nested field", "address.missing", nil},
		{"Path through a scalar", "name.sub", nil},
		{"Path through an absent map", "missing.sub", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ds.DataAt(tt.path)
			if err != nil {
				t.Fatalf("DataAt(%q) error = %v", tt.path, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DataAt(%q) = %#v, want %#v", tt.path, got, tt.want)
			}
		})
	}

	if _, err := ds.DataAt(""); err == nil {
		t.Error("DataAt(\"\") returned nil error")
	}
}

func TestSnapshotNonExistent(t *testing.T) {
	c := testClient(t)

	ds, err := newDocumentSnapshot(c.Doc("users/ghost"), nil)
	if err != nil {
		t.Fatalf("newDocumentSnapshot() error = %v", err)
	}

	if ds.Exists() {
		t.Error("snapshot of a missing document exists")
	}

	data, err := ds.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if data != nil {
		t.Errorf("Data() = %v, want nil", data)
	}

	got, err := ds.DataAt("anything")
	if err != nil {
		t.Fatalf("DataAt() error = %v", err)
	}
	if got != nil {
		t.Errorf("DataAt() = %v, want nil", got)
	}
}
