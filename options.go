package firewire

import "time"

// A Firewire Options instance allows for the
// overriding of default behaviour for set, update and
// delete operations.
//
// Options values are immutable. Each Options method
// creates a new instance - it does not modify the old.
type Options struct {
	// Merge the provided fields into the existing
	// document instead of replacing it. Default is
	// "false".
	//
	// Only used for set operations.
	merge bool
	// Require the target document to exist. Default
	// is no existence precondition.
	//
	// Only used for update and delete operations.
	requireExists bool
	// Require the target document to have been last
	// updated at the given time. Default is no
	// update-time precondition.
	//
	// Only used for update and delete operations.
	requireUpdateTime time.Time
}

// Create a new Options instance.
//
// A Firewire Options instance allows for the
// overriding of default behaviour for set, update and
// delete operations.
//
// Options values are immutable. Each Options method
// creates a new instance - it does not modify the old.
func NewOptions() Options {
	return Options{}
}

// Merge the provided fields into the existing
// document instead of replacing it. Fields omitted
// from the data are left untouched.
//
// Only used for set operations.
func (o Options) Merge() Options {
	o.merge = true
	return o
}

// Require the target document to exist.
//
// Only used for update and delete operations.
func (o Options) RequireExists() Options {
	o.requireExists = true
	return o
}

// Require the target document to have been last
// updated at the given time.
//
// Only used for update and delete operations.
func (o Options) RequireUpdateTime(t time.Time) Options {
	o.requireUpdateTime = t
	return o
}

// precondition derives the wire precondition the
// options describe, or nil when none was requested.
func (o Options) precondition() *Precondition {
	var pre *Precondition

	if o.requireExists {
		exists := true
		pre = &Precondition{Exists: &exists}
	}

	if !o.requireUpdateTime.IsZero() {
		if pre == nil {
			pre = &Precondition{}
		}

		pre.UpdateTime = o.requireUpdateTime.UTC().Format(time.RFC3339Nano)
	}

	return pre
}

// first extracts the leading Options value of a
// variadic options list.
func firstOption(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}

	return opts[0]
}
