package firewire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// A Firewire WriteBatch accumulates planned writes
// and submits them as one atomic commit request.
//
// Batches are single-use: Commit freezes the write
// sequence, and any further Create, Set, Update,
// Delete or Commit call fails with ErrBatchCommitted.
//
// A WriteBatch is not safe for concurrent use.
type WriteBatch struct {
	c         *Client
	committed bool
	writes    []Write
	// one slot per queued operation: an index into
	// writes, or -1 for planned no-ops
	slots []int
}

// A WriteResult holds the outcome of a single write.
//
// UpdateTime is the time at which the server applied
// the write. It is the zero time for deletes and for
// no-op updates, which produce no timestamp.
type WriteResult struct {
	UpdateTime time.Time
}

type commitRequest struct {
	Writes []Write `json:"writes"`
}

type commitResponse struct {
	CommitTime   string `json:"commitTime"`
	WriteResults []struct {
		UpdateTime string `json:"updateTime"`
	} `json:"writeResults"`
}

// Create queues a write that creates the document
// with the provided data. The write fails at commit
// time if the document already exists.
func (b *WriteBatch) Create(ref *DocumentRef, data interface{}) error {
	if err := b.checkMutable(ref); err != nil {
		return err
	}

	w, err := planCreate(ref, data)
	if err != nil {
		return err
	}

	b.append(w)
	return nil
}

// Set queues a write that replaces the document with
// the provided data, creating it if it does not
// exist. With the Merge option, the provided fields
// are merged into the existing document instead.
func (b *WriteBatch) Set(ref *DocumentRef, data interface{}, opts ...Options) error {
	if err := b.checkMutable(ref); err != nil {
		return err
	}

	o := firstOption(opts)

	var w *Write
	var err error

	if o.merge {
		w, err = planMerge(ref, data, o.precondition())
	} else {
		w, err = planSet(ref, data)
	}

	if err != nil {
		return err
	}

	b.append(w)
	return nil
}

// Update queues a write that merges the provided
// fields into the document. By default the document
// is required to exist; a RequireUpdateTime option
// replaces that precondition.
//
// Data containing no fields, and no sentinels, queues
// nothing: a defined no-op, not an error.
func (b *WriteBatch) Update(ref *DocumentRef, data interface{}, opts ...Options) error {
	if err := b.checkMutable(ref); err != nil {
		return err
	}

	pre := firstOption(opts).precondition()
	if pre == nil {
		exists := true
		pre = &Precondition{Exists: &exists}
	}

	w, err := planMerge(ref, data, pre)
	if err != nil {
		return err
	}

	b.append(w)
	return nil
}

// Delete queues a write that deletes the document,
// with an optional precondition.
func (b *WriteBatch) Delete(ref *DocumentRef, opts ...Options) error {
	if err := b.checkMutable(ref); err != nil {
		return err
	}

	b.append(planDelete(ref, firstOption(opts).precondition()))
	return nil
}

// Commit freezes the batch and submits the
// accumulated writes as a single atomic request.
//
// The returned results are in queueing order, one per
// queued operation. Operations planned as no-ops
// yield an empty WriteResult without having been
// transmitted.
func (b *WriteBatch) Commit(ctx context.Context) ([]*WriteResult, error) {
	if b == nil {
		return nil, errors.New("firewire: nil WriteBatch")
	}

	if b.committed {
		return nil, ErrBatchCommitted
	}

	b.committed = true

	results := make([]*WriteResult, len(b.slots))
	for i := range results {
		results[i] = &WriteResult{}
	}

	// a batch of nothing but no-ops commits locally
	if len(b.writes) == 0 {
		return results, nil
	}

	raw, err := b.c.transport.Request(
		ctx,
		http.MethodPost,
		b.c.root+":commit",
		commitRequest{Writes: b.writes},
	)
	if err != nil {
		return nil, err
	}

	var resp commitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("firewire: malformed commit response: %v", err)
	}

	if len(resp.WriteResults) != len(b.writes) {
		return nil, fmt.Errorf(
			"firewire: commit returned %d results for %d writes",
			len(resp.WriteResults),
			len(b.writes),
		)
	}

	for i, slot := range b.slots {
		if slot < 0 {
			continue
		}

		if ut := resp.WriteResults[slot].UpdateTime; ut != "" {
			t, err := time.Parse(time.RFC3339Nano, ut)
			if err != nil {
				return nil, fmt.Errorf("firewire: malformed update time %q", ut)
			}

			results[i].UpdateTime = t
		}
	}

	return results, nil
}

// checkMutable guards every queueing method.
func (b *WriteBatch) checkMutable(ref *DocumentRef) error {
	if b == nil {
		return errors.New("firewire: nil WriteBatch")
	}

	if b.committed {
		return ErrBatchCommitted
	}

	if ref == nil {
		return errors.New("firewire: nil DocumentRef")
	}

	return nil
}

// append records one queued operation. A nil write is
// a planned no-op: it takes a result slot but is not
// transmitted.
func (b *WriteBatch) append(w *Write) {
	if w == nil {
		b.slots = append(b.slots, -1)
		return
	}

	b.slots = append(b.slots, len(b.writes))
	b.writes = append(b.writes, *w)
}
