package forms

import (
	"context"
	"fmt"
	"sync"
)

// State of a creation dialog
type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

// CommitFunc persists a validated record and returns the confirmed copy
type CommitFunc[R any] func(ctx context.Context, record R) (R, error)

// Dialog owns the draft of one creation form.
// closed -> open -> submitting -> closed, or open -> closed on cancel.
type Dialog[D any, R any] struct {
	mu    sync.Mutex
	state State
	draft D

	fresh func() D
	set   func(d *D, field, value string) bool
	build func(d D) (R, error)
}

// View is a point-in-time copy of a dialog
type View[D any] struct {
	State State `json:"state"`
	Draft *D    `json:"draft,omitempty"`
}

func newDialog[D any, R any](fresh func() D, set func(*D, string, string) bool, build func(D) (R, error)) *Dialog[D, R] {
	return &Dialog[D, R]{
		state: StateClosed,
		fresh: fresh,
		set:   set,
		build: build,
	}
}

// Open starts the dialog from the default draft. Opening an open dialog resets it.
func (f *Dialog[D, R]) Open() (D, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		var zero D
		return zero, ErrDialogSubmitting
	}

	f.draft = f.fresh()
	f.state = StateOpen
	return f.draft, nil
}

// Cancel closes the dialog and discards the draft. Cancelling a closed dialog is a no-op.
func (f *Dialog[D, R]) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return ErrDialogSubmitting
	}
	f.close()
	return nil
}

// Set edits one draft field
func (f *Dialog[D, R]) Set(field, value string) (D, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero D
	if f.state != StateOpen {
		return zero, ErrDialogClosed
	}
	if !f.set(&f.draft, field, value) {
		return zero, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return f.draft, nil
}

// SetAll applies several edits, stopping at the first unknown field
func (f *Dialog[D, R]) SetAll(values map[string]string) (D, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero D
	if f.state != StateOpen {
		return zero, ErrDialogClosed
	}

	next := f.draft
	for field, value := range values {
		if !f.set(&next, field, value) {
			return zero, fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}
	f.draft = next
	return f.draft, nil
}

// Submit validates the draft and hands the record to commit.
// A validation error leaves the dialog open for correction. Once commit is
// called the dialog closes whatever the outcome, and commit's error is returned.
func (f *Dialog[D, R]) Submit(ctx context.Context, commit CommitFunc[R]) (R, error) {
	var zero R

	f.mu.Lock()
	if f.state != StateOpen {
		f.mu.Unlock()
		return zero, ErrDialogClosed
	}
	record, err := f.build(f.draft)
	if err != nil {
		f.mu.Unlock()
		return zero, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	confirmed, err := commit(ctx, record)

	f.mu.Lock()
	f.close()
	f.mu.Unlock()

	if err != nil {
		return zero, err
	}
	return confirmed, nil
}

// State returns the current dialog state
func (f *Dialog[D, R]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns the state and, unless closed, a copy of the draft
func (f *Dialog[D, R]) View() View[D] {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View[D]{State: f.state}
	if f.state != StateClosed {
		d := f.draft
		v.Draft = &d
	}
	return v
}

// close must be called with the lock held
func (f *Dialog[D, R]) close() {
	var zero D
	f.draft = zero
	f.state = StateClosed
}
