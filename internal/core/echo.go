package core

import (
	"bytes"
	"encoding/json"
)

// Echo is an entity as the server returned it from a mutation. The server
// may send only some fields; laying the echo over a local copy changes just
// those and keeps everything else, like like state and counters.
type Echo[T any] struct {
	raw json.RawMessage
}

// EchoOf encodes v as an echo with every field of v present.
func EchoOf[T any](v any) (Echo[T], error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Echo[T]{}, err
	}

	var e Echo[T]
	if err := e.UnmarshalJSON(raw); err != nil {
		return Echo[T]{}, err
	}
	return e, nil
}

// UnmarshalJSON keeps the payload. A payload that does not decode into T is
// rejected here, so Over never meets it.
func (e *Echo[T]) UnmarshalJSON(data []byte) error {
	var check T
	if err := json.Unmarshal(data, &check); err != nil {
		return err
	}
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e Echo[T]) Empty() bool {
	trimmed := bytes.TrimSpace(e.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Over returns local with the fields of the echo applied. local is first
// cloned through its JSON form, so nested slices and pointers of local are
// never written to.
func (e Echo[T]) Over(local T) T {
	if e.Empty() {
		return local
	}

	base, err := json.Marshal(local)
	if err != nil {
		return local
	}

	var merged T
	if err := json.Unmarshal(base, &merged); err != nil {
		return local
	}
	if err := json.Unmarshal(e.raw, &merged); err != nil {
		return local
	}
	return merged
}

// Value decodes the echo on its own, fields it lacks are zero.
func (e Echo[T]) Value() T {
	var zero T
	return e.Over(zero)
}
