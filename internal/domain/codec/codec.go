// Package codec encodes polymorphic values as {"type": kind, "data": {...}}
// envelopes so that saved documents can be decoded back into the right
// concrete type.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownKind   = errors.New("unknown kind")
	ErrDuplicateKind = errors.New("duplicate kind")
)

// Kinded values report the discriminator they are registered under.
type Kinded interface {
	Kind() string
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Registry maps kinds to factories for one family of values.
type Registry[T Kinded] struct {
	family    string
	factories map[string]func() T
}

func NewRegistry[T Kinded](family string) *Registry[T] {
	return &Registry[T]{family: family, factories: map[string]func() T{}}
}

// Register adds a factory. The factory must return a pointer that
// json.Unmarshal can fill.
func (r *Registry[T]) Register(kind string, factory func() T) error {
	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("%w: %s %q", ErrDuplicateKind, r.family, kind)
	}
	r.factories[kind] = factory
	return nil
}

// MustRegister is Register for package init blocks.
func (r *Registry[T]) MustRegister(kind string, factory func() T) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

func (r *Registry[T]) Kinds() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Encode wraps v in an envelope. A nil value encodes as JSON null.
func (r *Registry[T]) Encode(v T) (json.RawMessage, error) {
	if isNil(v) {
		return json.RawMessage("null"), nil
	}
	kind := v.Kind()
	if _, ok := r.factories[kind]; !ok {
		return nil, fmt.Errorf("encode %s: %w %q", r.family, ErrUnknownKind, kind)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s %q: %w", r.family, kind, err)
	}
	return json.Marshal(envelope{Type: kind, Data: data})
}

// Decode reverses Encode. JSON null decodes to the zero T.
func (r *Registry[T]) Decode(raw json.RawMessage) (T, error) {
	var zero T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return zero, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return zero, fmt.Errorf("decode %s envelope: %w", r.family, err)
	}
	factory, ok := r.factories[env.Type]
	if !ok {
		return zero, fmt.Errorf("decode %s: %w %q", r.family, ErrUnknownKind, env.Type)
	}
	v := factory()
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return zero, fmt.Errorf("decode %s %q: %w", r.family, env.Type, err)
		}
	}
	return v, nil
}

func (r *Registry[T]) EncodeList(list []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(list))
	for _, v := range list {
		raw, err := r.Encode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeList decodes every element, dropping nulls.
func (r *Registry[T]) DecodeList(raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := r.Decode(raw)
		if err != nil {
			return nil, err
		}
		if isNil(v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func isNil[T Kinded](v T) bool {
	return IsNil(any(v))
}
