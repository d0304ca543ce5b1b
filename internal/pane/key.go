// Package pane owns the pane layout tree: an arena of nodes addressed by
// generation-checked keys, and the structural operations (split, kill,
// resize, cycle, navigate) the dashboard performs on it.
package pane

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a node in an Arena. Keys are never reused for a different
// node: removing a node bumps the generation of its slot.
// The zero Key refers to no node.
type Key struct {
	index uint32
	gen   uint32
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool {
	return k.gen == 0
}

// String encodes the key as "<index>v<generation>".
func (k Key) String() string {
	return strconv.FormatUint(uint64(k.index), 10) + "v" + strconv.FormatUint(uint64(k.gen), 10)
}

// ParseKey reverses Key.String.
func ParseKey(s string) (Key, error) {
	idx, gen, ok := strings.Cut(s, "v")
	if !ok {
		return Key{}, fmt.Errorf("invalid pane key %q", s)
	}
	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("invalid pane key index %q: %w", s, err)
	}
	g, err := strconv.ParseUint(gen, 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("invalid pane key generation %q: %w", s, err)
	}
	if g == 0 {
		return Key{}, fmt.Errorf("invalid pane key %q: zero generation", s)
	}
	return Key{index: uint32(i), gen: uint32(g)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
