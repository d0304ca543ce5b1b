package pane

import (
	"bytes"
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestorePreservesShape(t *testing.T) {
	m := NewManager()
	m.Split(Vertical)
	m.Split(Horizontal)
	m.Resize(Down, 2)
	m.Cycle()
	m.Split(Horizontal)
	m.Kill()

	snap := m.Snapshot()
	r, err := Restore(snap)
	require.NoError(t, err)
	require.Equal(t, snap, r.Snapshot())

	total := Rect{W: 120, H: 40}
	want := make(map[int]Rect)
	for k, rect := range m.Bounds(total) {
		id, _ := m.FriendlyID(k)
		want[id] = rect
	}
	got := make(map[int]Rect)
	for k, rect := range r.Bounds(total) {
		id, _ := r.FriendlyID(k)
		got[id] = rect
	}
	require.Equal(t, want, got)

	activeID, _ := r.FriendlyID(r.Active())
	require.Equal(t, snap.Active, activeID)
	require.Equal(t, m.NextID(), r.NextID())
}

func TestSnapshotIdentifiesLeavesOnly(t *testing.T) {
	m := NewManager()
	m.Split(Vertical)
	m.Split(Horizontal)

	var walk func(n NodeSnapshot)
	leaves := 0
	walk = func(n NodeSnapshot) {
		if len(n.Children) == 0 {
			leaves++
			require.NotZero(t, n.ID, "leaf without friendly id")
			require.Empty(t, n.Split)
			return
		}
		require.Zero(t, n.ID, "split carries an id")
		require.NotEmpty(t, n.Split)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(m.Snapshot().Root)
	require.Equal(t, 3, leaves)
}

func TestSnapshotSurvivesTOML(t *testing.T) {
	m := NewManager()
	m.Split(Vertical)
	m.Split(Horizontal)
	snap := m.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, toml.NewEncoder(&buf).Encode(snap))

	var decoded Snapshot
	_, err := toml.Decode(buf.String(), &decoded)
	require.NoError(t, err)
	require.Equal(t, snap, decoded)
}

func TestRestoreRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"missing active", Snapshot{Active: 9, Root: NodeSnapshot{ID: 1, Weight: 1}}},
		{"zero id", Snapshot{Active: 0, Root: NodeSnapshot{Weight: 1}}},
		{"split with one child", Snapshot{Active: 1, Root: NodeSnapshot{
			Split: "vertical", Weight: 1, Children: []NodeSnapshot{{ID: 1, Weight: 1}},
		}}},
		{"duplicate id", Snapshot{Active: 1, Root: NodeSnapshot{
			Split: "vertical", Weight: 1, Children: []NodeSnapshot{{ID: 1, Weight: 1}, {ID: 1, Weight: 1}},
		}}},
		{"bad orientation", Snapshot{Active: 1, Root: NodeSnapshot{
			Split: "diagonal", Weight: 1, Children: []NodeSnapshot{{ID: 1, Weight: 1}, {ID: 2, Weight: 1}},
		}}},
		{"leaf with children", Snapshot{Active: 1, Root: NodeSnapshot{
			ID: 1, Weight: 1, Children: []NodeSnapshot{{ID: 2, Weight: 1}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.snap)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidSnapshot))
		})
	}
}

func TestRestoreBumpsStaleNextID(t *testing.T) {
	r, err := Restore(Snapshot{Active: 4, NextID: 2, Root: NodeSnapshot{
		Split: "horizontal", Weight: 1, Children: []NodeSnapshot{{ID: 4, Weight: 0}, {ID: 7, Weight: 2}},
	}})
	require.NoError(t, err)
	require.Equal(t, 8, r.NextID())

	leaf, _ := r.Split(Vertical)
	id, _ := r.FriendlyID(leaf)
	require.Equal(t, 8, id)
}

func TestKeyRoundTrip(t *testing.T) {
	m := NewManager()
	k, _ := m.Split(Vertical)

	parsed, err := ParseKey(k.String())
	require.NoError(t, err)
	require.Equal(t, k, parsed)

	for _, bad := range []string{"", "3", "xv1", "1vx", "1v0"} {
		_, err := ParseKey(bad)
		require.Error(t, err, bad)
	}
}
