package pane

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned by Restore for a snapshot that does not
// describe a valid tree.
var ErrInvalidSnapshot = errors.New("invalid pane snapshot")

// Snapshot is the persistable shape of a pane tree. Leaves are identified
// by friendly id because arena keys do not survive a restart.
type Snapshot struct {
	Active int          `toml:"active" yaml:"active" json:"active"`
	NextID int          `toml:"next_id" yaml:"next_id" json:"next_id"`
	Root   NodeSnapshot `toml:"root" yaml:"root" json:"root"`
}

// NodeSnapshot is one node of a Snapshot. ID is set for leaves; Split and
// Children are set for splits.
type NodeSnapshot struct {
	ID       int            `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Split    string         `toml:"split,omitempty" yaml:"split,omitempty" json:"split,omitempty"`
	Weight   int            `toml:"weight" yaml:"weight" json:"weight"`
	Children []NodeSnapshot `toml:"children,omitempty" yaml:"children,omitempty" json:"children,omitempty"`
}

// Snapshot captures the tree, the friendly ids and the active selection.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		Active: m.friendly[m.active],
		NextID: m.nextID,
		Root:   m.snapshotNode(m.root),
	}
}

func (m *Manager) snapshotNode(k Key) NodeSnapshot {
	n := m.nodes.Get(k)
	if n.IsLeaf() {
		return NodeSnapshot{ID: m.friendly[k], Weight: n.Weight}
	}
	ns := NodeSnapshot{Split: n.Orientation.String(), Weight: n.Weight}
	for _, c := range n.Children {
		ns.Children = append(ns.Children, m.snapshotNode(c))
	}
	return ns
}

// Restore builds a new Manager from s. On error no Manager is returned
// and the caller's tree is untouched.
func Restore(s Snapshot) (*Manager, error) {
	m := &Manager{friendly: make(map[Key]int)}
	maxID := 0
	root, err := m.restoreNode(s.Root, Key{}, &maxID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	m.root = root
	m.nextID = s.NextID
	if m.nextID <= maxID {
		m.nextID = maxID + 1
	}

	active, ok := m.KeyForFriendlyID(s.Active)
	if !ok {
		return nil, fmt.Errorf("%w: active pane %d not in tree", ErrInvalidSnapshot, s.Active)
	}
	m.active = active

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return m, nil
}

func (m *Manager) restoreNode(ns NodeSnapshot, parent Key, maxID *int) (Key, error) {
	weight := ns.Weight
	if weight < 1 {
		weight = 1
	}

	if ns.Split == "" {
		if len(ns.Children) != 0 {
			return Key{}, fmt.Errorf("leaf %d has children", ns.ID)
		}
		if ns.ID < 1 {
			return Key{}, fmt.Errorf("leaf has friendly id %d", ns.ID)
		}
		if _, dup := m.KeyForFriendlyID(ns.ID); dup {
			return Key{}, fmt.Errorf("duplicate friendly id %d", ns.ID)
		}
		k := m.nodes.Insert(Node{Kind: KindSingle, Parent: parent, Weight: weight})
		m.friendly[k] = ns.ID
		*maxID = max(*maxID, ns.ID)
		return k, nil
	}

	o, err := ParseOrientation(ns.Split)
	if err != nil {
		return Key{}, err
	}
	if len(ns.Children) < 2 {
		return Key{}, fmt.Errorf("split with %d children", len(ns.Children))
	}
	k := m.nodes.Insert(Node{Kind: KindSplit, Orientation: o, Parent: parent, Weight: weight})
	children := make([]Key, 0, len(ns.Children))
	for _, c := range ns.Children {
		ck, err := m.restoreNode(c, k, maxID)
		if err != nil {
			return Key{}, err
		}
		children = append(children, ck)
	}
	m.nodes.Get(k).Children = children
	return k, nil
}
