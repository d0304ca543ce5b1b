package pane

import (
	"fmt"
	"strings"
)

// Manager owns the pane tree and the active selection. It is not safe for
// concurrent use; the UI loop is its only caller.
type Manager struct {
	nodes    Arena
	root     Key
	active   Key
	friendly map[Key]int
	nextID   int
}

// NewManager returns a tree holding a single root pane with friendly id 1.
func NewManager() *Manager {
	m := &Manager{friendly: make(map[Key]int), nextID: 1}
	m.root = m.nodes.Insert(Node{Kind: KindSingle, Weight: 1})
	m.active = m.root
	m.assignID(m.root)
	return m
}

func (m *Manager) assignID(k Key) int {
	id := m.nextID
	m.friendly[k] = id
	m.nextID++
	return id
}

// Root returns the key of the root node.
func (m *Manager) Root() Key { return m.root }

// Active returns the key of the active leaf.
func (m *Manager) Active() Key { return m.active }

// NextID returns the friendly id the next split will assign.
func (m *Manager) NextID() int { return m.nextID }

// Len returns the number of live nodes, splits included.
func (m *Manager) Len() int { return m.nodes.Len() }

// Node returns a copy of the node for k.
func (m *Manager) Node(k Key) (Node, bool) {
	n := m.nodes.Get(k)
	if n == nil {
		return Node{}, false
	}
	cp := *n
	cp.Children = append([]Key(nil), n.Children...)
	return cp, true
}

// SetActive selects k if it is a live leaf.
func (m *Manager) SetActive(k Key) bool {
	n := m.nodes.Get(k)
	if n == nil || !n.IsLeaf() {
		return false
	}
	m.active = k
	return true
}

// FriendlyID returns the human-facing id of a leaf.
func (m *Manager) FriendlyID(k Key) (int, bool) {
	id, ok := m.friendly[k]
	return id, ok
}

// KeyForFriendlyID looks a leaf up by its friendly id.
func (m *Manager) KeyForFriendlyID(id int) (Key, bool) {
	for k, fid := range m.friendly {
		if fid == id {
			return k, true
		}
	}
	return Key{}, false
}

// Leaves returns every leaf in left-to-right depth-first order.
func (m *Manager) Leaves() []Key {
	var keys []Key
	m.walkLeaves(m.root, &keys)
	return keys
}

func (m *Manager) walkLeaves(k Key, keys *[]Key) {
	n := m.nodes.Get(k)
	if n == nil {
		return
	}
	if n.IsLeaf() {
		*keys = append(*keys, k)
		return
	}
	for _, c := range n.Children {
		m.walkLeaves(c, keys)
	}
}

// Split wraps the active leaf in a new split of orientation o holding the
// old leaf and a fresh one. The fresh leaf becomes active and its key is
// returned.
func (m *Manager) Split(o Orientation) (Key, bool) {
	activeID := m.active
	old := m.nodes.Get(activeID)
	if old == nil {
		return Key{}, false
	}
	parentID := old.Parent
	weight := old.Weight

	splitID := m.nodes.Insert(Node{
		Kind:        KindSplit,
		Orientation: o,
		Parent:      parentID,
		Weight:      weight,
	})
	leafID := m.nodes.Insert(Node{Kind: KindSingle, Parent: splitID, Weight: 1})

	split := m.nodes.Get(splitID)
	split.Children = []Key{activeID, leafID}

	old = m.nodes.Get(activeID)
	old.Parent = splitID
	old.Weight = 1

	if parentID.IsZero() {
		m.root = splitID
	} else {
		m.replaceChild(parentID, activeID, splitID)
	}

	m.active = leafID
	m.assignID(leafID)
	return leafID, true
}

func (m *Manager) replaceChild(parentID, oldChild, newChild Key) {
	p := m.nodes.Get(parentID)
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == oldChild {
			p.Children[i] = newChild
			return
		}
	}
}

// Kill removes the active leaf and returns its key. The last remaining
// leaf cannot be killed. A split left with a single child is collapsed and
// the child takes its place. The new active pane is the last leaf in
// depth-first order.
func (m *Manager) Kill() (Key, bool) {
	activeID := m.active
	n := m.nodes.Get(activeID)
	if n == nil || n.Parent.IsZero() {
		return Key{}, false
	}
	parentID := n.Parent
	parent := m.nodes.Get(parentID)
	grandID := parent.Parent

	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if c != activeID {
			kept = append(kept, c)
		}
	}
	parent.Children = kept

	if len(parent.Children) == 1 {
		promoted := parent.Children[0]
		pn := m.nodes.Get(promoted)
		pn.Parent = grandID
		if grandID.IsZero() {
			m.root = promoted
		} else {
			pn.Weight = parent.Weight
			m.replaceChild(grandID, parentID, promoted)
		}
		m.nodes.Remove(parentID)
	}

	m.nodes.Remove(activeID)
	delete(m.friendly, activeID)

	leaves := m.Leaves()
	m.active = leaves[len(leaves)-1]
	return activeID, true
}

// Cycle moves the selection to the next leaf in depth-first order,
// wrapping to the first.
func (m *Manager) Cycle() {
	leaves := m.Leaves()
	if len(leaves) == 0 {
		return
	}
	for i, k := range leaves {
		if k == m.active {
			m.active = leaves[(i+1)%len(leaves)]
			return
		}
	}
	m.active = leaves[0]
}

// Resize grows the active pane by amount (shrinks when negative) at the
// nearest ancestor split whose orientation divides space along d. The
// adjusted sibling is the previous child, or the next one when the active
// branch is first. Weights never drop below 1. It reports false when no
// ancestor matches or both weights are already at their clamp.
func (m *Manager) Resize(d Direction, amount int) bool {
	want := d.axis()
	current := m.active
	for {
		n := m.nodes.Get(current)
		if n == nil || n.Parent.IsZero() {
			return false
		}
		parentID := n.Parent
		parent := m.nodes.Get(parentID)
		if parent.Kind != KindSplit {
			return false
		}
		if parent.Orientation != want {
			current = parentID
			continue
		}

		idx := -1
		for i, c := range parent.Children {
			if c == current {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		sib := idx - 1
		if idx == 0 {
			sib = 1
		}
		if sib >= len(parent.Children) {
			return false
		}

		self := m.nodes.Get(current)
		other := m.nodes.Get(parent.Children[sib])
		newSelf := max(self.Weight+amount, 1)
		newOther := max(other.Weight-amount, 1)
		if newSelf == self.Weight && newOther == other.Weight {
			return false
		}
		self.Weight = newSelf
		other.Weight = newOther
		return true
	}
}

// String renders the tree for debug logs.
func (m *Manager) String() string {
	var b strings.Builder
	b.WriteString("--- pane tree ---\n")
	fmt.Fprintf(&b, "root: %s active: %s\n", m.root, m.active)
	m.writeNode(&b, m.root, 0)
	b.WriteString("-----------------")
	return b.String()
}

func (m *Manager) writeNode(b *strings.Builder, k Key, depth int) {
	n := m.nodes.Get(k)
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	parent := "none"
	if !n.Parent.IsZero() {
		parent = n.Parent.String()
	}
	if n.IsLeaf() {
		fmt.Fprintf(b, "%s[%s] Single id=%d weight=%d parent=%s\n", indent, k, m.friendly[k], n.Weight, parent)
		return
	}
	fmt.Fprintf(b, "%s[%s] Split(%s) children=%d weight=%d parent=%s\n", indent, k, n.Orientation, len(n.Children), n.Weight, parent)
	for _, c := range n.Children {
		m.writeNode(b, c, depth+1)
	}
}

// Validate checks the structural invariants of the tree.
func (m *Manager) Validate() error {
	root := m.nodes.Get(m.root)
	if root == nil {
		return fmt.Errorf("root %s is not live", m.root)
	}
	if !root.Parent.IsZero() {
		return fmt.Errorf("root %s has a parent", m.root)
	}
	seen := make(map[Key]bool)
	if err := m.validateNode(m.root, Key{}, seen); err != nil {
		return err
	}
	if len(seen) != m.nodes.Len() {
		return fmt.Errorf("%d nodes unreachable from root", m.nodes.Len()-len(seen))
	}
	if a := m.nodes.Get(m.active); a == nil || !a.IsLeaf() {
		return fmt.Errorf("active %s is not a live leaf", m.active)
	}
	for k := range m.friendly {
		if n := m.nodes.Get(k); n == nil || !n.IsLeaf() {
			return fmt.Errorf("friendly id mapped to non-leaf %s", k)
		}
	}
	return nil
}

func (m *Manager) validateNode(k, parent Key, seen map[Key]bool) error {
	if seen[k] {
		return fmt.Errorf("node %s reachable twice", k)
	}
	seen[k] = true
	n := m.nodes.Get(k)
	if n == nil {
		return fmt.Errorf("dangling child %s", k)
	}
	if n.Parent != parent {
		return fmt.Errorf("node %s parent is %s, want %s", k, n.Parent, parent)
	}
	if n.Weight < 1 {
		return fmt.Errorf("node %s has weight %d", k, n.Weight)
	}
	if n.IsLeaf() {
		if len(n.Children) != 0 {
			return fmt.Errorf("leaf %s has children", k)
		}
		if _, ok := m.friendly[k]; !ok {
			return fmt.Errorf("leaf %s has no friendly id", k)
		}
		return nil
	}
	if len(n.Children) < 2 {
		return fmt.Errorf("split %s has %d children", k, len(n.Children))
	}
	for _, c := range n.Children {
		if err := m.validateNode(c, k, seen); err != nil {
			return err
		}
	}
	return nil
}
