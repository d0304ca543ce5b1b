package pane

type slot struct {
	gen  uint32
	live bool
	node Node
}

// Arena is a dense store of nodes behind generation-checked keys.
// Iteration order is slot order, which is stable for the arena's lifetime.
type Arena struct {
	slots []slot
	free  []uint32
	count int
}

// Insert stores n and returns its key.
func (a *Arena) Insert(n Node) Key {
	var idx uint32
	if len(a.free) > 0 {
		idx = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
	} else {
		a.slots = append(a.slots, slot{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	s.live = true
	s.node = n
	a.count++
	return Key{index: idx, gen: s.gen}
}

// Get returns a pointer to the node for k, or nil if k is stale or unknown.
// The pointer is invalidated by the next Insert.
func (a *Arena) Get(k Key) *Node {
	if k.IsZero() || int(k.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[k.index]
	if !s.live || s.gen != k.gen {
		return nil
	}
	return &s.node
}

// Contains reports whether k refers to a live node.
func (a *Arena) Contains(k Key) bool {
	return a.Get(k) != nil
}

// Remove deletes the node for k. It reports false if k was not live.
func (a *Arena) Remove(k Key) bool {
	if a.Get(k) == nil {
		return false
	}
	s := &a.slots[k.index]
	s.live = false
	s.node = Node{}
	a.free = append(a.free, k.index)
	a.count--
	return true
}

// Len returns the number of live nodes.
func (a *Arena) Len() int {
	return a.count
}

// Keys returns every live key in slot order.
func (a *Arena) Keys() []Key {
	keys := make([]Key, 0, a.count)
	for i := range a.slots {
		if a.slots[i].live {
			keys = append(keys, Key{index: uint32(i), gen: a.slots[i].gen})
		}
	}
	return keys
}
