package pane

import "fmt"

// Kind tags a node as a leaf or a split container.
type Kind int

const (
	// KindSingle is a leaf pane that can host a command.
	KindSingle Kind = iota
	// KindSplit holds two or more children laid out along an orientation.
	KindSplit
)

func (k Kind) String() string {
	if k == KindSplit {
		return "Split"
	}
	return "Single"
}

// Orientation is the axis a split divides.
type Orientation int

const (
	// Vertical places children side by side, divided by vertical borders.
	Vertical Orientation = iota
	// Horizontal stacks children top to bottom.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation accepts the tokens produced by Orientation.String.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return Vertical, fmt.Errorf("unknown split orientation %q", s)
}

// Direction is a cardinal direction used for resizing and navigation.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "right"
	}
}

// axis returns the split orientation that divides space along d.
func (d Direction) axis() Orientation {
	if d == Left || d == Right {
		return Vertical
	}
	return Horizontal
}

// Node is a pane tree node. Children is only set for splits.
type Node struct {
	Kind        Kind
	Orientation Orientation
	Children    []Key
	Parent      Key
	Weight      int
}

// IsLeaf reports whether the node is a Single.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindSingle
}
