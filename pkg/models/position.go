package models

// TerminalGroup is the sentinel group reported once a workflow reaches its
// end event, regardless of which group the graph nominally ended in.
const TerminalGroup = "End"

// Position is the domain's two-level step address: a workflow group and,
// when paused at a checkpoint, the item within it. A zero Position means the
// engine has no ready checkpoint and is not completed.
type Position struct {
	Group string `json:"group,omitempty"`
	Item  string `json:"item,omitempty"`
}

// Terminal reports whether the position is the completion sentinel.
func (p Position) Terminal() bool {
	return p.Group == TerminalGroup
}

// IsZero reports whether no position is known.
func (p Position) IsZero() bool {
	return p.Group == "" && p.Item == ""
}

// TerminalPosition returns the stable completion marker (End, no item).
func TerminalPosition() Position {
	return Position{Group: TerminalGroup}
}
