package editor

import "github.com/san-kum/craftsim/internal/craft"

// DefaultHistoryDepth bounds the undo stack.
const DefaultHistoryDepth = 64

// History keeps craft snapshots for undo and redo.
type History struct {
	depth int
	undo  []*craft.Craft
	redo  []*craft.Craft
}

func NewHistory(depth int) *History {
	if depth < 1 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records the state of c before an edit. Any redo state is lost.
func (h *History) Push(c *craft.Craft) {
	h.undo = append(h.undo, c.Clone())
	if len(h.undo) > h.depth {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// Undo swaps the editor's craft for the last snapshot.
func (h *History) Undo(e *Editor) bool {
	if len(h.undo) == 0 {
		return false
	}
	last := len(h.undo) - 1
	h.redo = append(h.redo, e.c.Clone())
	e.c = h.undo[last]
	h.undo = h.undo[:last]
	return true
}

func (h *History) Redo(e *Editor) bool {
	if len(h.redo) == 0 {
		return false
	}
	last := len(h.redo) - 1
	h.undo = append(h.undo, e.c.Clone())
	e.c = h.redo[last]
	h.redo = h.redo[:last]
	return true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
