// Package viz is the terminal front end: a Bubble Tea model that edits a
// craft and simulates it on a braille canvas.
//
//   - [Model]: edit and simulate scenes sharing one camera
//   - [Canvas]: braille dot canvas, 2x4 dots per cell
//   - [Camera]: pan and zoom between world units and dots
//   - Themes selected by name from the editor config, cycled with tab
//
// # Edit scene
//
// Keys come from the configured key map. Move the cursor, pick points
// (nodes, rod midpoints or free space), then place nodes or chain the
// picks with rods of the current kind. Every change is undoable.
//
// # Simulate scene
//
// The switch key runs a copy of the edited craft through the solver at
// the configured time step. The side panel plots total energy and the
// worst rod strain. Switching back returns to the unsimulated craft.
package viz
