// Package editor implements index-consistent mutation and spatial
// queries over a [craft.Craft].
//
// Every operation either completes or leaves the craft untouched. Node
// removal cascades to the rods that reference the node and renumbers
// the rest, so the solver never sees a dangling index.
//
// Distance thresholds are linear in the API and compared as squared
// distances internally.
//
// The [Selection] type is the thin interaction layer: it turns picked
// pointer positions into nodes and rod chains through the editor.
package editor
