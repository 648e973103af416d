// Package analysis inspects recorded craft runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a node
//     coordinate, computed with go-dsp's FFT
//   - [LyapunovExponent]: sensitivity of a craft to a nudged node
//   - [BifurcationDiagram]: peak positions of a node across a parameter
//     sweep, run as a parallel ensemble
//   - [NewPhasePortrait] and [NewPoincareSection]: position/velocity views
//     of a node's trajectory
//
// A pendulum's swing frequency can be read straight off a run:
//
//	_, ys := storage.NodeSeries(frames, 1)
//	hz, ok := analysis.DominantFrequency(ys, dt)
package analysis
