// Package physics advances a craft through time.
//
// A [Solver] runs a fixed two-phase step: Verlet integration of every
// non-fixed node under gravity with a restitutive floor, followed by
// Gauss-Seidel relaxation of the rods. Velocity is never stored; it is
// the difference between a node's position and its previous position, so
// moving a node in the editor injects no velocity.
//
// Each rod kind has its own correction rule, exposed as the pure function
// [Correction]:
//
//   - Solid: hard projection onto the rest length
//   - Rope: projection only while stretched
//   - Spring: proportional pull scaled by the spring stiffness
//   - Piston: projection onto a target that oscillates between the rod's
//     minimum and maximum length over simulated time
//
// A [Runner] drives a solver for a number of frames, feeding [Metric] and
// [Observer] implementations and recording node trajectories:
//
//	s := physics.New(c, physics.DefaultConfig())
//	r := physics.NewRunner(s)
//	res, err := r.Run(ctx, physics.RunConfig{Dt: 1.0 / 60, Steps: 600, Record: true})
//
// A solver owns its craft exclusively. [RunEnsemble] clones the craft for
// every job so parallel runs never share state.
package physics
