// Package vision owns the core of the collision-risk pipeline: detection
// and track types, monocular geometry, and the multi-object Kalman tracker.
//
// Responsibilities: detection validation, track lifecycle (creation,
// coasting through occlusion, pruning), Kalman predict/update with a
// constant-velocity model, and Hungarian detection-to-track assignment.
//
// Dependency rule: vision may not import risk, alert, pipeline, monitor
// or storage. Those layers consume vision types, never the reverse.
// No SQL/database code is allowed in this package.
package vision
