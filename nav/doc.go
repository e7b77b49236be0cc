// Package nav is the asynchronous navigation layer.
//
// A NavMesh is built once from a tile grid: one node per walkable tile,
// linked to its walkable 4-neighbours. Search runs A* over a mesh and is a
// pure function of (mesh, start, goal). A WorkerPool runs searches on a fixed
// set of worker goroutines and hands back Pending handles; a Controller per
// agent issues requests through the pool, adopts settled results on a later
// tick and steers the agent along the waypoints.
//
// Meshes are immutable, so workers share the caller's mesh pointer instead of
// copying it per request. "No path" is an empty slice, never an error.
// Worker faults, timeouts and pool disposal fail only the requests they
// concern, and nothing is retried.
package nav
