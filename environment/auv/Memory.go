package auv

import "gonum.org/v1/gonum/spatial/r2"

// Memory is the retrievable record of a finished episode, snapshotted
// on Reset so that reporting and plotting never need access to live
// environment internals.
type Memory struct {
	// Path holds a dense sampling of the path the vessel was meant to
	// follow
	Path []r2.Vec

	// PathTaken holds the track the vessel actually realized
	PathTaken []r2.Vec

	// Obstacles holds the obstacle set of the episode
	Obstacles []Obstacle
}
