package main

import (
	"flag"

	"github.com/ThomasNLarsen/gym-auv-3D/examples"
)

func main() {
	seed := flag.Uint64("seed", 192382, "random seed for the episode")
	plot := flag.String("plot", "pathfollow.png", "file to plot the episode to")
	flag.Parse()

	examples.PathFollow(*seed, *plot)
}
