// Package main hosts the roadmap CLI entrypoint and command graph.
//
// Every command loads the module catalog and build manifest, reconciles them
// with the remote snapshot served by roadmapd, and renders or mutates the
// merged view. Mutating commands wait for the background snapshot write
// before exiting and fail with "unsaved changes" when it did not land.
package main
