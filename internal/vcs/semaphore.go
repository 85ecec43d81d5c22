package vcs

import "runtime"

// heavySemaphore bounds concurrent rev-list/diff subprocesses so the list
// pipeline does not overwhelm the process table or thrash the object
// store's mmap'd pack files. Grounded on spec §5's heavy-ops semaphore and
// the teacher's errgroup.SetLimit(8) pattern in internal/git/load.go.
type heavySemaphore chan struct{}

func newHeavySemaphore() heavySemaphore {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return make(heavySemaphore, n)
}

func (s heavySemaphore) acquire() { s <- struct{}{} }
func (s heavySemaphore) release() { <-s }
