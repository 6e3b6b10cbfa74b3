// Package tasks runs named background goroutines that must not take the
// daemon down when they fail.
package tasks

import "sync"

// Group tracks detached tasks. The zero value is not usable, construct
// it with NewGroup.
type Group struct {
	log Logger
	wg  sync.WaitGroup
}

func NewGroup(log Logger) *Group {
	g := &Group{}

	if log != nil {
		g.log = log
	} else {
		g.log = noopLogger{}
	}

	return g
}

// Go runs fn on its own goroutine. Errors and panics are logged and
// contained instead of propagated.
func (g *Group) Go(name string, fn func() error) {
	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		defer func() {
			if r := recover(); r != nil {
				g.log.Errorf("Task %v panicked: %v", name, r)
			}
		}()

		if err := fn(); err != nil {
			g.log.Errorf("Task %v failed: %v", name, err)
		}
	}()
}

// Wait blocks until every task has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
