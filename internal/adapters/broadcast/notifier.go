// Package broadcast decouples state mutation from snapshot delivery: a
// coalescing notifier signals "mutation completed", and a hub rebuilds the
// snapshot and fans it out to every subscribed observer.
package broadcast

// Notifier coalesces mutation-completed signals into at most one pending
// wakeup. Notify never blocks; back-to-back mutations collapse into a
// single snapshot rebuild.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a coalescing notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify signals that a mutation committed. Safe from any goroutine.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
		// A wakeup is already pending; the next rebuild covers this
		// mutation too.
	}
}

// Wake returns the channel the hub waits on.
func (n *Notifier) Wake() <-chan struct{} {
	return n.ch
}
