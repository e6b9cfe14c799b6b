package tasks

import "sync"

// Foreground is the context presenter callbacks run on.
type Foreground interface {
	// Post schedules fn to run on the foreground. It must not block on fn.
	Post(fn func())
}

// ForegroundFunc adapts a function to [Foreground].
type ForegroundFunc func(fn func())

func (f ForegroundFunc) Post(fn func()) { f(fn) }

// Loop is a [Foreground] that runs posted callbacks one at a time, in order, on its own goroutine.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewLoop starts a loop. Call [Loop.Close] to stop it.
func NewLoop() *Loop {
	l := &Loop{done: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

// Post queues fn. Callbacks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

// Flush blocks until every callback posted before it has run.
func (l *Loop) Flush() {
	flushed := make(chan struct{})
	l.Post(func() { close(flushed) })
	select {
	case <-flushed:
	case <-l.done:
	}
}

// Close runs the callbacks already queued and stops the loop.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Signal()
	l.mu.Unlock()
	<-l.done
}
