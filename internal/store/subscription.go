package store

import (
	"context"
	"sync"
)

// eventBufferSize bounds undelivered events per subscriber.
const eventBufferSize = 16

// latest fans out a value to subscribers that only care about the most recent one.
type latest[T any] struct {
	// mu serializes publish, subscribe and unsubscribe.
	mu sync.Mutex
	// value is the last published value.
	value T
	// subs are the live subscriber channels, each with capacity one.
	subs map[chan T]struct{}
}

func newLatest[T any](initial T) *latest[T] {
	return &latest[T]{
		value: initial,
		subs:  make(map[chan T]struct{}),
	}
}

// get returns the last published value.
func (l *latest[T]) get() T {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.value
}

// publish stores v and replaces whatever each subscriber has not read yet.
func (l *latest[T]) publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.value = v

	for ch := range l.subs {
		select {
		case <-ch:
		default:
		}

		ch <- v
	}
}

// subscribe returns a channel primed with the current value and closed when ctx is done.
func (l *latest[T]) subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	l.mu.Lock()
	ch <- l.value
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	context.AfterFunc(ctx, func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.subs, ch)
		close(ch)
	})

	return ch
}

// events fans out every published value; a subscriber that falls too far
// behind is dropped and its channel closed.
type events[T any] struct {
	// mu serializes publish, subscribe and unsubscribe.
	mu sync.Mutex
	// subs are the live subscriber channels.
	subs map[chan T]struct{}
}

func newEvents[T any]() *events[T] {
	return &events[T]{subs: make(map[chan T]struct{})}
}

func (e *events[T]) publish(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for ch := range e.subs {
		select {
		case ch <- v:
		default:
			delete(e.subs, ch)
			close(ch)
		}
	}
}

func (e *events[T]) subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, eventBufferSize)

	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	context.AfterFunc(ctx, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	})

	return ch
}
