package transform

import "golang.org/x/net/html"

// Event names a point in the life of a command at which listeners run.
type Event string

const (
	// BeforeReplace fires with the node that is about to leave the tree.
	BeforeReplace Event = "before-replace"
	// AfterReplace fires with the node that just entered the tree.
	AfterReplace Event = "after-replace"
)

// Listener is called with the node an event is about.
type Listener func(n *html.Node)

// Observable is the registration side of a command's events. Both methods
// return a function that unregisters the listener; calling it more than once
// is harmless.
type Observable interface {
	// On registers fn for every future emission of event.
	On(event Event, fn Listener) (cancel func())
	// Once registers fn for the next emission of event only.
	Once(event Event, fn Listener) (cancel func())
}

type listener struct {
	id   uint64
	fn   Listener
	once bool
}

// Emitter is a minimal, synchronous implementation of Observable. The zero
// value is ready to use.
type Emitter struct {
	next      uint64
	listeners map[Event][]listener
}

// On is a method of the Observable interface.
func (e *Emitter) On(event Event, fn Listener) func() {
	return e.add(event, fn, false)
}

// Once is a method of the Observable interface.
func (e *Emitter) Once(event Event, fn Listener) func() {
	return e.add(event, fn, true)
}

func (e *Emitter) add(event Event, fn Listener, once bool) func() {
	if e.listeners == nil {
		e.listeners = make(map[Event][]listener)
	}
	e.next++
	id := e.next
	e.listeners[event] = append(e.listeners[event], listener{id: id, fn: fn, once: once})
	return func() { e.remove(event, id) }
}

func (e *Emitter) remove(event Event, id uint64) bool {
	ls := e.listeners[event]
	for i, l := range ls {
		if l.id == id {
			e.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls the listeners registered for event, in registration order.
// Listeners registered while emitting only see the next emission.
func (e *Emitter) Emit(event Event, n *html.Node) {
	ls := append([]listener(nil), e.listeners[event]...)
	for _, l := range ls {
		if l.once {
			if !e.remove(event, l.id) {
				continue
			}
		} else if !e.registered(event, l.id) {
			continue
		}
		l.fn(n)
	}
}

func (e *Emitter) registered(event Event, id uint64) bool {
	for _, l := range e.listeners[event] {
		if l.id == id {
			return true
		}
	}
	return false
}

// Count returns how many listeners are registered for event.
func (e *Emitter) Count(event Event) int {
	return len(e.listeners[event])
}
