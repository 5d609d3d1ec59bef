package event

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Token identifies one subscription. The zero Token is never issued.
type Token uint64

type subscription struct {
	token   Token
	fn      any
	removed bool
}

// Bus is a per-actor synchronous event bus. Handlers of one event type run
// in subscription order on the publishing goroutine. Accessed only from the
// simulation loop, so no locks.
type Bus struct {
	subs   map[reflect.Type][]*subscription
	index  map[Token]reflect.Type
	next   Token
	closed bool
	log    *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		subs:  make(map[reflect.Type][]*subscription),
		index: make(map[Token]reflect.Type),
		log:   log,
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T and returns the
// token needed to remove it. Subscribing on a closed bus returns 0.
func Subscribe[T any](b *Bus, fn func(T)) Token {
	if b.closed || fn == nil {
		return 0
	}
	t := typeOf[T]()
	b.next++
	tok := b.next
	b.subs[t] = append(b.subs[t], &subscription{token: tok, fn: fn})
	b.index[tok] = t
	return tok
}

// Unsubscribe removes the handler behind tok. Unknown tokens are ignored.
// Safe to call from inside a handler: the removed handler is skipped for the
// rest of the current dispatch.
func (b *Bus) Unsubscribe(tok Token) {
	t, ok := b.index[tok]
	if !ok {
		return
	}
	delete(b.index, tok)
	list := b.subs[t]
	for i, s := range list {
		if s.token != tok {
			continue
		}
		s.removed = true
		kept := make([]*subscription, 0, len(list)-1)
		kept = append(kept, list[:i]...)
		kept = append(kept, list[i+1:]...)
		b.subs[t] = kept
		return
	}
}

// Publish delivers ev to every current subscriber of T, in order.
// A panicking handler is logged and does not stop the others.
func Publish[T any](b *Bus, ev T) {
	if b.closed {
		return
	}
	list := b.subs[typeOf[T]()]
	if len(list) == 0 {
		return
	}
	// Unsubscribe replaces the slice rather than mutating it, so ranging over
	// the captured header is a stable snapshot.
	for _, s := range list {
		if s.removed {
			continue
		}
		b.call(s, func() { s.fn.(func(T))(ev) })
	}
}

func (b *Bus) call(s *subscription, invoke func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.Uint64("token", uint64(s.token)),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	invoke()
}

// Count returns the number of live subscriptions for T.
func Count[T any](b *Bus) int {
	return len(b.subs[typeOf[T]()])
}

// Len returns the number of live subscriptions across all event types.
func (b *Bus) Len() int {
	return len(b.index)
}

// Close drops every subscription. Later Publish and Subscribe calls are no-ops.
func (b *Bus) Close() {
	for _, list := range b.subs {
		for _, s := range list {
			s.removed = true
		}
	}
	b.subs = make(map[reflect.Type][]*subscription)
	b.index = make(map[Token]reflect.Type)
	b.closed = true
}
