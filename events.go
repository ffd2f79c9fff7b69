package arrowdoc

import (
	"sync"

	"github.com/google/uuid"
)

// Event channels a Collection emits on.
const (
	EventInsert     = "insert"
	EventUpdate     = "update"
	EventDelete     = "delete"
	EventPreInsert  = "pre-insert"
	EventPreUpdate  = "pre-update"
	EventError      = "error"
	EventClose      = "close"
	EventFlushBuf   = "flushbuffer"
	EventWarning    = "warning"
)

// Event is the payload delivered to a listener.
type Event struct {
	Channel string
	Data    any
}

type listener struct {
	token string
	fn    func(Event)
}

// eventBus is a channel -> list of callbacks map with synchronous and
// deferred dispatch. Listener handles are uuid.NewV7() identifiers so they
// can be individually removed with Off.
type eventBus struct {
	mu             sync.Mutex
	listeners      map[string][]listener
	asyncListeners bool
}

func newEventBus(async bool) *eventBus {
	return &eventBus{listeners: make(map[string][]listener), asyncListeners: async}
}

// On registers fn on channel, returning a removable token.
func (b *eventBus) On(channel string, fn func(Event)) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := uuid.Must(uuid.NewV7()).String()
	b.listeners[channel] = append(b.listeners[channel], listener{token: token, fn: fn})
	return token
}

// Off removes a previously registered listener by token.
func (b *eventBus) Off(channel, token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list, ok := b.listeners[channel]
	if !ok {
		return false
	}
	for i, l := range list {
		if l.token == token {
			b.listeners[channel] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// emit dispatches data to every listener on channel. Synchronous listeners
// run inline, as part of the mutation that triggered them; async listeners
// are each started in a fire-and-forget goroutine and emit returns without
// waiting for them, per the asyncListeners setting.
func (b *eventBus) emit(channel string, data any) {
	b.mu.Lock()
	list := make([]listener, len(b.listeners[channel]))
	copy(list, b.listeners[channel])
	async := b.asyncListeners
	b.mu.Unlock()

	evt := Event{Channel: channel, Data: data}
	for _, l := range list {
		if async {
			go l.fn(evt)
		} else {
			l.fn(evt)
		}
	}
}
