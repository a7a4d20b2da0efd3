package session

import (
	"sync"
	"time"
)

type ChangeKind string

// Kinds mirror the auth events a client listens for. A feed observes its own
// sign-in as INITIAL_SESSION, since it is opened with the token it follows.
const (
	InitialSession ChangeKind = "INITIAL_SESSION"
	SignedOut      ChangeKind = "SIGNED_OUT"
	TokenRefreshed ChangeKind = "TOKEN_REFRESHED"
)

type Change struct {
	Kind    ChangeKind `json:"event"`
	Session *Session   `json:"session"`
	At      time.Time  `json:"at"`

	// token limits delivery to the feed following that token id; empty
	// reaches every feed of the user. rotate moves the feed to a new id.
	token  string
	rotate string
}

const subscriberBuffer = 8

type subscriber struct {
	ch    chan Change
	token string
}

// Hub fans session changes out to per-user subscribers, each following one
// token. A subscriber that falls behind loses changes instead of blocking
// Publish.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]*subscriber
	next   uint64
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]*subscriber)}
}

// Subscribe returns the change feed of the session tokenID belongs to and a
// func that ends it. Calling the func more than once is fine.
func (h *Hub) Subscribe(userID, tokenID string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]*subscriber)
	}
	h.subs[userID][id] = &subscriber{ch: ch, token: tokenID}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subs[userID][id]; ok {
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(s.ch)
		}
	}
}

// Publish returns how many subscribers received the change.
func (h *Hub) Publish(userID string, c Change) int {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for _, s := range h.subs[userID] {
		if c.token != "" && s.token != c.token {
			continue
		}
		if c.rotate != "" {
			s.token = c.rotate
		}
		select {
		case s.ch <- c:
			sent++
		default:
		}
	}
	return sent
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Close ends every feed. Later subscriptions get an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for uid, m := range h.subs {
		for _, s := range m {
			close(s.ch)
		}
		delete(h.subs, uid)
	}
}
