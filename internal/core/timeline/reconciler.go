// Package timeline merges history, push events and local submissions into
// one ordered, de-duplicated transcript.
package timeline

import (
	"sync"

	"github.com/neilberkman/proofa/internal/core/models"
)

// Ticket orders the replies of concurrent interact calls. Tickets are handed
// out at submit time and replies are applied in ticket order.
type Ticket uint64

// Reconciler is an append-only log of messages keyed by ID.
//
// Arrival order is visual order. Entries whose ID is already present are
// dropped, which makes every apply idempotent under at-least-once delivery.
type Reconciler struct {
	mu      sync.Mutex
	seeded  bool
	entries []models.Message
	ids     map[string]struct{}

	// Push entries that arrived before the history seed.
	buffered []models.Message

	nextTicket Ticket
	applyNext  Ticket
	resolved   map[Ticket]*models.Message
}

// New creates an empty, unseeded reconciler
func New() *Reconciler {
	return &Reconciler{
		ids:       make(map[string]struct{}),
		applyNext: 1,
		resolved:  make(map[Ticket]*models.Message),
	}
}

// Seed installs the history snapshot (oldest first) and then replays any push
// entries buffered while it was loading. Only the first call has an effect.
// Local entries appended before the seed stay after the history.
// Returns the number of entries added.
func (r *Reconciler) Seed(history []models.Message) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seeded {
		return 0
	}
	r.seeded = true

	early := r.entries
	r.entries = make([]models.Message, 0, len(history)+len(early)+len(r.buffered))
	r.ids = make(map[string]struct{}, cap(r.entries))

	added := 0
	for _, msg := range history {
		if r.appendLocked(msg) {
			added++
		}
	}
	for _, msg := range early {
		r.appendLocked(msg)
	}
	for _, msg := range r.buffered {
		if r.appendLocked(msg) {
			added++
		}
	}
	r.buffered = nil

	return added
}

// Seeded reports whether the history snapshot has been installed.
func (r *Reconciler) Seeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seeded
}

// Apply merges a pushed entry. Before the seed it is buffered. Returns true
// when the visible transcript changed.
func (r *Reconciler) Apply(msg models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		for _, b := range r.buffered {
			if b.ID == msg.ID {
				return false
			}
		}
		r.buffered = append(r.buffered, msg)
		return false
	}
	return r.appendLocked(msg)
}

// AppendOptimistic adds a locally authored entry at the tail immediately.
func (r *Reconciler) AppendOptimistic(msg models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(msg)
}

// Reserve hands out the next reply ticket.
func (r *Reconciler) Reserve() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTicket++
	return r.nextTicket
}

// Resolve records the reply for a ticket. A nil reply releases the ticket
// without adding anything (failed call, or a response with no content).
// Replies are appended once every earlier ticket has resolved, so responses
// land in submission order even when they arrive out of order.
// Returns true when the visible transcript changed.
func (r *Reconciler) Resolve(t Ticket, reply *models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t < r.applyNext {
		return false
	}
	if _, dup := r.resolved[t]; dup {
		return false
	}
	r.resolved[t] = reply

	changed := false
	for {
		msg, ok := r.resolved[r.applyNext]
		if !ok {
			break
		}
		delete(r.resolved, r.applyNext)
		r.applyNext++
		if msg != nil && r.appendLocked(*msg) {
			changed = true
		}
	}
	return changed
}

// InFlight returns how many reserved tickets have not been applied yet.
func (r *Reconciler) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.nextTicket - (r.applyNext - 1))
}

// Messages returns a copy of the transcript.
func (r *Reconciler) Messages() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Message, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of visible entries.
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Contains reports whether an entry with id is visible.
func (r *Reconciler) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

func (r *Reconciler) appendLocked(msg models.Message) bool {
	if msg.ID == "" {
		return false
	}
	if _, exists := r.ids[msg.ID]; exists {
		return false
	}
	r.ids[msg.ID] = struct{}{}
	r.entries = append(r.entries, msg)
	return true
}
