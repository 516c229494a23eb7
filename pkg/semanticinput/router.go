package semanticinput

import (
	"sync"
	"time"
)

// ConflictPolicy decides which event wins when more than one device
// produces a semantic event within the same conflict window.
type ConflictPolicy int

const (
	PolicyLastWins ConflictPolicy = iota
	PolicyFirstWins
	PolicyPriorityBased
	PolicyMultiConfirm
)

const defaultConflictWindow = 150 * time.Millisecond

// pending tracks same-window candidates awaiting resolution.
type pending struct {
	opened    time.Time
	events    []SemanticEvent
	confirmed map[DeviceClass]bool
}

// Router buffers raw device events into a conflict-resolution window and
// emits the resolved SemanticEvent stream, the same bounded-queue +
// type-switch-dispatch shape as a GUI input router generalized to
// semantic-level events instead of pointer/key events.
type Router struct {
	mu       sync.Mutex
	policy   ConflictPolicy
	window   time.Duration
	now      func() time.Time
	pendingByKind map[SemanticEventKind]*pending
	out      []SemanticEvent
	maxOut   int
}

// NewRouter builds a Router using the given conflict policy and output
// bound maxOut; the conflict window is defaultConflictWindow.
func NewRouter(policy ConflictPolicy, maxOut int) *Router {
	return &Router{
		policy:        policy,
		window:        defaultConflictWindow,
		now:           time.Now,
		pendingByKind: make(map[SemanticEventKind]*pending),
		maxOut:        maxOut,
	}
}

// Feed submits one raw semantic event candidate. Depending on the
// policy, it resolves immediately (LastWins/FirstWins) or is buffered
// until the window closes (PriorityBased) or until every expected device
// confirms (MultiConfirm, resolved externally via Confirm).
func (r *Router) Feed(evt SemanticEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.policy {
	case PolicyLastWins:
		r.emit(evt)
	case PolicyFirstWins:
		p, exists := r.pendingByKind[evt.Kind]
		if exists && r.now().Sub(p.opened) < r.window {
			return // first already won within the window
		}
		r.pendingByKind[evt.Kind] = &pending{opened: r.now()}
		r.emit(evt)
	case PolicyPriorityBased:
		r.feedPriority(evt)
	case PolicyMultiConfirm:
		r.feedMultiConfirm(evt)
	}
}

func (r *Router) feedPriority(evt SemanticEvent) {
	p, exists := r.pendingByKind[evt.Kind]
	if !exists || r.now().Sub(p.opened) >= r.window {
		p = &pending{opened: r.now()}
		r.pendingByKind[evt.Kind] = p
	}
	p.events = append(p.events, evt)
}

func (r *Router) feedMultiConfirm(evt SemanticEvent) {
	p, exists := r.pendingByKind[evt.Kind]
	if !exists || r.now().Sub(p.opened) >= r.window {
		p = &pending{opened: r.now(), confirmed: make(map[DeviceClass]bool)}
		r.pendingByKind[evt.Kind] = p
	}
	p.events = append(p.events, evt)
	p.confirmed[evt.Source] = true
}

// Tick resolves any PriorityBased windows that have closed; callers
// invoke this once per tick (the session loop's cooperative tick).
func (r *Router) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.policy != PolicyPriorityBased {
		return
	}
	for kind, p := range r.pendingByKind {
		if r.now().Sub(p.opened) < r.window {
			continue
		}
		winner := highestPriority(p.events)
		if winner != nil {
			r.emit(*winner)
		}
		delete(r.pendingByKind, kind)
	}
}

func highestPriority(events []SemanticEvent) *SemanticEvent {
	if len(events) == 0 {
		return nil
	}
	best := events[0]
	bestRank := priorityOrder[best.Source]
	for _, e := range events[1:] {
		if rank := priorityOrder[e.Source]; rank < bestRank {
			best, bestRank = e, rank
		}
	}
	return &best
}

// Confirmed reports, for MultiConfirm, whether every requiredDevices
// class has confirmed a given kind within the window, emitting the
// event if so.
func (r *Router) Confirmed(kind SemanticEventKind, requiredDevices []DeviceClass) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.pendingByKind[kind]
	if !exists || r.now().Sub(p.opened) >= r.window {
		return false
	}
	for _, d := range requiredDevices {
		if !p.confirmed[d] {
			return false
		}
	}
	if len(p.events) > 0 {
		r.emit(p.events[len(p.events)-1])
	}
	delete(r.pendingByKind, kind)
	return true
}

func (r *Router) emit(evt SemanticEvent) {
	r.out = append(r.out, evt)
	if len(r.out) > r.maxOut {
		r.out = r.out[len(r.out)-r.maxOut:]
	}
}

// Drain returns and clears every resolved event accumulated so far.
func (r *Router) Drain() []SemanticEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.out
	r.out = nil
	return out
}
