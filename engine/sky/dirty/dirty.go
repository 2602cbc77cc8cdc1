package dirty

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sky/engine/sky/config"
)

// Hasher produces the content digest of one parameter group.
// *config.Config satisfies it.
type Hasher interface {
	ComputeHash(g config.HashGroup) config.Hash
}

// Tracker remembers the last accepted digest of every hash group and reports
// whether the newest digest differs from it.
type Tracker interface {
	// Update recomputes the current digest of every group from h.
	//
	// Parameters:
	//   - h: the parameter source to digest
	Update(h Hasher)

	// IsDirty reports whether group g needs to be recomputed.
	// A group that was never accepted, or that was invalidated, is always dirty.
	//
	// Parameters:
	//   - g: the hash group to check
	//
	// Returns:
	//   - bool: true if the current digest differs from the accepted one
	IsDirty(g config.HashGroup) bool

	// Accept commits the current digest of g as its baseline.
	// Call it only after the GPU work for g has been submitted.
	//
	// Parameters:
	//   - g: the hash group to accept
	Accept(g config.HashGroup)

	// Invalidate forces g to report dirty until the next Accept.
	//
	// Parameters:
	//   - g: the hash group to invalidate
	Invalidate(g config.HashGroup)

	// Current returns the digest of g computed by the latest Update.
	Current(g config.HashGroup) config.Hash

	// Accepted returns the baseline digest of g and whether one exists.
	Accepted(g config.HashGroup) (config.Hash, bool)
}

type groupState struct {
	current  config.Hash
	accepted config.Hash
	valid    bool
}

type tracker struct {
	mu     *sync.Mutex
	groups [config.GroupCount]groupState
}

var _ Tracker = &tracker{}

// NewTracker creates a Tracker in which every group starts dirty.
//
// Returns:
//   - Tracker: the new tracker
func NewTracker() Tracker {
	return &tracker{mu: &sync.Mutex{}}
}

func (t *tracker) Update(h Hasher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for g := range t.groups {
		t.groups[g].current = h.ComputeHash(config.HashGroup(g))
	}
}

func (t *tracker) IsDirty(g config.HashGroup) bool {
	if !validGroup(g) {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.groups[g]
	return !s.valid || s.current != s.accepted
}

func (t *tracker) Accept(g config.HashGroup) {
	if !validGroup(g) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups[g].accepted = t.groups[g].current
	t.groups[g].valid = true
}

func (t *tracker) Invalidate(g config.HashGroup) {
	if !validGroup(g) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups[g].valid = false
}

func (t *tracker) Current(g config.HashGroup) config.Hash {
	if !validGroup(g) {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.groups[g].current
}

func (t *tracker) Accepted(g config.HashGroup) (config.Hash, bool) {
	if !validGroup(g) {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.groups[g].accepted, t.groups[g].valid
}

func validGroup(g config.HashGroup) bool {
	return g >= 0 && int(g) < config.GroupCount
}
