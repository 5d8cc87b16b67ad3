package sim

// slot holds one body of the arena. Retired slots keep their last body but are
// never reactivated, so an ID maps to at most one body for the whole run.
type slot struct {
	body   Body
	active bool
}

// registry is the active set: an arena of slots indexed by ID with a liveness bit.
type registry struct {
	slots  []slot
	active int
}

func newRegistry(capacity int) *registry {
	return &registry{slots: make([]slot, 0, capacity)}
}

// add registers a new body and returns its ID.
func (r *registry) add(spec BodySpec) ID {
	id := ID(len(r.slots))
	r.slots = append(r.slots, slot{
		body:   Body{ID: id, Radius: spec.Radius, Orbit: spec.Orbit},
		active: true,
	})
	r.active++
	return id
}

// get returns the body for id if it is active.
func (r *registry) get(id ID) (Body, bool) {
	if !r.isActive(id) {
		return Body{}, false
	}
	return r.slots[id].body, true
}

func (r *registry) isActive(id ID) bool {
	return id >= 0 && int(id) < len(r.slots) && r.slots[id].active
}

// replace swaps in new elements for an active body, keeping its ID.
func (r *registry) replace(b Body) {
	if r.isActive(b.ID) {
		r.slots[b.ID].body = b
	}
}

// retire marks id inactive permanently.
func (r *registry) retire(id ID) {
	if r.isActive(id) {
		r.slots[id].active = false
		r.active--
	}
}

// size returns the number of IDs ever issued.
func (r *registry) size() int {
	return len(r.slots)
}

// each calls fn for every active body in ascending ID order.
func (r *registry) each(fn func(b Body)) {
	for i := range r.slots {
		if r.slots[i].active {
			fn(r.slots[i].body)
		}
	}
}
