package game

// Roster maintains the ordered set of players keyed by nickname. Order is
// explicit: a key slice carries insertion order and a map carries the values,
// so the upsert contract does not depend on incidental container ordering.
//
// Upsert moves the updated player to the end of the sequence. The set of
// players is idempotent under repeated upserts; the order is not. Callers
// that display the roster will see repeated updates reorder entries.
// TODO: confirm with the server team whether move-to-end is intended ordering
// or an accident of the historical filter-then-append implementation.
type Roster struct {
	order  []string
	byNick map[string]Player
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{byNick: make(map[string]Player)}
}

// Upsert removes any existing entry with the player's nickname, then appends
// the player at the end.
func (r *Roster) Upsert(p Player) {
	if _, ok := r.byNick[p.Nickname]; ok {
		r.dropKey(p.Nickname)
	}
	r.order = append(r.order, p.Nickname)
	r.byNick[p.Nickname] = p
}

// Remove deletes the entry with the given nickname. Unknown nicknames are
// silently ignored.
func (r *Roster) Remove(nickname string) {
	if _, ok := r.byNick[nickname]; !ok {
		return
	}
	r.dropKey(nickname)
	delete(r.byNick, nickname)
}

// Get returns the player stored under nickname.
func (r *Roster) Get(nickname string) (Player, bool) {
	p, ok := r.byNick[nickname]
	return p, ok
}

// Has reports whether a player with the nickname is present.
func (r *Roster) Has(nickname string) bool {
	_, ok := r.byNick[nickname]
	return ok
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.order)
}

// Players returns the roster in order as a fresh slice.
func (r *Roster) Players() []Player {
	out := make([]Player, 0, len(r.order))
	for _, nick := range r.order {
		out = append(out, r.byNick[nick])
	}
	return out
}

// Replace swaps in a wholesale roster from the server. Duplicate nicknames
// collapse to the last occurrence, keeping the at-most-one-per-nickname
// invariant even on malformed input.
func (r *Roster) Replace(players []Player) {
	r.order = r.order[:0]
	clear(r.byNick)
	for _, p := range players {
		r.Upsert(p)
	}
}

func (r *Roster) dropKey(nickname string) {
	for i, nick := range r.order {
		if nick == nickname {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
