package scheduler

import "sort"

// pairTracker holds the per-run bookkeeping of one paired list
type pairTracker struct {
	lead        map[string]bool
	support     map[string]bool
	appearances map[string]int
	lastSub     map[string]SubRole
	used        map[string]bool
	partners    map[string]map[string]int
}

func newPairTracker() *pairTracker {
	return &pairTracker{
		lead:        make(map[string]bool),
		support:     make(map[string]bool),
		appearances: make(map[string]int),
		lastSub:     make(map[string]SubRole),
		used:        make(map[string]bool),
		partners:    make(map[string]map[string]int),
	}
}

// pairKey is the order-independent identity of a pair
func pairKey(a, b string) string {
	names := []string{a, b}
	sort.Strings(names)
	return names[0] + "|" + names[1]
}

func (t *pairTracker) commit(lead, support string) {
	t.lead[lead] = true
	t.appearances[lead]++
	t.lastSub[lead] = SubRoleLead
	if support == "" {
		return
	}
	t.support[support] = true
	t.appearances[support]++
	t.lastSub[support] = SubRoleSupport
	t.used[pairKey(lead, support)] = true
	for _, p := range [][2]string{{lead, support}, {support, lead}} {
		if t.partners[p[0]] == nil {
			t.partners[p[0]] = make(map[string]int)
		}
		t.partners[p[0]][p[1]]++
	}
}

func (t *pairTracker) hasSub(name string, sub SubRole) bool {
	if sub == SubRoleLead {
		return t.lead[name]
	}
	return t.support[name]
}

// runState is the accumulator threaded through one rotation run
type runState struct {
	cfg     Config
	history *History
	lists   map[string][]string

	week     int // 0-based index of the week being filled
	weekUsed map[string]string
	weekRole map[RoleKind]string

	runCount map[string]int
	lastSeen map[string]map[string]int // category -> name -> position
	cursors  map[string]int
	pairs    map[string]*pairTracker
}

func newRunState(cfg Config, h *History, lists map[string][]string, cursors map[string]int) *runState {
	return &runState{
		cfg:      cfg,
		history:  h,
		lists:    lists,
		runCount: make(map[string]int),
		lastSeen: make(map[string]map[string]int),
		cursors:  cursors,
		pairs:    make(map[string]*pairTracker),
	}
}

func (st *runState) beginWeek(idx int) {
	st.week = idx
	st.weekUsed = make(map[string]string)
	st.weekRole = make(map[RoleKind]string)
}

// position is the global week index of the week being filled
func (st *runState) position() int {
	return st.history.Weeks + st.week
}

func (st *runState) tracker(listKey string) *pairTracker {
	t, ok := st.pairs[listKey]
	if !ok {
		t = newPairTracker()
		st.pairs[listKey] = t
	}
	return t
}

// lastPosition merges run and archived recency for a category
func (st *runState) lastPosition(name, category string) (int, bool) {
	if pos, ok := st.lastSeen[category][name]; ok {
		return pos, true
	}
	return st.history.Person(name).LastIn(category)
}

// lastSubRole is the latest paired position of name in the list, run first
func (st *runState) lastSubRole(name, listKey string) SubRole {
	if sub, ok := st.tracker(listKey).lastSub[name]; ok {
		return sub
	}
	return st.history.Person(name).LastSubRole(listKey)
}

func (st *runState) mark(sl slot, name string) {
	if name == "" {
		return
	}
	if !sl.spec.WeekExempt {
		st.weekUsed[name] = sl.label()
	}
	if sl.section < 0 {
		st.weekRole[sl.spec.Kind] = name
	}
	st.runCount[name]++
	if st.lastSeen[sl.category] == nil {
		st.lastSeen[sl.category] = make(map[string]int)
	}
	st.lastSeen[sl.category][name] = st.position()
}

func (st *runState) advance(listKey string, steps int) {
	n := len(st.lists[listKey])
	if n == 0 {
		return
	}
	st.cursors[listKey] = (st.cursors[listKey] + steps) % n
}

// rotationDistance is how far idx sits ahead of the list cursor
func (st *runState) rotationDistance(listKey, name string) int {
	people := st.lists[listKey]
	n := len(people)
	for i, p := range people {
		if p == name {
			return (i - st.cursors[listKey] + n) % n
		}
	}
	return n
}
