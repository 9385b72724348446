package scheduler

// Tier is a constraint level. Each tier after TierStrict drops one more rule.
type Tier int

const (
	TierStrict Tier = iota
	// TierRepeatSubRole allows a second lead or support turn within the run.
	TierRepeatSubRole
	// TierIgnoreAlternation drops the cross-run lead/support flip.
	TierIgnoreAlternation
	// TierAnyAvailable drops the appearance cap and partner history; ranks by spacing.
	TierAnyAvailable
	// TierEmergency also drops the one-role-per-week rule.
	TierEmergency
)

var tierNames = map[Tier]string{
	TierStrict:            "strict",
	TierRepeatSubRole:     "repeat_sub_role",
	TierIgnoreAlternation: "ignore_alternation",
	TierAnyAvailable:      "any_available",
	TierEmergency:         "emergency",
}

func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return "unknown"
}

// candidates returns the distinct names of a list in list order
func (st *runState) candidates(listKey string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range st.lists[listKey] {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// eligibleSingle applies the hard rules of a single-person slot
func (st *runState) eligibleSingle(sl slot, tier Tier) []string {
	var out []string
	for _, name := range st.candidates(sl.listKey) {
		if st.allowSingle(sl, name, tier) {
			out = append(out, name)
		}
	}
	return out
}

func (st *runState) allowSingle(sl slot, name string, tier Tier) bool {
	if tier < TierEmergency {
		if !sl.spec.WeekExempt {
			if _, used := st.weekUsed[name]; used {
				return false
			}
		}
		for _, other := range sl.spec.DistinctFrom {
			if st.weekRole[other] == name {
				return false
			}
		}
	}
	return true
}

// canFill reports whether name may take sub in a paired slot at the tier
func (st *runState) canFill(sl slot, name string, sub SubRole, tier Tier) bool {
	t := st.tracker(sl.listKey)
	if tier < TierEmergency {
		if _, used := st.weekUsed[name]; used {
			return false
		}
	}
	if tier < TierAnyAvailable && t.appearances[name] >= st.cfg.MaxPairedAppearances {
		return false
	}
	if tier == TierStrict && t.hasSub(name, sub) {
		return false
	}
	if tier < TierIgnoreAlternation && sl.spec.Alternation && t.appearances[name] == 0 {
		if st.history.Person(name).LastSubRole(sl.listKey) == sub {
			return false
		}
	}
	return true
}

// pairAllowed applies the pair-level rules on top of canFill
func (st *runState) pairAllowed(sl slot, lead, support string, tier Tier) bool {
	if lead == support {
		return false
	}
	if !st.canFill(sl, lead, SubRoleLead, tier) || !st.canFill(sl, support, SubRoleSupport, tier) {
		return false
	}
	if tier < TierAnyAvailable {
		if st.tracker(sl.listKey).used[pairKey(lead, support)] {
			return false
		}
		if st.history.Partnered(lead, support) {
			return false
		}
	}
	return true
}
