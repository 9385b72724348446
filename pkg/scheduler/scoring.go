package scheduler

// Weights tunes the candidate scorer. The defaults keep the component
// magnitudes ordered: fresh > alternation > spacing > variety > novelty.
type Weights struct {
	Fresh             int `mapstructure:"fresh" json:"fresh"`
	Alternation       int `mapstructure:"alternation" json:"alternation"`
	SpacingPerWeek    int `mapstructure:"spacing_per_week" json:"spacing_per_week"`
	SpacingCap        int `mapstructure:"spacing_cap" json:"spacing_cap"`
	LowSpacingWeeks   int `mapstructure:"low_spacing_weeks" json:"low_spacing_weeks"`
	LowSpacingPenalty int `mapstructure:"low_spacing_penalty" json:"low_spacing_penalty"`
	Variety           int `mapstructure:"variety" json:"variety"`
	NewPartner        int `mapstructure:"new_partner" json:"new_partner"`
	RepeatPartner     int `mapstructure:"repeat_partner" json:"repeat_partner"`
	HistoricalLoad    int `mapstructure:"historical_load" json:"historical_load"`
	Rotation          int `mapstructure:"rotation" json:"rotation"`
}

// DefaultWeights returns the stock scoring weights
func DefaultWeights() Weights {
	return Weights{
		Fresh:             10000,
		Alternation:       5000,
		SpacingPerWeek:    10,
		SpacingCap:        52,
		LowSpacingWeeks:   3,
		LowSpacingPenalty: 2000,
		Variety:           100,
		NewPartner:        20,
		RepeatPartner:     30,
		HistoricalLoad:    5,
		Rotation:          1,
	}
}

// Breakdown is the per-component score of a candidate or pair
type Breakdown struct {
	Fresh       int `json:"fresh"`
	Alternation int `json:"alternation"`
	Spacing     int `json:"spacing"`
	Variety     int `json:"variety"`
	Novelty     int `json:"novelty"`
	Balance     int `json:"balance"`
	Rotation    int `json:"rotation"`
	Total       int `json:"total"`
}

func (b Breakdown) add(o Breakdown) Breakdown {
	b.Fresh += o.Fresh
	b.Alternation += o.Alternation
	b.Spacing += o.Spacing
	b.Variety += o.Variety
	b.Novelty += o.Novelty
	b.Balance += o.Balance
	b.Rotation += o.Rotation
	return b.sum()
}

func (b Breakdown) sum() Breakdown {
	b.Total = b.Fresh + b.Alternation + b.Spacing + b.Variety + b.Novelty + b.Balance + b.Rotation
	return b
}

// spacingScore rewards weeks elapsed since the last appearance in category
func (st *runState) spacingScore(name, category string) int {
	w := st.cfg.Weights
	last, ok := st.lastPosition(name, category)
	if !ok {
		return w.SpacingCap * w.SpacingPerWeek
	}
	gap := st.position() - last
	if gap > w.SpacingCap {
		gap = w.SpacingCap
	}
	score := gap * w.SpacingPerWeek
	if gap < w.LowSpacingWeeks {
		score -= w.LowSpacingPenalty
	}
	return score
}

// scorePerson scores name for a slot. sub is SubRoleNone for single slots.
func (st *runState) scorePerson(sl slot, name string, sub SubRole) Breakdown {
	w := st.cfg.Weights
	ph := st.history.Person(name)
	var b Breakdown

	if st.runCount[name] == 0 {
		b.Fresh = w.Fresh
	}

	if sub != SubRoleNone && sl.spec.Alternation {
		switch st.lastSubRole(name, sl.listKey) {
		case sub:
			b.Alternation = -w.Alternation
		case sub.Opposite():
			b.Alternation = w.Alternation
		}
	}

	b.Spacing = st.spacingScore(name, sl.category)

	switch {
	case sub == SubRoleLead && sl.point != "":
		if ph.PointsTaken[sl.point] == 0 {
			b.Variety = w.Variety
		}
	case sub == SubRoleNone:
		if ph.PerCategory[sl.category] == 0 {
			b.Variety = w.Variety
		}
	}

	b.Balance = -w.HistoricalLoad * ph.PerCategory[sl.category]
	switch sub {
	case SubRoleLead:
		b.Balance += w.HistoricalLoad * (ph.Support - ph.Lead)
	case SubRoleSupport:
		b.Balance += w.HistoricalLoad * (ph.Lead - ph.Support)
	}

	n := len(st.lists[sl.listKey])
	b.Rotation = w.Rotation * (n - st.rotationDistance(sl.listKey, name))
	return b.sum()
}

// scorePair combines both person scores with partnership novelty
func (st *runState) scorePair(sl slot, lead, support string) Breakdown {
	w := st.cfg.Weights
	b := st.scorePerson(sl, lead, SubRoleLead).add(st.scorePerson(sl, support, SubRoleSupport))
	times := st.history.Person(lead).Partners[support] + st.tracker(sl.listKey).partners[lead][support]
	if times == 0 {
		b.Novelty = w.NewPartner
	} else {
		b.Novelty = -w.RepeatPartner * times
	}
	return b.sum()
}

// rankValue is what candidates compete on at a tier
func rankValue(b Breakdown, tier Tier) int {
	if tier == TierAnyAvailable {
		return b.Spacing
	}
	return b.Total
}
