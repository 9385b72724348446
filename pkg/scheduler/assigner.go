package scheduler

import (
	"fmt"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"go.uber.org/zap"
)

// Decision records why a slot received its assignee
type Decision struct {
	Week      int       `json:"week"`
	Role      string    `json:"role"`
	ListKey   string    `json:"list_key"`
	Name      string    `json:"name"`
	Secondary string    `json:"secondary,omitempty"`
	Tier      string    `json:"tier"`
	Score     Breakdown `json:"score"`
}

type pick struct {
	lead, support string
	score         Breakdown
	rank          int
}

// better orders picks by rank, then total, then names ascending
func (p pick) better(o pick) bool {
	if p.rank != o.rank {
		return p.rank > o.rank
	}
	if p.score.Total != o.score.Total {
		return p.score.Total > o.score.Total
	}
	if p.lead != o.lead {
		return p.lead < o.lead
	}
	return p.support < o.support
}

// assignWeek fills every slot of in and returns a freshly built week
func (s *Scheduler) assignWeek(in models.Week, st *runState) (models.Week, []Decision, []models.Warning) {
	out := in.Clone()
	var decisions []Decision
	var warnings []models.Warning

	for _, sl := range s.cfg.weekSlots(out) {
		var d Decision
		var w []models.Warning
		if sl.spec.Paired {
			d, w = s.fillPaired(sl, st)
		} else {
			d, w = s.fillSingle(sl, st)
		}
		write(&out, sl, d)
		decisions = append(decisions, d)
		warnings = append(warnings, w...)
	}
	return out, decisions, warnings
}

func write(w *models.Week, sl slot, d Decision) {
	if sl.section < 0 {
		switch sl.spec.Kind {
		case RoleChairman:
			w.Chairman = d.Name
		case RoleOpeningPrayer:
			w.OpeningPrayer = d.Name
		case RoleClosingPrayer:
			w.ClosingPrayer = d.Name
		}
		return
	}
	item := &w.Sections[sl.section].Items[sl.item]
	switch {
	case sl.secondary:
		item.AssignedSecondary = d.Name
	case sl.spec.Paired:
		item.AssignedName = models.JoinPair(d.Name, d.Secondary)
	default:
		item.AssignedName = d.Name
	}
}

func (s *Scheduler) relaxed(sl slot, st *runState, tier Tier, msg string) models.Warning {
	s.logger.Warn("constraint relaxed",
		zap.Int("week", st.week+1),
		zap.String("role", sl.label()),
		zap.String("tier", tier.String()),
	)
	return models.Warning{
		Kind:    models.WarningConstraintRelaxed,
		Week:    st.week + 1,
		Role:    sl.label(),
		Tier:    tier.String(),
		Message: msg,
	}
}

func (s *Scheduler) fillSingle(sl slot, st *runState) (Decision, []models.Warning) {
	var warnings []models.Warning
	tier := TierStrict
	eligible := st.eligibleSingle(sl, tier)
	if len(eligible) == 0 {
		tier = TierEmergency
		eligible = st.eligibleSingle(sl, tier)
		warnings = append(warnings, s.relaxed(sl, st, tier,
			fmt.Sprintf("no one in %q was free for %s, reusing someone already serving this week", sl.listKey, sl.label())))
	}

	var best *pick
	for _, name := range eligible {
		b := st.scorePerson(sl, name, SubRoleNone)
		p := pick{lead: name, score: b, rank: rankValue(b, tier)}
		if best == nil || p.better(*best) {
			best = &p
		}
	}

	d := Decision{Week: st.week + 1, Role: sl.label(), ListKey: sl.listKey, Tier: tier.String()}
	if best == nil {
		return d, warnings
	}
	d.Name, d.Score = best.lead, best.score
	st.mark(sl, best.lead)
	st.advance(sl.listKey, 1)
	s.logger.Debug("slot assigned",
		zap.Int("week", d.Week),
		zap.String("role", d.Role),
		zap.String("name", d.Name),
		zap.Int("score", d.Score.Total),
	)
	return d, warnings
}

func (s *Scheduler) bestPair(sl slot, st *runState, tier Tier) *pick {
	people := st.candidates(sl.listKey)
	var best *pick
	for i := 0; i < len(people); i++ {
		for j := i + 1; j < len(people); j++ {
			// both orientations of the unordered pair compete; the better one represents it
			var pairBest *pick
			for _, o := range [][2]string{{people[i], people[j]}, {people[j], people[i]}} {
				if !st.pairAllowed(sl, o[0], o[1], tier) {
					continue
				}
				b := st.scorePair(sl, o[0], o[1])
				p := pick{lead: o[0], support: o[1], score: b, rank: b.Total}
				if pairBest == nil || p.better(*pairBest) {
					pairBest = &p
				}
			}
			if pairBest == nil {
				continue
			}
			pairBest.rank = rankValue(pairBest.score, tier)
			if best == nil || pairBest.better(*best) {
				best = pairBest
			}
		}
	}
	return best
}

func (s *Scheduler) fillPaired(sl slot, st *runState) (Decision, []models.Warning) {
	d := Decision{Week: st.week + 1, Role: sl.label(), ListKey: sl.listKey}
	var warnings []models.Warning
	t := st.tracker(sl.listKey)

	people := st.candidates(sl.listKey)
	if len(people) < 2 {
		if len(people) == 1 {
			d.Name, d.Tier = people[0], TierEmergency.String()
			warnings = append(warnings, s.relaxed(sl, st, TierEmergency,
				fmt.Sprintf("%q has a single member, %s filled without a partner", sl.listKey, sl.label())))
			t.commit(d.Name, "")
			st.mark(sl, d.Name)
			st.advance(sl.listKey, 1)
		}
		return d, warnings
	}

	for tier := TierStrict; tier <= TierEmergency; tier++ {
		best := s.bestPair(sl, st, tier)
		if best == nil {
			continue
		}
		if tier > TierStrict {
			warnings = append(warnings, s.relaxed(sl, st, tier,
				fmt.Sprintf("%s in %q filled at tier %s", sl.label(), sl.listKey, tier)))
		}
		d.Name, d.Secondary, d.Tier, d.Score = best.lead, best.support, tier.String(), best.score
		t.commit(best.lead, best.support)
		st.mark(sl, best.lead)
		st.mark(sl, best.support)
		st.advance(sl.listKey, 2)
		s.logger.Debug("pair assigned",
			zap.Int("week", d.Week),
			zap.String("role", d.Role),
			zap.String("lead", d.Name),
			zap.String("support", d.Secondary),
			zap.String("tier", d.Tier),
			zap.Int("score", d.Score.Total),
		)
		return d, warnings
	}
	return d, warnings
}
