package scheduler

import (
	"fmt"
	"sort"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
)

// Audit rule identifiers
const (
	RuleDoubleBooking  = "double_booking"
	RuleLeadQuota      = "lead_quota"
	RuleSupportQuota   = "support_quota"
	RulePairedTotal    = "paired_total"
	RulePairRepeat     = "pair_repeat"
	RuleClosingOpening = "closing_equals_opening"
	RuleUnfilled       = "unfilled"
)

// Audit re-checks a finished schedule against the rotation rules
func (s *Scheduler) Audit(weeks []models.Week) []models.Violation {
	var out []models.Violation
	paired := make(map[string]bool)
	for _, k := range s.cfg.PairedLists {
		paired[k] = true
	}

	type pairStats struct{ lead, support, total map[string]int }
	perList := make(map[string]*pairStats)
	pairsSeen := make(map[string]int)

	for wi, w := range weeks {
		weekNo := wi + 1
		roles := make(map[string][]string)
		hold := func(name, role string) {
			if name != "" {
				roles[name] = append(roles[name], role)
			}
		}
		hold(w.Chairman, RoleChairman.String())
		if w.Chairman == "" {
			out = append(out, models.Violation{Rule: RuleUnfilled, Week: weekNo, Detail: "chairman"})
		}
		if w.OpeningPrayer == "" {
			out = append(out, models.Violation{Rule: RuleUnfilled, Week: weekNo, Detail: "opening_prayer"})
		}
		if w.ClosingPrayer == "" {
			out = append(out, models.Violation{Rule: RuleUnfilled, Week: weekNo, Detail: "closing_prayer"})
		}
		if w.OpeningPrayer != "" && w.OpeningPrayer == w.ClosingPrayer {
			out = append(out, models.Violation{Rule: RuleClosingOpening, Week: weekNo, Name: w.OpeningPrayer,
				Detail: "closing prayer repeats opening prayer"})
		}

		for _, sec := range w.Sections {
			for _, it := range sec.Items {
				if it.ParticipantList == "" {
					continue
				}
				if it.SecondaryList != "" && !it.IsDouble && it.AssignedSecondary == "" {
					out = append(out, models.Violation{Rule: RuleUnfilled, Week: weekNo, Detail: it.SecondaryList})
				}
				if it.AssignedName == "" {
					out = append(out, models.Violation{Rule: RuleUnfilled, Week: weekNo, Detail: it.ParticipantList})
					continue
				}
				if !(it.IsDouble && paired[it.ParticipantList]) {
					hold(it.AssignedName, it.ParticipantList)
					hold(it.AssignedSecondary, it.SecondaryList)
					continue
				}
				ps := perList[it.ParticipantList]
				if ps == nil {
					ps = &pairStats{lead: map[string]int{}, support: map[string]int{}, total: map[string]int{}}
					perList[it.ParticipantList] = ps
				}
				lead, support, ok := models.SplitPair(it.AssignedName)
				hold(lead, it.ParticipantList)
				ps.lead[lead]++
				ps.total[lead]++
				if !ok {
					continue
				}
				hold(support, it.ParticipantList)
				ps.support[support]++
				ps.total[support]++
				key := pairKey(lead, support)
				pairsSeen[key]++
				if pairsSeen[key] == 2 {
					out = append(out, models.Violation{Rule: RulePairRepeat, Week: weekNo, Name: lead + models.PairSeparator + support,
						Detail: "pair already used in this schedule"})
				}
			}
		}

		names := make([]string, 0, len(roles))
		for n := range roles {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if len(roles[n]) > 1 {
				out = append(out, models.Violation{Rule: RuleDoubleBooking, Week: weekNo, Name: n,
					Detail: fmt.Sprintf("holds %d roles: %v", len(roles[n]), roles[n])})
			}
		}
	}

	listKeys := make([]string, 0, len(perList))
	for k := range perList {
		listKeys = append(listKeys, k)
	}
	sort.Strings(listKeys)
	for _, k := range listKeys {
		ps := perList[k]
		out = append(out, quota(ps.lead, 1, RuleLeadQuota, k)...)
		out = append(out, quota(ps.support, 1, RuleSupportQuota, k)...)
		out = append(out, quota(ps.total, s.cfg.MaxPairedAppearances, RulePairedTotal, k)...)
	}
	return out
}

func quota(counts map[string]int, limit int, rule, listKey string) []models.Violation {
	names := make([]string, 0, len(counts))
	for n, c := range counts {
		if c > limit {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	var out []models.Violation
	for _, n := range names {
		out = append(out, models.Violation{Rule: rule, Name: n,
			Detail: fmt.Sprintf("%d turns in %q, limit %d", counts[n], listKey, limit)})
	}
	return out
}
