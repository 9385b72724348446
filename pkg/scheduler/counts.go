package scheduler

import "github.com/arnavshah/meeting-rotation-api/pkg/models"

// CountAssignments summarizes per-person load over a set of weeks, in the
// shape archived with each history record
func CountAssignments(weeks []models.Week) map[string]models.AssignmentCount {
	counts := make(map[string]models.AssignmentCount)
	bump := func(name string, f func(c *models.AssignmentCount)) {
		if name == "" {
			return
		}
		c := counts[name]
		if c.Assignments == nil {
			c.Assignments = make(map[string]int)
		}
		c.Total++
		f(&c)
		counts[name] = c
	}

	for _, w := range weeks {
		bump(w.Chairman, func(c *models.AssignmentCount) { c.Chairman++ })
		bump(w.OpeningPrayer, func(c *models.AssignmentCount) { c.Prayer++ })
		bump(w.ClosingPrayer, func(c *models.AssignmentCount) { c.Prayer++ })
		for _, sec := range w.Sections {
			for _, it := range sec.Items {
				if it.AssignedName != "" {
					if lead, support, ok := models.SplitPair(it.AssignedName); ok && it.IsDouble {
						bump(lead, func(c *models.AssignmentCount) { c.Paired++; c.Lead++ })
						bump(support, func(c *models.AssignmentCount) { c.Paired++; c.Support++ })
					} else {
						bump(it.AssignedName, func(c *models.AssignmentCount) { c.Assignments[it.ParticipantList]++ })
					}
				}
				if it.AssignedSecondary != "" {
					bump(it.AssignedSecondary, func(c *models.AssignmentCount) { c.Assignments[it.SecondaryList]++ })
				}
			}
		}
	}
	return counts
}
