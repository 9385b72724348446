package scheduler

import (
	"fmt"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
)

// SubRole distinguishes the two positions of a paired slot
type SubRole string

const (
	SubRoleNone    SubRole = ""
	SubRoleLead    SubRole = "lead"
	SubRoleSupport SubRole = "support"
)

// Opposite returns the other paired position
func (s SubRole) Opposite() SubRole {
	switch s {
	case SubRoleLead:
		return SubRoleSupport
	case SubRoleSupport:
		return SubRoleLead
	}
	return SubRoleNone
}

// Recent is one past appearance of a person
type Recent struct {
	Category string
	SubRole  SubRole
	Record   int
	Week     int
	Position int // global week index across all records
	Point    string
}

// PersonHistory is the folded lifetime record of one person
type PersonHistory struct {
	Total       int
	PerCategory map[string]int
	Lead        int
	Support     int
	Recent      []Recent
	Partners    map[string]int
	PointsTaken map[string]int
}

func newPersonHistory() *PersonHistory {
	return &PersonHistory{
		PerCategory: make(map[string]int),
		Partners:    make(map[string]int),
		PointsTaken: make(map[string]int),
	}
}

// LastIn returns the latest position the person held a role of the category
func (p *PersonHistory) LastIn(category string) (int, bool) {
	last, ok := -1, false
	for _, r := range p.Recent {
		if r.Category == category && r.Position >= last {
			last, ok = r.Position, true
		}
	}
	return last, ok
}

// LastSubRole returns the sub-role of the latest paired appearance in the category
func (p *PersonHistory) LastSubRole(category string) SubRole {
	last, sub := -1, SubRoleNone
	for _, r := range p.Recent {
		if r.Category == category && r.SubRole != SubRoleNone && r.Position >= last {
			last, sub = r.Position, r.SubRole
		}
	}
	return sub
}

// History is the aggregated view over archived schedules
type History struct {
	people map[string]*PersonHistory
	// Weeks is the number of archived weeks laid end to end.
	Weeks int
}

// Person returns the history of name. Unknown names get an empty record.
func (h *History) Person(name string) *PersonHistory {
	if h != nil {
		if p, ok := h.people[name]; ok {
			return p
		}
	}
	return newPersonHistory()
}

// Partnered reports whether a and b appear together in any archived paired slot
func (h *History) Partnered(a, b string) bool {
	return h.Person(a).Partners[b] > 0 || h.Person(b).Partners[a] > 0
}

// AggregateHistory folds archived records into per-person statistics.
// Only people present in the given lists are tracked. Records are
// walked in the order given, oldest first.
func AggregateHistory(records []models.HistoryRecord, lists map[string]models.RoleList) (*History, []models.Warning) {
	h := &History{people: make(map[string]*PersonHistory)}
	for _, list := range lists {
		for _, name := range list.Participants {
			if _, ok := h.people[name]; !ok {
				h.people[name] = newPersonHistory()
			}
		}
	}

	var warnings []models.Warning
	for ri, rec := range records {
		if rec.Weeks == nil {
			warnings = append(warnings, models.Warning{
				Kind:    models.WarningMalformedHistory,
				Message: fmt.Sprintf("history record %q has no weeks, skipped", rec.ID),
			})
			continue
		}
		for wi, week := range rec.Weeks {
			h.foldWeek(week, ri, wi, h.Weeks)
			h.Weeks++
		}
	}
	return h, warnings
}

func (h *History) foldWeek(week models.Week, record, weekIdx, pos int) {
	mark := func(name, category string, sub SubRole, point string) {
		p, ok := h.people[name]
		if !ok || name == "" {
			return
		}
		p.Total++
		p.PerCategory[category]++
		switch sub {
		case SubRoleLead:
			p.Lead++
		case SubRoleSupport:
			p.Support++
		}
		p.Recent = append(p.Recent, Recent{
			Category: category,
			SubRole:  sub,
			Record:   record,
			Week:     weekIdx,
			Position: pos,
			Point:    point,
		})
	}

	mark(week.Chairman, CategoryChairman, SubRoleNone, "")
	mark(week.OpeningPrayer, CategoryPrayer, SubRoleNone, "")
	mark(week.ClosingPrayer, CategoryPrayer, SubRoleNone, "")

	for _, section := range week.Sections {
		for _, item := range section.Items {
			category := item.ParticipantList
			if category == "" {
				category = item.Type
			}
			if item.AssignedName != "" {
				lead, support, paired := models.SplitPair(item.AssignedName)
				if paired {
					mark(lead, category, SubRoleLead, item.Point())
					mark(support, category, SubRoleSupport, item.Point())
					if p, ok := h.people[lead]; ok {
						p.Partners[support]++
						p.PointsTaken[item.Point()]++
					}
					if p, ok := h.people[support]; ok {
						p.Partners[lead]++
					}
				} else {
					mark(item.AssignedName, category, SubRoleNone, item.Point())
				}
			}
			if item.AssignedSecondary != "" && item.SecondaryList != "" {
				mark(item.AssignedSecondary, item.SecondaryList, SubRoleNone, "")
			}
		}
	}
}
