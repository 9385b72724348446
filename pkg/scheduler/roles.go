package scheduler

import (
	"sort"
	"strconv"
	"strings"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
)

// RoleKind enumerates the role categories the engine knows how to fill
type RoleKind int

const (
	RoleChairman RoleKind = iota
	RoleStudyConductor
	RoleStudyReader
	RoleLiving
	RoleTalk
	RoleAssignment
	RolePaired
	RoleOpeningPrayer
	RoleClosingPrayer
)

// RoleSpec carries the constraint set of a role kind as data
type RoleSpec struct {
	Kind     RoleKind
	Name     string
	Priority int
	// Paired roles need a lead and a support drawn from the same list.
	Paired bool
	// WeekExempt roles may reuse someone already serving that week.
	WeekExempt bool
	// Alternation tracks lead/support flipping between runs.
	Alternation bool
	// DistinctFrom names roles of the same week whose holder is excluded.
	DistinctFrom []RoleKind
}

var roleSpecs = []RoleSpec{
	{Kind: RoleChairman, Name: "chairman", Priority: 10},
	{Kind: RoleStudyConductor, Name: "study_conductor", Priority: 20},
	{Kind: RoleStudyReader, Name: "study_reader", Priority: 25},
	{Kind: RoleLiving, Name: "living", Priority: 30},
	{Kind: RoleTalk, Name: "talk", Priority: 40},
	{Kind: RoleAssignment, Name: "assignment", Priority: 50},
	{Kind: RolePaired, Name: "paired", Priority: 90, Paired: true, Alternation: true},
	{Kind: RoleOpeningPrayer, Name: "opening_prayer", Priority: 100, WeekExempt: true},
	{Kind: RoleClosingPrayer, Name: "closing_prayer", Priority: 110, WeekExempt: true, DistinctFrom: []RoleKind{RoleOpeningPrayer}},
}

// Spec returns the declared constraints of a role kind
func Spec(kind RoleKind) RoleSpec {
	for _, s := range roleSpecs {
		if s.Kind == kind {
			return s
		}
	}
	return RoleSpec{Kind: kind, Name: "unknown", Priority: 1 << 20}
}

func (k RoleKind) String() string {
	return Spec(k).Name
}

// Categories used for spacing and history counters of week-level roles
const (
	CategoryChairman = "chairman"
	CategoryPrayer   = "prayer"
)

// slot is one fillable unit of a week, resolved against the role table
type slot struct {
	spec      RoleSpec
	listKey   string
	category  string
	order     int // sub-order inside a priority band
	seq       int // document order
	section   int // -1 for week-level roles
	item      int
	secondary bool
	point     string
}

func (sl slot) label() string {
	if sl.section < 0 {
		return sl.spec.Name
	}
	return sl.spec.Name + ":" + sl.listKey
}

// assignmentOrder extracts N from list keys like "assignment3"
func assignmentOrder(listKey string) int {
	const prefix = "assignment"
	if !strings.HasPrefix(listKey, prefix) {
		return 1000
	}
	n, err := strconv.Atoi(listKey[len(prefix):])
	if err != nil {
		return 1000
	}
	return n
}

// classifyItem resolves the role kind of a section item
func (cfg Config) classifyItem(section models.Section, item models.Item) RoleKind {
	switch {
	case item.IsDouble:
		return RolePaired
	case item.Type == models.ItemTypeStudy:
		return RoleStudyConductor
	case section.Type == models.SectionLiving:
		return RoleLiving
	case item.ParticipantList == cfg.TalkList:
		return RoleTalk
	default:
		return RoleAssignment
	}
}

// weekSlots lists the fillable slots of a week in priority order
func (cfg Config) weekSlots(week models.Week) []slot {
	var slots []slot
	seq := 0
	add := func(sl slot) {
		sl.seq = seq
		seq++
		slots = append(slots, sl)
	}

	add(slot{spec: Spec(RoleChairman), listKey: cfg.ChairmenList, category: CategoryChairman, section: -1})

	for si, section := range week.Sections {
		for ii, item := range section.Items {
			if item.ParticipantList == "" {
				continue
			}
			kind := cfg.classifyItem(section, item)
			sl := slot{
				spec:     Spec(kind),
				listKey:  item.ParticipantList,
				category: item.ParticipantList,
				section:  si,
				item:     ii,
				point:    item.Point(),
			}
			if kind == RoleAssignment {
				sl.order = assignmentOrder(item.ParticipantList)
			}
			add(sl)
			if item.SecondaryList != "" && !item.IsDouble {
				add(slot{
					spec:      Spec(RoleStudyReader),
					listKey:   item.SecondaryList,
					category:  item.SecondaryList,
					section:   si,
					item:      ii,
					secondary: true,
				})
			}
		}
	}

	add(slot{spec: Spec(RoleOpeningPrayer), listKey: cfg.PrayersList, category: CategoryPrayer, section: -1})
	add(slot{spec: Spec(RoleClosingPrayer), listKey: cfg.PrayersList, category: CategoryPrayer, section: -1})

	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.spec.Priority != b.spec.Priority {
			return a.spec.Priority < b.spec.Priority
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.seq < b.seq
	})
	return slots
}

// NormalizePairing returns copies of weeks whose IsDouble flags match
// whether each item draws from a paired list
func NormalizePairing(weeks []models.Week, pairedLists []string) []models.Week {
	paired := make(map[string]bool, len(pairedLists))
	for _, k := range pairedLists {
		paired[k] = true
	}
	out := models.CloneWeeks(weeks)
	for wi := range out {
		for si := range out[wi].Sections {
			items := out[wi].Sections[si].Items
			for ii := range items {
				items[ii].IsDouble = paired[items[ii].ParticipantList]
			}
		}
	}
	return out
}
