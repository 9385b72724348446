// Package templates builds the standard weekly meeting skeleton.
package templates

import (
	"fmt"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/google/uuid"
)

// List keys referenced by the stock skeleton
const (
	ListAssignment1 = "assignment1"
	ListAssignment2 = "assignment2"
	ListAssignment3 = "assignment3"
	ListStudy       = "puonjruok_muma"
	ListReaders     = "puonjruok_readers"
	ListPaired      = "sisters"
	ListLiving      = "ngimawa"
	ListTalk        = "twak"
)

// DefaultLists returns the empty participant lists the skeleton draws from
func DefaultLists() map[string]models.RoleList {
	return map[string]models.RoleList{
		"chairmen":      {Name: "Chairmen", Participants: []string{}},
		"prayers":       {Name: "Prayers", Participants: []string{}},
		ListAssignment1: {Name: "Assignment 1", Participants: []string{}},
		ListAssignment2: {Name: "Assignment 2", Participants: []string{}},
		ListAssignment3: {Name: "Assignment 3", Participants: []string{}},
		ListPaired:      {Name: "Sisters", Participants: []string{}},
		ListLiving:      {Name: "Living as Christians", Participants: []string{}},
		ListTalk:        {Name: "5 min talk", Participants: []string{}},
		ListStudy:       {Name: "Bible study", Participants: []string{}},
		ListReaders:     {Name: "Bible study readers", Participants: []string{}},
	}
}

func newID() models.ID {
	return models.ID(uuid.NewString())
}

func item(desc, itemType, listKey string) models.Item {
	return models.Item{ID: newID(), Description: desc, Type: itemType, ParticipantList: listKey}
}

// NewWeek builds week n (1-based). When start is non-zero the week is
// dated start + 7*(n-1) days.
func NewWeek(n int, start time.Time) models.Week {
	w := models.Week{
		ID:    newID(),
		Title: fmt.Sprintf("NGECHE %d", n),
		Sections: []models.Section{
			{
				ID:   newID(),
				Name: "Treasures from God's Word",
				Type: models.SectionTreasures,
				Items: []models.Item{
					item("", "regular", ListAssignment1),
					item("Spiritual gems (10 min.)", "regular", ListAssignment2),
					item("Bible reading (4 min.)", "regular", ListAssignment3),
				},
			},
			{
				ID:    newID(),
				Name:  "Apply yourself to the field ministry",
				Type:  models.SectionMinistry,
				Items: []models.Item{},
			},
			{
				ID:   newID(),
				Name: "Living as Christians",
				Type: models.SectionLiving,
				Items: []models.Item{
					{
						ID:              newID(),
						Description:     "Congregation Bible study (30 min.)",
						Type:            models.ItemTypeStudy,
						ParticipantList: ListStudy,
						SecondaryList:   ListReaders,
					},
				},
			},
		},
	}
	if !start.IsZero() {
		d := start.AddDate(0, 0, 7*(n-1))
		w.Date = d.Format("2006-01-02")
		w.DateRange = d.Format("January 2") + "-" + d.AddDate(0, 0, 6).Format("2")
		if d.Month() != d.AddDate(0, 0, 6).Month() {
			w.DateRange = d.Format("January 2") + " - " + d.AddDate(0, 0, 6).Format("January 2")
		}
	}
	return w
}

// PairedItem builds a ministry slot filled by a lead and a support
func PairedItem(desc string) models.Item {
	it := item(desc, "regular", ListPaired)
	it.IsDouble = true
	return it
}

// AddPairedItem appends a paired slot to the ministry section of w,
// creating the section when missing
func AddPairedItem(w models.Week, desc string) models.Week {
	out := w.Clone()
	for i := range out.Sections {
		if out.Sections[i].Type == models.SectionMinistry {
			out.Sections[i].Items = append(out.Sections[i].Items, PairedItem(desc))
			return out
		}
	}
	out.Sections = append(out.Sections, models.Section{
		ID:    newID(),
		Name:  "Apply yourself to the field ministry",
		Type:  models.SectionMinistry,
		Items: []models.Item{PairedItem(desc)},
	})
	return out
}
