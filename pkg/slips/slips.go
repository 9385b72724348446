// Package slips turns the ministry section of a schedule into printable assignment slips.
package slips

import (
	"fmt"
	"strings"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
)

// DefaultHall is printed on every slip
const DefaultHall = "Main hall"

// NoAssistant marks a slip without a second name
const NoAssistant = "—"

// first ministry part on the printed program
const firstPartNumber = 4

// Slip is one printable assignment notice
type Slip struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Assistant string `json:"assistant"`
	Date      string `json:"date"`
	Part      string `json:"part_number"`
	Hall      string `json:"hall"`
}

// Generate returns one slip per filled item of each week's ministry section
func Generate(weeks []models.Week) []Slip {
	var out []Slip
	for wi, w := range weeks {
		date := w.DateRange
		if date == "" {
			date = w.Title
		}
		if date == "" {
			date = fmt.Sprintf("Week %d", wi+1)
		}

		for _, sec := range w.Sections {
			if sec.Type != models.SectionMinistry {
				continue
			}
			for ii, it := range sec.Items {
				name := strings.TrimSpace(it.AssignedName)
				if name == "" {
					continue
				}
				assistant := NoAssistant
				if lead, support, ok := models.SplitPair(name); ok {
					name, assistant = strings.TrimSpace(lead), strings.TrimSpace(support)
				}
				desc := it.Description
				if desc == "" {
					desc = "Assignment"
				}
				out = append(out, Slip{
					ID:        fmt.Sprintf("%s-%s", w.ID, it.ID),
					Name:      name,
					Assistant: assistant,
					Date:      date,
					Part:      fmt.Sprintf("%d. %s", ii+firstPartNumber, desc),
					Hall:      DefaultHall,
				})
			}
			break
		}
	}
	return out
}
