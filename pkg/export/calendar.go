package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	ics "github.com/arran4/golang-ical"
)

const dateLayout = "2006-01-02"

// Calendar renders one all-day event per dated week. Weeks without a
// date are skipped.
func Calendar(weeks []models.Week, name string) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//meeting-rotation-api//schedule//EN")

	for wi, w := range weeks {
		if w.Date == "" {
			continue
		}
		day, err := time.Parse(dateLayout, w.Date)
		if err != nil {
			return "", fmt.Errorf("week %d: bad date %q: %w", wi+1, w.Date, err)
		}

		uid := string(w.ID)
		if uid == "" {
			uid = fmt.Sprintf("week-%d", wi+1)
		}
		event := cal.AddEvent(uid + "@meeting-rotation-api")
		event.SetDtStampTime(day)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))

		summary := w.Title
		if name != "" {
			summary = name + ": " + w.Title
		}
		event.SetSummary(summary)

		var lines []string
		for _, r := range Rows([]models.Week{w}) {
			if r.Name == "" {
				continue
			}
			line := r.Part + ": " + r.Name
			if r.Secondary != "" {
				line += models.PairSeparator + r.Secondary
			}
			lines = append(lines, line)
		}
		event.SetDescription(strings.Join(lines, "\n"))
	}
	return cal.Serialize(), nil
}
