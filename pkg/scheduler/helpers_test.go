package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
)

func list(names ...string) models.RoleList {
	return models.RoleList{Participants: names}
}

func people(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i+1)
	}
	return out
}

func bareWeeks(n int) []models.Week {
	weeks := make([]models.Week, n)
	for i := range weeks {
		weeks[i] = models.Week{ID: models.ID(fmt.Sprint(i + 1)), Title: fmt.Sprintf("Week %d", i+1)}
	}
	return weeks
}

func pairedItem(point string) models.Item {
	return models.Item{Description: point, Type: "regular", ParticipantList: "sisters", IsDouble: true}
}

func pairedWeek(points ...string) models.Week {
	items := make([]models.Item, len(points))
	for i, p := range points {
		items[i] = pairedItem(p)
	}
	return models.Week{
		Title:    "Week",
		Sections: []models.Section{{Name: "Ministry", Type: models.SectionMinistry, Items: items}},
	}
}

func record(id string, at time.Time, weeks ...models.Week) models.HistoryRecord {
	return models.HistoryRecord{ID: id, SavedAt: at, Weeks: weeks, WeekCount: len(weeks)}
}

func hasWarning(ws []models.Warning, kind models.WarningKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
