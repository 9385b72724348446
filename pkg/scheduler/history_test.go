package scheduler

import (
	"testing"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
)

func TestAggregateHistory_Counts(t *testing.T) {
	w := pairedWeek("Initial call", "Return visit")
	w.Chairman = "C1"
	w.OpeningPrayer = "C1"
	w.ClosingPrayer = "Stranger"
	w.Sections[0].Items[0].AssignedName = "S1 / S2"
	w.Sections[0].Items[1].AssignedName = "S3"

	lists := map[string]models.RoleList{
		"chairmen": list("C1"),
		"sisters":  list("S1", "S2", "S3"),
	}
	h, warnings := AggregateHistory([]models.HistoryRecord{record("r", time.Now(), w)}, lists)
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %+v", warnings)
	}

	c1 := h.Person("C1")
	if c1.Total != 2 || c1.PerCategory[CategoryChairman] != 1 || c1.PerCategory[CategoryPrayer] != 1 {
		t.Errorf("Unexpected C1 history: %+v", c1)
	}

	s1, s2 := h.Person("S1"), h.Person("S2")
	if s1.Lead != 1 || s1.Support != 0 || s2.Support != 1 {
		t.Errorf("Expected S1 lead and S2 support, got S1=%+v S2=%+v", s1, s2)
	}
	if !h.Partnered("S1", "S2") || !h.Partnered("S2", "S1") {
		t.Errorf("Expected S1 and S2 registered as partners")
	}
	if s1.PointsTaken["Initial call"] != 1 {
		t.Errorf("Expected lead to take the point, got %v", s1.PointsTaken)
	}
	if s2.PointsTaken["Initial call"] != 0 {
		t.Errorf("Support should not take the point, got %v", s2.PointsTaken)
	}

	s3 := h.Person("S3")
	if s3.Total != 1 || s3.Lead != 0 || s3.Support != 0 {
		t.Errorf("Expected unsplittable paired value to count as single, got %+v", s3)
	}

	if h.Person("Stranger").Total != 0 {
		t.Errorf("Names outside the lists must be ignored")
	}
}

func TestAggregateHistory_OrderAndPositions(t *testing.T) {
	first := models.Week{Chairman: "A"}
	second := models.Week{Chairman: "B"}
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// save times disagree with the slice order; the slice order wins
	records := []models.HistoryRecord{
		record("first", t0.Add(48*time.Hour), first),
		record("second", t0, second, second),
	}
	h, _ := AggregateHistory(records, map[string]models.RoleList{"chairmen": list("A", "B")})

	if h.Weeks != 3 {
		t.Fatalf("Expected 3 history weeks, got %d", h.Weeks)
	}
	if pos, ok := h.Person("A").LastIn(CategoryChairman); !ok || pos != 0 {
		t.Errorf("Expected A last at position 0, got %d (%v)", pos, ok)
	}
	if pos, ok := h.Person("B").LastIn(CategoryChairman); !ok || pos != 2 {
		t.Errorf("Expected B last at position 2, got %d (%v)", pos, ok)
	}
	for _, r := range h.Person("B").Recent {
		if r.Record != 1 {
			t.Errorf("Expected B's weeks tagged with record 1, got %+v", r)
		}
	}
}

func TestAggregateHistory_MalformedRecords(t *testing.T) {
	broken := models.HistoryRecord{ID: "broken"}
	noSections := models.Week{Chairman: "A"}
	h, warnings := AggregateHistory(
		[]models.HistoryRecord{broken, record("ok", time.Time{}, noSections)},
		map[string]models.RoleList{"chairmen": list("A")},
	)
	if len(warnings) != 1 || warnings[0].Kind != models.WarningMalformedHistory {
		t.Fatalf("Expected one malformed record warning, got %+v", warnings)
	}
	if h.Person("A").Total != 1 {
		t.Errorf("Expected sectionless week to still count its chairman")
	}
}

func TestAggregateHistory_LastSubRole(t *testing.T) {
	first := pairedWeek("a")
	first.Sections[0].Items[0].AssignedName = "S1 / S2"
	second := pairedWeek("b")
	second.Sections[0].Items[0].AssignedName = "S3 / S1"

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h, _ := AggregateHistory(
		[]models.HistoryRecord{record("r1", t0, first), record("r2", t0.Add(time.Hour), second)},
		map[string]models.RoleList{"sisters": list("S1", "S2", "S3")},
	)
	if got := h.Person("S1").LastSubRole("sisters"); got != SubRoleSupport {
		t.Errorf("Expected S1 last as support, got %q", got)
	}
	if got := h.Person("S2").LastSubRole("sisters"); got != SubRoleSupport {
		t.Errorf("Expected S2 last as support, got %q", got)
	}
}
