package models

import (
	"strings"
	"time"
)

// PairSeparator joins the lead and support names of a paired slot
const PairSeparator = " / "

// Section types used by the weekly meeting skeleton
const (
	SectionTreasures = "mwandu"
	SectionMinistry  = "tiegri"
	SectionLiving    = "ngimawa"
	SectionCustom    = "custom"
)

// ItemTypeStudy marks the congregation Bible study slot (conductor + reader)
const ItemTypeStudy = "puonjruok"

// RoleList is a named, ordered pool of people eligible for a role
type RoleList struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

// Item is a single role slot inside a section
type Item struct {
	ID                ID     `json:"id"`
	Title             string `json:"title,omitempty"`
	Description       string `json:"description"`
	Type              string `json:"type"`
	ParticipantList   string `json:"participantList"`
	SecondaryList     string `json:"secondaryList,omitempty"`
	AssignedName      string `json:"assignedName"`
	AssignedSecondary string `json:"assignedSecondary"`
	IsDouble          bool   `json:"isDouble"`
}

// Point returns the label used to tell paired-role points apart
func (i Item) Point() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Description
}

// Section groups items under a heading
type Section struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Items []Item `json:"items"`
}

// Week is one meeting occurrence with its week-level roles and sections
type Week struct {
	ID            ID        `json:"id"`
	Title         string    `json:"title"`
	DateRange     string    `json:"dateRange"`
	Date          string    `json:"date,omitempty"` // YYYY-MM-DD, optional
	Chairman      string    `json:"chairman"`
	OpeningSong   string    `json:"openingSong"`
	OpeningPrayer string    `json:"openingPrayer"`
	MiddleSong    string    `json:"middleSong"`
	Sections      []Section `json:"sections"`
	ClosingSong   string    `json:"closingSong"`
	ClosingPrayer string    `json:"closingPrayer"`
}

// Clone returns a deep copy of the week
func (w Week) Clone() Week {
	out := w
	if w.Sections != nil {
		out.Sections = make([]Section, len(w.Sections))
		for i, s := range w.Sections {
			out.Sections[i] = s
			if s.Items != nil {
				out.Sections[i].Items = append([]Item(nil), s.Items...)
			}
		}
	}
	return out
}

// ClearAssignments wipes every assignment field of the week in place
func (w *Week) ClearAssignments() {
	w.Chairman = ""
	w.OpeningPrayer = ""
	w.ClosingPrayer = ""
	for si := range w.Sections {
		for ii := range w.Sections[si].Items {
			w.Sections[si].Items[ii].AssignedName = ""
			w.Sections[si].Items[ii].AssignedSecondary = ""
		}
	}
}

// CloneWeeks deep-copies a slice of weeks
func CloneWeeks(weeks []Week) []Week {
	if weeks == nil {
		return nil
	}
	out := make([]Week, len(weeks))
	for i, w := range weeks {
		out[i] = w.Clone()
	}
	return out
}

// JoinPair builds the stored value of a paired slot
func JoinPair(lead, support string) string {
	if support == "" {
		return lead
	}
	return lead + PairSeparator + support
}

// SplitPair splits a stored paired value. ok is false when the value holds a single name.
func SplitPair(value string) (lead, support string, ok bool) {
	parts := strings.SplitN(value, PairSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return value, "", false
	}
	return parts[0], parts[1], true
}

// AssignmentCount summarizes one person's load inside a saved schedule
type AssignmentCount struct {
	Total       int            `json:"total"`
	Chairman    int            `json:"chairman"`
	Prayer      int            `json:"prayer"`
	Paired      int            `json:"sisterPairs"`
	Lead        int            `json:"firstPosition"`
	Support     int            `json:"secondPosition"`
	Assignments map[string]int `json:"assignments"`
}

// HistoryRecord is an archived, finalized schedule
type HistoryRecord struct {
	ID               string                     `json:"id"`
	Title            string                     `json:"title"`
	SavedAt          time.Time                  `json:"savedAt"`
	Weeks            []Week                     `json:"weeks"`
	ParticipantLists map[string]RoleList        `json:"participantLists,omitempty"`
	RotationState    map[string]int             `json:"rotationState,omitempty"`
	WeekCount        int                        `json:"weekCount"`
	AssignmentCounts map[string]AssignmentCount `json:"assignmentCounts,omitempty"`
}

// WarningKind classifies a non-fatal rotation event
type WarningKind string

const (
	WarningNoWeeks           WarningKind = "no_weeks_to_process"
	WarningConstraintRelaxed WarningKind = "constraint_relaxed"
	WarningMalformedHistory  WarningKind = "malformed_history_record"
)

// Warning is a non-fatal event reported alongside a rotation result
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Week    int         `json:"week,omitempty"` // 1-based, 0 when not tied to a week
	Role    string      `json:"role,omitempty"`
	Tier    string      `json:"tier,omitempty"`
	Message string      `json:"message"`
}

// Violation is a broken schedule rule found by an audit
type Violation struct {
	Rule   string `json:"rule"`
	Week   int    `json:"week,omitempty"`
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// RotateInput is the data structure for the rotation endpoint
type RotateInput struct {
	Weeks            []Week              `json:"weeks"`
	ParticipantLists map[string]RoleList `json:"participant_lists"`
	History          []HistoryRecord     `json:"history"`
	RotationIndices  map[string]int      `json:"rotation_indices"`
}

// RotateResponse is the data structure for the rotation result
type RotateResponse struct {
	Weeks           []Week         `json:"weeks"`
	RotationIndices map[string]int `json:"rotation_indices"`
	Warnings        []Warning      `json:"warnings"`
	FairnessScore   float64        `json:"fairness_score"`
	Violations      []Violation    `json:"violations,omitempty"`
}
