package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the workspace-scoped storage adapter
type Store struct {
	DB *gorm.DB
}

// NewStore wraps an open database
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func fromJSON(j datatypes.JSON, v any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, v)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ── participant lists ──

// Lists returns every list of a workspace keyed by list key
func (s *Store) Lists(ctx context.Context, workspace string) (map[string]models.RoleList, error) {
	var rows []ParticipantList
	if err := s.DB.WithContext(ctx).Where("workspace = ?", workspace).Order("key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.RoleList, len(rows))
	for _, r := range rows {
		var people []string
		if err := fromJSON(r.Participants, &people); err != nil {
			return nil, fmt.Errorf("list %s: %w", r.Key, err)
		}
		if people == nil {
			people = []string{}
		}
		out[r.Key] = models.RoleList{Name: r.Name, Participants: people}
	}
	return out, nil
}

func listRow(workspace, key string, list models.RoleList) (ParticipantList, error) {
	people := list.Participants
	if people == nil {
		people = []string{}
	}
	j, err := toJSON(people)
	if err != nil {
		return ParticipantList{}, err
	}
	return ParticipantList{Workspace: workspace, Key: key, Name: list.Name, Participants: j}, nil
}

// PutList creates or replaces one list
func (s *Store) PutList(ctx context.Context, workspace, key string, list models.RoleList) error {
	row, err := listRow(workspace, key, list)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "participants", "updated_at"}),
	}).Create(&row).Error
}

// ReplaceLists swaps the whole list set of a workspace in one transaction
func (s *Store) ReplaceLists(ctx context.Context, workspace string, lists map[string]models.RoleList) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace = ?", workspace).Delete(&ParticipantList{}).Error; err != nil {
			return err
		}
		for key, list := range lists {
			row, err := listRow(workspace, key, list)
			if err != nil {
				return err
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteList removes one list
func (s *Store) DeleteList(ctx context.Context, workspace, key string) error {
	res := s.DB.WithContext(ctx).Where("workspace = ? AND key = ?", workspace, key).Delete(&ParticipantList{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ── rotation cursors ──

// Cursors returns the saved cursors, empty when none were saved
func (s *Store) Cursors(ctx context.Context, workspace string) (map[string]int, error) {
	var row RotationState
	err := s.DB.WithContext(ctx).Where("workspace = ?", workspace).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	cursors := map[string]int{}
	if err := fromJSON(row.Cursors, &cursors); err != nil {
		return nil, err
	}
	return cursors, nil
}

// SaveCursors upserts the cursors of a workspace
func (s *Store) SaveCursors(ctx context.Context, workspace string, cursors map[string]int) error {
	j, err := toJSON(cursors)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace"}},
		DoUpdates: clause.AssignmentColumns([]string{"cursors", "updated_at"}),
	}).Create(&RotationState{Workspace: workspace, Cursors: j}).Error
}

// ── draft schedule ──

// DraftWeeks returns the draft of a workspace, empty when none exists
func (s *Store) DraftWeeks(ctx context.Context, workspace string) ([]models.Week, error) {
	var row Draft
	err := s.DB.WithContext(ctx).Where("workspace = ?", workspace).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Week{}, nil
	}
	if err != nil {
		return nil, err
	}
	weeks := []models.Week{}
	if err := fromJSON(row.Weeks, &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

// SaveDraft upserts the draft of a workspace
func (s *Store) SaveDraft(ctx context.Context, workspace string, weeks []models.Week) error {
	if weeks == nil {
		weeks = []models.Week{}
	}
	j, err := toJSON(weeks)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace"}},
		DoUpdates: clause.AssignmentColumns([]string{"weeks", "updated_at"}),
	}).Create(&Draft{Workspace: workspace, Weeks: j}).Error
}

// DeleteDraft clears the draft of a workspace
func (s *Store) DeleteDraft(ctx context.Context, workspace string) error {
	return s.DB.WithContext(ctx).Where("workspace = ?", workspace).Delete(&Draft{}).Error
}

// ── history ──

func recordRow(workspace string, rec *models.HistoryRecord) (ScheduleRecord, error) {
	row := ScheduleRecord{
		ID:        rec.ID,
		Workspace: workspace,
		Title:     rec.Title,
		SavedAt:   rec.SavedAt,
		WeekCount: len(rec.Weeks),
	}
	var err error
	if row.Weeks, err = toJSON(rec.Weeks); err != nil {
		return row, err
	}
	if row.ParticipantLists, err = toJSON(rec.ParticipantLists); err != nil {
		return row, err
	}
	if row.RotationState, err = toJSON(rec.RotationState); err != nil {
		return row, err
	}
	if row.AssignmentCounts, err = toJSON(rec.AssignmentCounts); err != nil {
		return row, err
	}
	return row, nil
}

func (r ScheduleRecord) toModel() (models.HistoryRecord, error) {
	rec := models.HistoryRecord{
		ID:        r.ID,
		Title:     r.Title,
		SavedAt:   r.SavedAt,
		WeekCount: r.WeekCount,
	}
	for _, f := range []struct {
		j datatypes.JSON
		v any
	}{
		{r.Weeks, &rec.Weeks},
		{r.ParticipantLists, &rec.ParticipantLists},
		{r.RotationState, &rec.RotationState},
		{r.AssignmentCounts, &rec.AssignmentCounts},
	} {
		if err := fromJSON(f.j, f.v); err != nil {
			return rec, fmt.Errorf("record %s: %w", r.ID, err)
		}
	}
	return rec, nil
}

// History returns the archived schedules of a workspace, oldest first
func (s *Store) History(ctx context.Context, workspace string) ([]models.HistoryRecord, error) {
	var rows []ScheduleRecord
	if err := s.DB.WithContext(ctx).Where("workspace = ?", workspace).Order("saved_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.HistoryRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// HistoryRecord fetches one archived schedule
func (s *Store) HistoryRecord(ctx context.Context, workspace, id string) (*models.HistoryRecord, error) {
	var row ScheduleRecord
	if err := s.DB.WithContext(ctx).Where("workspace = ? AND id = ?", workspace, id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	rec, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateHistory archives rec, filling in its id and save time when blank
func (s *Store) CreateHistory(ctx context.Context, workspace string, rec *models.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	rec.WeekCount = len(rec.Weeks)
	row, err := recordRow(workspace, rec)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Create(&row).Error
}

// UpdateHistory overwrites an archived schedule in place
func (s *Store) UpdateHistory(ctx context.Context, workspace string, rec *models.HistoryRecord) error {
	rec.WeekCount = len(rec.Weeks)
	row, err := recordRow(workspace, rec)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&ScheduleRecord{}).
		Where("workspace = ? AND id = ?", workspace, rec.ID).
		Updates(map[string]any{
			"title":             row.Title,
			"week_count":        row.WeekCount,
			"weeks":             row.Weeks,
			"participant_lists": row.ParticipantLists,
			"rotation_state":    row.RotationState,
			"assignment_counts": row.AssignmentCounts,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHistory removes an archived schedule
func (s *Store) DeleteHistory(ctx context.Context, workspace, id string) error {
	res := s.DB.WithContext(ctx).Where("workspace = ? AND id = ?", workspace, id).Delete(&ScheduleRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Snapshot is everything a rotation of a workspace reads
type Snapshot struct {
	Draft   []models.Week
	Lists   map[string]models.RoleList
	History []models.HistoryRecord
	Cursors map[string]int
}

// Snapshot loads the draft, lists, history and cursors of a workspace concurrently
func (s *Store) Snapshot(ctx context.Context, workspace string) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Draft, err = s.DraftWeeks(gctx, workspace)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Lists, err = s.Lists(gctx, workspace)
		return err
	})
	g.Go(func() error {
		var err error
		snap.History, err = s.History(gctx, workspace)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Cursors, err = s.Cursors(gctx, workspace)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
