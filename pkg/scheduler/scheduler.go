package scheduler

import (
	"sort"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"go.uber.org/zap"
)

// Config names the lists the engine treats specially and carries the scoring weights
type Config struct {
	ChairmenList string   `mapstructure:"chairmen_list"`
	PrayersList  string   `mapstructure:"prayers_list"`
	TalkList     string   `mapstructure:"talk_list"`
	PairedLists  []string `mapstructure:"paired_lists"`

	// MaxPairedAppearances caps lead+support turns per person per run.
	MaxPairedAppearances int     `mapstructure:"max_paired_appearances"`
	Weights              Weights `mapstructure:"weights"`
}

// DefaultConfig returns the list keys used by the stock meeting template
func DefaultConfig() Config {
	return Config{
		ChairmenList:         "chairmen",
		PrayersList:          "prayers",
		TalkList:             "twak",
		PairedLists:          []string{"sisters"},
		MaxPairedAppearances: 2,
		Weights:              DefaultWeights(),
	}
}

// Scheduler runs rotations. It holds no per-run state and is safe to reuse.
type Scheduler struct {
	cfg    Config
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPairedAppearances <= 0 {
		cfg.MaxPairedAppearances = 2
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	return &Scheduler{cfg: cfg, logger: logger}
}

// Config returns the configuration the scheduler runs with
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Input is everything one rotation run considers
type Input struct {
	Weeks   []models.Week
	Lists   map[string]models.RoleList
	History []models.HistoryRecord
	Cursors map[string]int
}

// Result is the output of one rotation run
type Result struct {
	Weeks         []models.Week
	Cursors       map[string]int
	Warnings      []models.Warning
	Decisions     []Decision
	NoWeeks       bool
	FairnessScore float64
}

// RequiredLists returns the list keys a set of weeks needs, sorted
func (s *Scheduler) RequiredLists(weeks []models.Week) []string {
	need := map[string]bool{s.cfg.ChairmenList: true, s.cfg.PrayersList: true}
	for _, w := range weeks {
		for _, sec := range w.Sections {
			for _, it := range sec.Items {
				if it.ParticipantList != "" {
					need[it.ParticipantList] = true
				}
				if it.SecondaryList != "" && !it.IsDouble {
					need[it.SecondaryList] = true
				}
			}
		}
	}
	keys := make([]string, 0, len(need))
	for k := range need {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckLists reports every required list that is absent or empty
func (s *Scheduler) CheckLists(weeks []models.Week, lists map[string]models.RoleList) error {
	var missing []string
	for _, key := range s.RequiredLists(weeks) {
		if len(lists[key].Participants) == 0 {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingListError{Keys: missing}
	}
	return nil
}

// Rotate clears and re-fills every week of the input. The input is never
// modified; on error nothing is produced.
func (s *Scheduler) Rotate(in Input) (*Result, error) {
	cursors := s.normalizeCursors(in.Cursors, in.Lists)

	if len(in.Weeks) == 0 {
		s.logger.Info("rotation skipped, no weeks")
		return &Result{
			Weeks:         []models.Week{},
			Cursors:       cursors,
			NoWeeks:       true,
			FairnessScore: 100,
			Warnings: []models.Warning{{
				Kind:    models.WarningNoWeeks,
				Message: "no weeks to process",
			}},
		}, nil
	}

	weeks := NormalizePairing(in.Weeks, s.cfg.PairedLists)
	for i := range weeks {
		weeks[i].ClearAssignments()
	}

	if err := s.CheckLists(weeks, in.Lists); err != nil {
		return nil, err
	}

	history, warnings := AggregateHistory(in.History, in.Lists)

	lists := make(map[string][]string, len(in.Lists))
	for k, l := range in.Lists {
		lists[k] = l.Participants
	}
	st := newRunState(s.cfg, history, lists, cursors)

	res := &Result{Weeks: make([]models.Week, 0, len(weeks)), Cursors: cursors}
	for i, w := range weeks {
		st.beginWeek(i)
		filled, decisions, ws := s.assignWeek(w, st)
		res.Weeks = append(res.Weeks, filled)
		res.Decisions = append(res.Decisions, decisions...)
		warnings = append(warnings, ws...)
	}
	res.Warnings = warnings
	res.FairnessScore = FairnessScore(st.runCount, participantsOf(in.Lists, s.RequiredLists(weeks)))

	s.logger.Info("rotation complete",
		zap.Int("weeks", len(res.Weeks)),
		zap.Int("history_weeks", history.Weeks),
		zap.Int("warnings", len(res.Warnings)),
		zap.Float64("fairness", res.FairnessScore),
	)
	return res, nil
}

// normalizeCursors copies cursors, wrapping known lists and defaulting missing ones to 0
func (s *Scheduler) normalizeCursors(in map[string]int, lists map[string]models.RoleList) map[string]int {
	out := make(map[string]int, len(in)+len(lists))
	for k, v := range in {
		out[k] = v
	}
	for k, l := range lists {
		n := len(l.Participants)
		if n == 0 {
			if _, ok := out[k]; !ok {
				out[k] = 0
			}
			continue
		}
		out[k] = ((out[k] % n) + n) % n
	}
	return out
}

func participantsOf(lists map[string]models.RoleList, keys []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range keys {
		for _, name := range lists[k].Participants {
			if name != "" && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
