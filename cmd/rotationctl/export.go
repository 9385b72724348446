package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/export"
	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/slips"
	"github.com/arnavshah/meeting-rotation-api/pkg/templates"
	"github.com/spf13/cobra"
)

var (
	xlsxPath     string
	icsPath      string
	calendarName string

	templateWeeks  int
	templateStart  string
	templatePaired int
)

var exportCmd = &cobra.Command{
	Use:   "export <schedule.json>",
	Short: "Write the schedule as a workbook, a calendar feed or printable slips",
	Long: `Without --xlsx or --ics the assignment slips are printed.

Example:
  rotationctl export filled.json --xlsx schedule.xlsx --ics schedule.ics --name "North hall"`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an empty draft built from the standard meeting skeleton",
	Args:  cobra.NoArgs,
	RunE:  runTemplate,
}

func init() {
	exportCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an .xlsx workbook to this path")
	exportCmd.Flags().StringVar(&icsPath, "ics", "", "write an iCalendar feed to this path")
	exportCmd.Flags().StringVar(&calendarName, "name", "", "prefix for calendar event titles")

	templateCmd.Flags().IntVar(&templateWeeks, "weeks", 4, "number of weeks")
	templateCmd.Flags().StringVar(&templateStart, "start", "", "date of the first week, YYYY-MM-DD")
	templateCmd.Flags().IntVar(&templatePaired, "paired", 3, "paired ministry parts per week")

	rootCmd.AddCommand(exportCmd, templateCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var sched scheduleFile
	if err := readJSON(args[0], &sched); err != nil {
		return err
	}
	slipList := slips.Generate(sched.Weeks)

	if xlsxPath == "" && icsPath == "" {
		if slipList == nil {
			slipList = []slips.Slip{}
		}
		return writeOutput(cmd, map[string][]slips.Slip{"slips": slipList})
	}

	if xlsxPath != "" {
		buf, err := export.Workbook(sched.Weeks, slipList)
		if errors.Is(err, export.ErrNoWeeks) {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxPath, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", xlsxPath)
	}
	if icsPath != "" {
		feed, err := export.Calendar(sched.Weeks, calendarName)
		if err != nil {
			return err
		}
		if err := os.WriteFile(icsPath, []byte(feed), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", icsPath)
	}
	return nil
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	if templateWeeks < 1 || templatePaired < 0 {
		return fmt.Errorf("--weeks must be positive and --paired not negative")
	}
	var start time.Time
	if templateStart != "" {
		var err error
		if start, err = time.Parse("2006-01-02", templateStart); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
	}

	weeks := make([]models.Week, 0, templateWeeks)
	for n := 1; n <= templateWeeks; n++ {
		w := templates.NewWeek(n, start)
		for i := 0; i < templatePaired; i++ {
			w = templates.AddPairedItem(w, fmt.Sprintf("Ministry part %d", i+1))
		}
		weeks = append(weeks, w)
	}
	return writeOutput(cmd, models.RotateInput{
		Weeks:            weeks,
		ParticipantLists: templates.DefaultLists(),
		RotationIndices:  map[string]int{},
	})
}
