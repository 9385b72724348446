package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate <input.json>",
	Short: "Fill every role of a schedule",
	Long: `Read weeks, participant_lists, history and rotation_indices, run the
rotation and print the filled weeks with the advanced cursors, warnings,
fairness score and audit findings.`,
	Args: cobra.ExactArgs(1),
	RunE: runRotate,
}

var auditCmd = &cobra.Command{
	Use:   "audit <schedule.json>",
	Short: "Re-check a finished schedule against the rotation rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

var failOnViolation bool

func init() {
	auditCmd.Flags().BoolVar(&failOnViolation, "strict", false, "exit non-zero when violations are found")
	rootCmd.AddCommand(rotateCmd, auditCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	var in models.RotateInput
	if err := readJSON(args[0], &in); err != nil {
		return err
	}
	s, err := newScheduler()
	if err != nil {
		return err
	}

	res, err := s.Rotate(scheduler.Input{
		Weeks:   in.Weeks,
		Lists:   in.ParticipantLists,
		History: in.History,
		Cursors: in.RotationIndices,
	})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
	}

	return writeOutput(cmd, models.RotateResponse{
		Weeks:           res.Weeks,
		RotationIndices: res.Cursors,
		Warnings:        res.Warnings,
		FairnessScore:   res.FairnessScore,
		Violations:      s.Audit(res.Weeks),
	})
}

type auditReport struct {
	Violations       []models.Violation                `json:"violations"`
	AssignmentCounts map[string]models.AssignmentCount `json:"assignment_counts"`
}

func runAudit(cmd *cobra.Command, args []string) error {
	var sched scheduleFile
	if err := readJSON(args[0], &sched); err != nil {
		return err
	}
	s, err := newScheduler()
	if err != nil {
		return err
	}

	report := auditReport{
		Violations:       s.Audit(sched.Weeks),
		AssignmentCounts: scheduler.CountAssignments(sched.Weeks),
	}
	if report.Violations == nil {
		report.Violations = []models.Violation{}
	}
	if err := writeOutput(cmd, report); err != nil {
		return err
	}
	if failOnViolation && len(report.Violations) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d violations\n", len(report.Violations))
		os.Exit(2)
	}
	return nil
}
