package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	applogger "github.com/arnavshah/meeting-rotation-api/pkg/logger"
	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const Version = "3.0.0"

var (
	configPath string
	logLevel   string
	outputFmt  string
	outputFile string
)

var rootCmd = &cobra.Command{
	Use:   "rotationctl",
	Short: "Offline tools for meeting rotation schedules",
	Long: `rotationctl fills, audits and exports meeting schedules stored as JSON.

Input files use the same shapes as the HTTP API. "-" reads from stdin.

Examples:
  # Build a four week draft with three paired parts each
  rotationctl template --weeks 4 --start 2026-03-02 --paired 3 > draft.json

  # Fill it (draft.json plus participant_lists, history, rotation_indices)
  rotationctl rotate input.json --output filled.json

  # Check a finished schedule and print a YAML report
  rotationctl audit filled.json --format yaml

  # Spreadsheet and calendar exports
  rotationctl export filled.json --xlsx schedule.xlsx --ics schedule.ics`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with a rotation section")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "format", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to a file instead of stdout")
}

// rotationConfig reads the rotation section of --config over the defaults
func rotationConfig() (scheduler.Config, error) {
	cfg := scheduler.DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := v.UnmarshalKey("rotation", &cfg); err != nil {
		return cfg, fmt.Errorf("decode rotation config: %w", err)
	}
	return cfg, nil
}

func newScheduler() (*scheduler.Scheduler, error) {
	cfg, err := rotationConfig()
	if err != nil {
		return nil, err
	}
	logger, err := applogger.New(config.LogConfig{Level: logLevel, Format: "console"})
	if err != nil {
		return nil, err
	}
	return scheduler.NewScheduler(cfg, logger), nil
}

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// scheduleFile matches anything carrying weeks: a draft, a rotation
// result or a history record
type scheduleFile struct {
	Weeks []models.Week `json:"weeks"`
}

// encode renders v as JSON or as YAML with the JSON field names
func encode(v any, format string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return append(data, '\n'), nil
	case "yaml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, err
		}
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeOutput(cmd *cobra.Command, v any) error {
	data, err := encode(v, outputFmt)
	if err != nil {
		return err
	}
	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
