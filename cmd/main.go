package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryan-cox/choreledger/internal/clipboard"
	"github.com/bryan-cox/choreledger/internal/clock"
	"github.com/bryan-cox/choreledger/internal/config"
	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/recurrence"
	"github.com/bryan-cox/choreledger/internal/schedule"
	"github.com/bryan-cox/choreledger/internal/store"
)

// --- Cobra Command Definitions ---

var (
	// Used for flags.
	filePath    string
	storeDriver string
	configPath  string
	todayFlag   string
	logLevel    string
	copyOutput  bool

	showAll      bool
	includeToday bool
	freqFlags    []string
	dateFlags    []string
	dryRun       bool

	addID      string
	addName    string
	addMinutes float64
	addOnce    string
	addReason  string

	remindOnce     bool
	remindSchedule string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:               "choreledger",
		Short:             "A CLI tool to track recurring chores and see which ones are due.",
		Long:              `ChoreLedger keeps a list of recurring chores, tells you which ones are due, spreads them over a two-week plan and reports how much work they add up to.`,
		PersistentPreRunE: setupLogging,
	}

	// dueCmd represents the due command
	dueCmd = &cobra.Command{
		Use:   "due",
		Short: "List chores that are due.",
		Long:  `Lists every chore that currently needs attention. With --all, upcoming and retired chores are listed too.`,
		Run:   runDueCommand,
	}

	// planCmd represents the plan command
	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show the two-week plan.",
		Long:  `Shows on which days of this week and next week each recurring chore falls. Overrides let you try a different frequency or completion date without saving it.`,
		Run:   runPlanCommand,
	}

	// statsCmd represents the stats command
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Summarize the daily workload.",
		Long:  `Computes average minutes per day, chores per day and average frequency of all recurring chores.`,
		Run:   runStatsCommand,
	}

	// dispatchCmd represents the dispatch command
	dispatchCmd = &cobra.Command{
		Use:   "dispatch",
		Short: "Stagger chores so they do not all fall on the same day.",
		Long:  `Rewrites the last completion date of every chore so that chores sharing a frequency become due on different days.`,
		Run:   runDispatchCommand,
	}

	// doneCmd represents the done command
	doneCmd = &cobra.Command{
		Use:   "done [task-id]...",
		Short: "Mark chores as done today.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDoneCommand,
	}

	// addCmd represents the add command
	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a chore.",
		Long:  `Adds a chore. --once takes a recurrence such as "day", "week", "3-days", "2-months" or "yes" for a one-time chore.`,
		Run:   runAddCommand,
	}

	// modifyCmd represents the modify command
	modifyCmd = &cobra.Command{
		Use:   "modify",
		Short: "Save frequency and completion date changes.",
		Long:  `Saves frequency (--freq id=days) and completion date (--date id=YYYY-MM-DD) changes. Either every change is saved or the command fails.`,
		Run:   runModifyCommand,
	}

	// remindCmd represents the remind command
	remindCmd = &cobra.Command{
		Use:   "remind",
		Short: "Send progress to the configured webhook on a schedule.",
		Run:   runRemindCommand,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Errors from commands are handled by slog, so we just exit.
		os.Exit(1)
	}
}

func init() {
	// Add persistent flags to the root command (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "", "Path to the task store (overrides store.path).")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Store driver: yaml, sqlite or memory (overrides store.driver).")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/choreledger/config.yml).")
	rootCmd.PersistentFlags().StringVar(&todayFlag, "today", "", "Evaluate as of this date (YYYY-MM-DD) instead of now.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	rootCmd.PersistentFlags().BoolVar(&copyOutput, "copy", false, "Also copy the output to the clipboard.")

	dueCmd.Flags().BoolVar(&showAll, "all", false, "Also list upcoming and retired chores.")
	dueCmd.Flags().BoolVar(&includeToday, "include-today", false, "Count chores completed today as due.")

	planCmd.Flags().StringArrayVar(&freqFlags, "freq", nil, "Frequency override id=days (repeatable).")
	planCmd.Flags().StringArrayVar(&dateFlags, "date", nil, "Completion date override id=YYYY-MM-DD (repeatable).")

	statsCmd.Flags().StringArrayVar(&freqFlags, "freq", nil, "Frequency override id=days (repeatable).")

	dispatchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the new dates without saving them.")

	addCmd.Flags().StringVar(&addID, "id", "", "Task id (generated when empty).")
	addCmd.Flags().StringVar(&addName, "name", "", "Task name.")
	addCmd.Flags().Float64Var(&addMinutes, "minutes", 0, "Estimated minutes.")
	addCmd.Flags().StringVar(&addOnce, "once", "week", "Recurrence.")
	addCmd.Flags().StringVar(&addReason, "reason", "", "Why this chore matters.")
	_ = addCmd.MarkFlagRequired("name")

	modifyCmd.Flags().StringArrayVar(&freqFlags, "freq", nil, "Frequency override id=days (repeatable).")
	modifyCmd.Flags().StringArrayVar(&dateFlags, "date", nil, "Completion date override id=YYYY-MM-DD (repeatable).")

	remindCmd.Flags().BoolVar(&remindOnce, "once", false, "Send one update and exit.")
	remindCmd.Flags().StringVar(&remindSchedule, "schedule", "", "Cron schedule (overrides remind.schedule).")

	// Add subcommands to the root command
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(modifyCmd)
	rootCmd.AddCommand(remindCmd)
}

// --- Main Application Entry Point ---

func main() {
	// Setup structured JSON logger for errors.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	Execute()
}

// --- Helper Functions ---

func setupLogging(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if filePath != "" {
		cfg.Store.Path = filePath
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	return store.Open(cfg.StoreSettings(), slog.Default())
}

func currentClock() (clock.Clock, error) {
	return clock.ParseFixed(todayFlag)
}

func now() (time.Time, error) {
	c, err := currentClock()
	if err != nil {
		return time.Time{}, err
	}
	return c.Now(), nil
}

// parseOverrides parses repeated id=days and id=YYYY-MM-DD flags.
func parseOverrides(freqs, dates []string) (model.Overrides, error) {
	overrides := model.Overrides{
		Frequency: model.FrequencyOverrides{},
		Dates:     model.DateOverrides{},
	}
	for _, f := range freqs {
		id, value, ok := strings.Cut(f, "=")
		if !ok || id == "" {
			return overrides, fmt.Errorf("invalid frequency override %q, use id=days", f)
		}
		days, err := strconv.Atoi(value)
		if err != nil || !recurrence.Encodable(days) {
			return overrides, fmt.Errorf("invalid frequency override %q, days must be between 1 and %d", f, recurrence.MaxDays)
		}
		overrides.Frequency[id] = days
	}
	for _, d := range dates {
		id, value, ok := strings.Cut(d, "=")
		if !ok || id == "" {
			return overrides, fmt.Errorf("invalid date override %q, use id=YYYY-MM-DD", d)
		}
		date, err := schedule.ParseDate(value)
		if err != nil {
			return overrides, fmt.Errorf("invalid date override %q: %w", d, err)
		}
		overrides.Dates[id] = schedule.FormatDate(date)
	}
	return overrides, nil
}

// emit writes rendered output and copies it to the clipboard when asked.
func emit(cmd *cobra.Command, out *bytes.Buffer) {
	text := out.String()
	fmt.Fprint(cmd.OutOrStdout(), text)
	if copyOutput {
		if err := clipboard.CopyText(text); err != nil {
			slog.Warn("could not copy output to clipboard", "error", err)
		}
	}
}
