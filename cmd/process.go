package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ideaflow/internal/generator"
	"github.com/ziadkadry99/ideaflow/internal/processor"
	"github.com/ziadkadry99/ideaflow/internal/progress"
	"github.com/ziadkadry99/ideaflow/internal/report"
)

var (
	processDryRun    bool
	processThreshold float64
	processIdeas     string
	processBacklog   string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Resolve pending ideas into duplicates or new user stories",
	Long: `Checks every idea that still needs refinement against the backlog and the
other ideas. Duplicates are marked in the ideas file; unique ideas become new
user stories filed under their priority section and are marked converted.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "show the changes as a diff without writing files")
	processCmd.Flags().Float64Var(&processThreshold, "threshold", 0, "duplicate threshold in (0, 1] (overrides config)")
	processCmd.Flags().StringVar(&processIdeas, "ideas", "", "ideas document path (overrides config)")
	processCmd.Flags().StringVar(&processBacklog, "backlog", "", "backlog document path (overrides config)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = processDryRun
	}
	if cmd.Flags().Changed("threshold") {
		cfg.DuplicateThreshold = processThreshold
	}
	if processIdeas != "" {
		cfg.IdeasFile = processIdeas
	}
	if processBacklog != "" {
		cfg.BacklogFile = processBacklog
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	proc := processor.New(p.engine, generator.New(p.metered, cfg.Model, p.vocab, log), processor.Options{
		IdeasPath:   cfg.IdeasFile,
		BacklogPath: cfg.BacklogFile,
		Vocabulary:  p.vocab,
		DryRun:      cfg.DryRun,
		Logger:      log,
		Meter:       p.metered,
	})

	reporter := progress.NewReporter()
	proc.SetProgressFunc(func(stage processor.Stage, done, total int, item string) {
		reporter.Update(string(stage), done, total, item)
	})

	log.Info("processing", zap.String("ideas", cfg.IdeasFile), zap.String("backlog", cfg.BacklogFile),
		zap.String("engine", p.engine.Name()), zap.Float64("threshold", cfg.DuplicateThreshold))

	result, runErr := proc.Run(ctx)
	reporter.Finish()
	if result == nil {
		return runErr
	}

	if result.DryRun {
		if err := report.PrintDiffs(os.Stdout, result); err != nil {
			log.Warn("diff preview failed", zap.Error(err))
		}
	}
	report.PrintSummary(os.Stdout, result, p.vocab)
	return runErr
}
