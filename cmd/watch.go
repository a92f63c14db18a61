package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"ocrfix/internal/logger"
	"ocrfix/internal/pipeline"
	"ocrfix/internal/view"
	"ocrfix/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir] [mode]",
	Short: "Process images as they are added to a directory",
	Long: `Watches dir (default: the image directory) and runs the full pipeline on
every supported image that is created in it, one at a time. Images already in
the directory are left alone. Stop with Ctrl+C.`,
	Example: `  ocrfix watch ./inbox
  ocrfix watch ./inbox --auto`,
	Args: cobra.MaximumNArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("auto", false, "Auto-detect the segmentation mode for each image")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")
	autoDetect, _ := cmd.Flags().GetBool("auto")

	cfg, err := validatedConfig(cmd, log)
	if err != nil {
		return err
	}
	dir := cfg.ImageDir
	if len(args) > 0 {
		dir = args[0]
	}
	mode, err := parseModeArg(args, 1)
	if err != nil {
		return err
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	console := view.NewConsole(os.Stdin, os.Stdout)
	orchestrator, corrector, err := createOrchestrator(ctx, cfg, console, "")
	if err != nil {
		return err
	}
	defer closeEngine(orchestrator)
	console.Method = corrector.Method()

	if err := orchestrator.CheckPrerequisite(ctx); err != nil {
		return err
	}

	source := &pipeline.BatchSource{Dir: dir, Mode: mode, AutoDetect: autoDetect}
	console.Info("Watching %s for new images (Ctrl+C to stop)", watch.Abs(dir))

	processed := 0
	err = watch.New(dir).Run(ctx, func(ctx context.Context, path string) error {
		_, err := orchestrator.Process(ctx, source, path)
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			console.ImageFailed(stageErr)
			return err
		}
		if err == nil {
			processed++
		}
		return err
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", orchestrator.RunID()).
		Int("processed", processed).
		Msg("Stopped watching")
	console.Info("Stopped watching, %d images processed", processed)
	return nil
}
