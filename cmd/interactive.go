package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"ocrfix/internal/logger"
	"ocrfix/internal/pipeline"
	"ocrfix/internal/view"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Pick an image and a segmentation mode from menus (default)",
	Long: `Lists the images in the image directory, asks which one to process and
which page segmentation mode to use, then runs OCR, typo correction and
post-processing and shows the full result.

Mode 99 in the menu tries every common mode and recommends the one whose
output looks most like real text. Mode 98 lists all modes.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("interactive")

	cfg, err := validatedConfig(cmd, log)
	if err != nil {
		return err
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	console := view.NewConsole(os.Stdin, os.Stdout)
	console.Detailed = true

	orchestrator, corrector, err := createOrchestrator(ctx, cfg, console, "")
	if err != nil {
		return err
	}
	defer closeEngine(orchestrator)
	console.Method = corrector.Method()
	console.Welcome(cfg.ImageDir, corrector.Method())

	summary, err := orchestrator.Run(ctx, &pipeline.InteractiveSource{
		Prompter: console,
		Dir:      cfg.ImageDir,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", summary.RunID).
		Int("succeeded", summary.Succeeded()).
		Bool("cancelled", summary.Cancelled).
		Msg("Interactive session finished")

	switch {
	case summary.Cancelled:
		console.Info("Cancelled by user")
	case summary.Succeeded() > 0:
		console.Info("Pipeline finished")
	}
	return nil
}
