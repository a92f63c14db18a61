package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"ocrfix/internal/logger"
	"ocrfix/internal/pipeline"
	"ocrfix/internal/view"
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir] [mode]",
	Short: "Process every image in a directory",
	Long: `Runs the full pipeline on every supported image directly inside dir
(default: the image directory) and writes one report per image.

The segmentation mode defaults to 6. With --auto the mode is auto-detected
for each image instead. A failing image is reported and the batch continues.`,
	Example: `  ocrfix batch
  ocrfix batch ./scans 4
  ocrfix batch ./scans --auto --preprocess --output-dir ./hasil`,
	Args: cobra.MaximumNArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("auto", false, "Auto-detect the segmentation mode for each image")
	batchCmd.Flags().Bool("json", false, "Print the run summary as JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	autoDetect, _ := cmd.Flags().GetBool("auto")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	log.Info().
		Str("dir", dir).
		Int("psm", int(mode)).
		Bool("auto", autoDetect).
		Msg("Starting batch")

	ctx, cancel := createSignalContext(log)
	defer cancel()

	console := view.NewConsole(os.Stdin, os.Stdout)
	var observer pipeline.Observer = console
	if jsonOutput {
		observer = pipeline.NopObserver{}
	}

	orchestrator, corrector, err := createOrchestrator(ctx, cfg, observer, "")
	if err != nil {
		return err
	}
	defer closeEngine(orchestrator)
	console.Method = corrector.Method()

	summary, err := orchestrator.Run(ctx, &pipeline.BatchSource{
		Dir:        dir,
		Mode:       mode,
		AutoDetect: autoDetect,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if summary.Total == 0 && !summary.Cancelled {
		console.Info("No images found in %s", dir)
		return nil
	}
	console.ShowSummary(summary)
	return nil
}
