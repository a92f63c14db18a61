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

var singleCmd = &cobra.Command{
	Use:   "single <image> [mode]",
	Short: "Process one image",
	Long: `Runs the full pipeline on one image. The image may be a path or a bare
file name, which is also looked up in the image directory, with or without
its extension.

The segmentation mode defaults to 6; --auto detects it instead.`,
	Example: `  ocrfix single gambar/laporan.png
  ocrfix single laporan 11
  ocrfix single struk.jpg --auto --json
  ocrfix single struk.jpg -o hasil.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSingle,
}

func init() {
	rootCmd.AddCommand(singleCmd)

	singleCmd.Flags().StringP("output", "o", "", "Report file path (default: generated in the output directory)")
	singleCmd.Flags().Bool("auto", false, "Auto-detect the segmentation mode")
	singleCmd.Flags().Bool("json", false, "Print the result as JSON instead of the summary")
}

func runSingle(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("single")

	outputFile, _ := cmd.Flags().GetString("output")
	autoDetect, _ := cmd.Flags().GetBool("auto")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := validatedConfig(cmd, log)
	if err != nil {
		return err
	}
	mode, err := parseModeArg(args, 1)
	if err != nil {
		return err
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	console := view.NewConsole(os.Stdin, os.Stdout)
	console.Detailed = true
	var observer pipeline.Observer = console
	if jsonOutput {
		observer = pipeline.NopObserver{}
	}

	orchestrator, corrector, err := createOrchestrator(ctx, cfg, observer, outputFile)
	if err != nil {
		return err
	}
	defer closeEngine(orchestrator)
	console.Method = corrector.Method()

	summary, err := orchestrator.Run(ctx, &pipeline.SingleSource{
		Path:       args[0],
		Dir:        cfg.ImageDir,
		Mode:       mode,
		AutoDetect: autoDetect,
	})
	if err != nil {
		return err
	}
	if summary.Cancelled {
		log.Info().Msg("Processing cancelled")
		return nil
	}
	if len(summary.Failures) > 0 {
		return summary.Failures[0]
	}

	if jsonOutput {
		data, err := json.MarshalIndent(summary.Results[0], "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}
