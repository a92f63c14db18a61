package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"ocrfix/internal/imagefile"
	"ocrfix/internal/logger"
	"ocrfix/internal/ocr"
	"ocrfix/internal/view"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Compare segmentation modes on an image without correcting it",
	Long: `Runs Tesseract with every common page segmentation mode, scores each
output and prints the table together with the recommended mode. No language
model is called, so no API key is needed.`,
	Example: `  ocrfix detect gambar/struk.jpg
  ocrfix detect struk --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("json", false, "Print the detection report as JSON")
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("detect")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := commandConfig(cmd)
	image, err := imagefile.Resolve(args[0], cfg.ImageDir)
	if err != nil {
		return err
	}
	if err := imagefile.Validate(image); err != nil {
		return err
	}

	ctx, cancel := createSignalContext(log)
	defer cancel()

	extractor, err := createExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEngine(extractor)
	console := view.NewConsole(os.Stdin, os.Stdout)
	if err := extractor.Available(ctx); err != nil {
		console.PrerequisiteChecked(extractor.Name(), err)
		return err
	}

	target := image
	if cfg.Preprocess {
		prepared, cleanup, err := ocr.NewPreprocessor().Prepare(image)
		if err != nil {
			log.Warn().Err(err).Msg("Preprocessing failed, using original image")
		} else {
			defer cleanup()
			target = prepared
		}
	}

	detector := ocr.NewDetector(extractor)
	if !jsonOutput {
		detector.OnMode = console.DetectProgress
	}
	report, err := detector.Detect(ctx, target)
	if err != nil {
		log.Info().Err(err).Msg("Detection cancelled")
		return nil
	}

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	console.ShowDetection(report)
	return nil
}
