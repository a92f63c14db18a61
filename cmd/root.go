package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"ocrfix/internal/config"
	"ocrfix/internal/logger"
)

var version = "1.0.0"

// appConfig is loaded in main before Execute and adjusted by flags per command.
var appConfig = config.Default()

var rootCmd = &cobra.Command{
	Use:   "ocrfix",
	Short: "OCR images with Tesseract and fix typos with a language model",
	Long: `ocrfix extracts text from images with Tesseract, sends the text to a
language model (Gemini by default, or any OpenAI-compatible API) to fix OCR
typos, cleans it up and writes a plain-text report for every image.

Without a subcommand it starts an interactive session that lists the images
in the image directory and lets you pick one and a page segmentation mode.

Required environment variables (a .env file is loaded automatically):
  GEMINI_API_KEY  - API key for Gemini (CORRECTION_PROVIDER=gemini, default)
  OPENAI_API_KEY  - API key for CORRECTION_PROVIDER=openai`,
	Example: `  # Interactive session over ./gambar
  ocrfix

  # Process every image in a directory with auto-detected modes
  ocrfix batch ./scans --auto

  # One image with PSM 11, printed as JSON
  ocrfix single struk.jpg 11 --json`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runInteractive,
}

// Execute runs the root command with cfg as the base configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	if cfg != nil {
		appConfig = cfg
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addConfigFlags(rootCmd)
}

// addConfigFlags registers the flags that override configuration values.
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("image-dir", "", "Directory searched for images (default from IMAGE_DIR or ./gambar)")
	flags.String("output-dir", "", "Directory reports are written to (default from OUTPUT_DIR or .)")
	flags.String("provider", "", "Correction provider: gemini or openai")
	flags.String("engine", "", "OCR engine: tesseract, gosseract or vision")
	flags.String("lang", "", "Tesseract languages, e.g. ind+eng")
	flags.Bool("preprocess", false, "Convert to grayscale and upscale small images before OCR")
}
