package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"ocrfix/internal/config"
	"ocrfix/internal/correction"
	"ocrfix/internal/logger"
	"ocrfix/internal/ocr"
	"ocrfix/internal/pipeline"
	"ocrfix/internal/report"
)

// commandConfig returns a copy of the base configuration with the persistent
// flags applied. Only flags set on the command line override it.
func commandConfig(cmd *cobra.Command) *config.Config {
	cfg := *appConfig
	flags := cmd.Flags()

	if flags.Changed("image-dir") {
		cfg.ImageDir, _ = flags.GetString("image-dir")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("provider") {
		cfg.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("engine") {
		cfg.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("lang") {
		cfg.Languages, _ = flags.GetString("lang")
	}
	if flags.Changed("preprocess") {
		cfg.Preprocess, _ = flags.GetBool("preprocess")
	}
	return &cfg
}

// validatedConfig is commandConfig for commands that call the correction service.
func validatedConfig(cmd *cobra.Command, log zerolog.Logger) (*config.Config, error) {
	cfg := commandConfig(cmd)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// createSignalContext returns a context cancelled on SIGINT or SIGTERM.
func createSignalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createExtractor builds the configured OCR engine.
func createExtractor(ctx context.Context, cfg *config.Config) (ocr.Extractor, error) {
	switch cfg.Engine {
	case config.EngineVision:
		v, err := ocr.NewVision(ctx, ocr.VisionConfig{
			CredentialsJSON: cfg.GoogleCredentials,
			CredentialsFile: cfg.GoogleCredentialsFile,
			Languages:       cfg.Languages,
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.EngineGosseract:
		ex, err := ocr.NewGosseract(cfg.Languages)
		if errors.Is(err, ocr.ErrEngineNotCompiled) {
			return nil, fmt.Errorf("%w, or use --engine tesseract", err)
		}
		return ex, err
	case config.EngineTesseract, "":
		oem := cfg.EngineMode
		return ocr.NewTesseract(ocr.TesseractConfig{
			BinaryPath: cfg.TesseractPath,
			Languages:  cfg.Languages,
			EngineMode: &oem,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownEngine, cfg.Engine)
	}
}

// closeEngine releases an engine or pipeline that holds a client connection.
func closeEngine(v any) {
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log := logger.WithComponent("cmd")
			log.Warn().Err(err).Msg("Failed to close OCR engine")
		}
	}
}

// createCorrector builds the correction service for the configured provider.
func createCorrector(ctx context.Context, cfg *config.Config) (*correction.Service, error) {
	var gen correction.Generator
	switch cfg.Provider {
	case config.ProviderOpenAI:
		gen = correction.NewOpenAIGenerator(correction.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	default:
		g, err := correction.NewGeminiGenerator(ctx, correction.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	}
	return correction.NewService(gen, cfg.CorrectionTimeout), nil
}

// createOrchestrator wires the engine, correction service, report writer and
// optional preprocessor into a pipeline.
func createOrchestrator(ctx context.Context, cfg *config.Config, observer pipeline.Observer, outputFile string) (*pipeline.Orchestrator, *correction.Service, error) {
	extractor, err := createExtractor(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	corrector, err := createCorrector(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create correction service: %w", err)
	}

	opts := pipeline.Options{
		Extractor:  extractor,
		Corrector:  corrector,
		Saver:      report.NewWriter(cfg.OutputDir),
		Observer:   observer,
		OutputFile: outputFile,
	}
	if cfg.Preprocess {
		opts.Preparer = ocr.NewPreprocessor()
	}
	return pipeline.New(opts), corrector, nil
}

// parseModeArg parses an optional positional mode argument.
func parseModeArg(args []string, index int) (ocr.Mode, error) {
	if len(args) <= index {
		return ocr.DefaultMode, nil
	}
	return ocr.ParseMode(args[index])
}
