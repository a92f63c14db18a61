package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"ocrfix/internal/logger"
)

const appName = "ocrfix"

// Correction providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// OCR engines.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
	EngineVision    = "vision"
)

var (
	// ErrMissingAPIKey is returned when the selected correction provider has no API key.
	ErrMissingAPIKey = errors.New("API key for the correction provider is not set")

	// ErrUnknownProvider is returned for a CORRECTION_PROVIDER that is not supported.
	ErrUnknownProvider = errors.New("unknown correction provider")

	// ErrUnknownEngine is returned for an OCR_ENGINE that is not supported.
	ErrUnknownEngine = errors.New("unknown OCR engine")
)

type Config struct {
	// Correction
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	CorrectionTimeout time.Duration

	// OCR
	Engine        string
	TesseractPath string
	Languages     string
	EngineMode    int
	Preprocess    bool

	// Google Cloud Vision credentials, used by the vision engine only.
	GoogleCredentials     string
	GoogleCredentialsFile string

	// Files
	ImageDir  string
	OutputDir string

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string

	// Path of the TOML file that was merged in, empty when none was found.
	SourceFile string
}

// FileConfig is the on-disk TOML layout. Every field is optional.
type FileConfig struct {
	Correction struct {
		Provider      string `toml:"provider"`
		GeminiModel   string `toml:"gemini_model"`
		OpenAIModel   string `toml:"openai_model"`
		OpenAIBaseURL string `toml:"openai_base_url"`
		Timeout       int    `toml:"timeout"`
	} `toml:"correction"`
	OCR struct {
		Engine        string `toml:"engine"`
		TesseractPath string `toml:"tesseract_path"`
		Languages     string `toml:"languages"`
		EngineMode    *int   `toml:"engine_mode"`
		Preprocess    *bool  `toml:"preprocess"`
	} `toml:"ocr"`
	Paths struct {
		ImageDir  string `toml:"image_dir"`
		OutputDir string `toml:"output_dir"`
	} `toml:"paths"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		Output string `toml:"output"`
	} `toml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:          ProviderGemini,
		GeminiModel:       "gemini-2.0-flash-exp",
		OpenAIModel:       "gpt-4o-mini",
		CorrectionTimeout: 30 * time.Second,
		Engine:            EngineTesseract,
		TesseractPath:     "tesseract",
		Languages:         "ind+eng",
		EngineMode:        3,
		ImageDir:          "gambar",
		OutputDir:         ".",
		LogLevel:          "warn",
		LogFormat:         "console",
		LogTimeFormat:     time.RFC3339,
		LogOutput:         "stderr",
	}
}

// Load builds the configuration from defaults, the optional TOML file and the
// environment, in that order. It does not validate; commands that talk to the
// correction service call Validate themselves so that help works without keys.
//
// If the file cannot be read, Load returns the error together with a config
// built from defaults and the environment alone.
func Load() (*Config, error) {
	config := Default()

	var fileErr error
	if path := configFilePath(); path != "" {
		fileErr = config.mergeFile(path)
	}

	config.mergeEnv()
	return config, fileErr
}

// configFilePath returns OCRFIX_CONFIG when set, otherwise the XDG config file
// if it exists.
func configFilePath() string {
	if p := os.Getenv("OCRFIX_CONFIG"); p != "" {
		return p
	}
	p, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml"))
	if err != nil {
		return ""
	}
	return p
}

func (c *Config) mergeFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to decode TOML config %s: %w", path, err)
	}

	setString(&c.Provider, fc.Correction.Provider)
	setString(&c.GeminiModel, fc.Correction.GeminiModel)
	setString(&c.OpenAIModel, fc.Correction.OpenAIModel)
	setString(&c.OpenAIBaseURL, fc.Correction.OpenAIBaseURL)
	if fc.Correction.Timeout > 0 {
		c.CorrectionTimeout = time.Duration(fc.Correction.Timeout) * time.Second
	}
	setString(&c.Engine, fc.OCR.Engine)
	setString(&c.TesseractPath, fc.OCR.TesseractPath)
	setString(&c.Languages, fc.OCR.Languages)
	if fc.OCR.EngineMode != nil {
		c.EngineMode = *fc.OCR.EngineMode
	}
	if fc.OCR.Preprocess != nil {
		c.Preprocess = *fc.OCR.Preprocess
	}
	setString(&c.ImageDir, fc.Paths.ImageDir)
	setString(&c.OutputDir, fc.Paths.OutputDir)
	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.LogFormat, fc.Log.Format)
	setString(&c.LogOutput, fc.Log.Output)

	c.SourceFile = path
	return nil
}

func (c *Config) mergeEnv() {
	c.Provider = strings.ToLower(getEnv("CORRECTION_PROVIDER", c.Provider))
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	if secs := parseIntEnv("CORRECTION_TIMEOUT", 0); secs > 0 {
		c.CorrectionTimeout = time.Duration(secs) * time.Second
	}

	c.Engine = strings.ToLower(getEnv("OCR_ENGINE", c.Engine))
	c.TesseractPath = getEnv("TESSERACT_PATH", c.TesseractPath)
	c.Languages = getEnv("OCR_LANGUAGES", c.Languages)
	c.EngineMode = parseIntEnv("OCR_ENGINE_MODE", c.EngineMode)
	c.Preprocess = parseBoolEnv("OCR_PREPROCESS", c.Preprocess)
	c.GoogleCredentials = getEnv("GOOGLE_CREDENTIALS", c.GoogleCredentials)
	c.GoogleCredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredentialsFile)

	c.ImageDir = getEnv("IMAGE_DIR", c.ImageDir)
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogTimeFormat = getEnv("LOG_TIME_FORMAT", c.LogTimeFormat)
	c.LogOutput = getEnv("LOG_OUTPUT", c.LogOutput)
}

// Validate checks the settings needed to run the correction pipeline.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required", ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: %q (use %q or %q)", ErrUnknownProvider, c.Provider, ProviderGemini, ProviderOpenAI)
	}

	switch c.Engine {
	case EngineTesseract, EngineGosseract, EngineVision:
	default:
		return fmt.Errorf("%w: %q (use %q, %q or %q)", ErrUnknownEngine, c.Engine, EngineTesseract, EngineGosseract, EngineVision)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return b
}
