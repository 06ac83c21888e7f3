// config.go: settings struct for the Bazaar Buddy companion and functions to load and save them.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stonehenge-collective/bazaarbuddy-go/internal/errors"
)

// LogSettings contains application log output settings
type LogSettings struct {
	Enabled    bool   // true to log to a rotating file in addition to stderr
	Path       string // log file path
	MaxSize    int    // megabytes per log file before rotation
	MaxBackups int    // rotated files to keep
	JSON       bool   // JSON log output
	Level      string // debug, info, warn, error
}

// MainSettings contains top-level application settings
type MainSettings struct {
	Name string      // name of this node, used in log messages
	Log  LogSettings // log settings
}

// TargetSettings describes the process and window being watched
type TargetSettings struct {
	ProcessWindows  string        // process name on Windows
	ProcessDarwin   string        // process name on macOS
	WindowTitle     string        // window title to capture
	SearchInterval  time.Duration // tick interval while searching for the process
	CaptureInterval time.Duration // tick interval between capture attempts
	AcquireTimeout  time.Duration // how long one acquire waits for a frame
	StopGrace       time.Duration // how long to wait for a worker to stop
}

// ProcessName returns the target process name for the current OS
func (t *TargetSettings) ProcessName() string {
	if runtime.GOOS == osWindows {
		return t.ProcessWindows
	}
	return t.ProcessDarwin
}

// CaptureSettings controls the capture backend
type CaptureSettings struct {
	Backend    string // "auto", "window" or "display"
	SaveFrames bool   // write captured frames to disk for debugging
	SavePath   string // directory for saved frames
}

// OCRSettings controls text extraction
type OCRSettings struct {
	Language            string // tesseract language(s)
	ConfidenceThreshold int    // word candidates below this are discarded
	TessdataPrefix      string // optional TESSDATA_PREFIX override
}

// KnowledgeSettings controls the knowledge base lookup
type KnowledgeSettings struct {
	DataPath string        // directory holding events.json and items.json
	CacheTTL time.Duration // how long text -> message lookups are cached
}

// MetricsSettings controls the optional metrics endpoint
type MetricsSettings struct {
	Enabled bool   // true to serve prometheus metrics
	Listen  string // listen address, e.g. "localhost:9090"
}

// Settings is the root configuration struct, constructed once and passed by
// reference to every component that needs it.
type Settings struct {
	Debug bool // true to enable debug level logging

	Main      MainSettings
	Target    TargetSettings
	Capture   CaptureSettings
	OCR       OCRSettings
	Knowledge KnowledgeSettings
	Metrics   MetricsSettings
}

// Load reads the configuration file and environment into a Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigType("yaml")
	setDefaultConfig()

	configFile, err := FindConfigFile()
	switch {
	case err == nil:
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		return nil
	case errors.IsCategory(err, errors.CategoryNotFound):
		// First run, no config file anywhere yet.
		return createDefaultConfig()
	default:
		return fmt.Errorf("error locating config file: %w", err)
	}
}

// createDefaultConfig writes the default settings to the first config path and
// points viper at the new file.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(configPaths[0], 0o755); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "create-config-dir").
			Build()
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("error unmarshaling default config: %w", err)
	}
	if err := SaveSettings(settings, configPath); err != nil {
		return err
	}

	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// ValidateSettings checks the settings for obviously broken values.
func ValidateSettings(settings *Settings) error {
	if settings.Target.WindowTitle == "" {
		return errors.Newf("target.windowtitle must not be empty").
			Category(errors.CategoryValidation).
			Context("setting", "target.windowtitle").
			Build()
	}
	if settings.Target.SearchInterval <= 0 {
		return errors.Newf("target.searchinterval must be positive").
			Category(errors.CategoryValidation).
			Context("setting", "target.searchinterval").
			Build()
	}
	if settings.Target.CaptureInterval <= 0 {
		return errors.Newf("target.captureinterval must be positive").
			Category(errors.CategoryValidation).
			Context("setting", "target.captureinterval").
			Build()
	}
	if settings.Target.AcquireTimeout <= 0 {
		return errors.Newf("target.acquiretimeout must be positive").
			Category(errors.CategoryValidation).
			Context("setting", "target.acquiretimeout").
			Build()
	}
	if settings.OCR.ConfidenceThreshold < 0 || settings.OCR.ConfidenceThreshold > 100 {
		return errors.Newf("ocr.confidencethreshold must be between 0 and 100").
			Category(errors.CategoryValidation).
			Context("setting", "ocr.confidencethreshold").
			Build()
	}
	return nil
}

// SaveSettings writes the settings to the given path as YAML. Duration
// fields are serialized as nanosecond integers and decode back to the
// same values on the next Load.
func SaveSettings(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "marshal-settings").
			Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "save-settings").
			Build()
	}
	return nil
}
