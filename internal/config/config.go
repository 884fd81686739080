// Package config loads mudra settings from a JSON or YAML file and MUDRA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/menu"
	"github.com/ayusman/mudra/internal/stabilizer"
)

// EnvPrefix prefixes environment overrides, e.g. MUDRA_STABILIZER_POLICY.
const EnvPrefix = "MUDRA"

// ConfigName is the base name searched for when no file is given.
const ConfigName = "mudra"

type ClassifierConfig struct {
	SwipeThreshold  float64 `json:"swipeThreshold" mapstructure:"swipeThreshold"`
	HistoryCapacity int     `json:"historyCapacity" mapstructure:"historyCapacity"`
}

type StabilizerConfig struct {
	Policy            string        `json:"policy" mapstructure:"policy"`
	HoldDuration      time.Duration `json:"holdDuration" mapstructure:"holdDuration"`
	SelectionCooldown time.Duration `json:"selectionCooldown" mapstructure:"selectionCooldown"`
	SelectLabel       string        `json:"selectLabel" mapstructure:"selectLabel"`
}

type DetectorConfig struct {
	MaxHands               int     `json:"maxHands" mapstructure:"maxHands"`
	MinDetectionConfidence float64 `json:"minDetectionConfidence" mapstructure:"minDetectionConfidence"`
	MinTrackingConfidence  float64 `json:"minTrackingConfidence" mapstructure:"minTrackingConfidence"`
}

type CameraConfig struct {
	ID     int  `json:"id" mapstructure:"id"`
	FPS    int  `json:"fps" mapstructure:"fps"`
	Width  int  `json:"width" mapstructure:"width"`
	Height int  `json:"height" mapstructure:"height"`
	Mirror bool `json:"mirror" mapstructure:"mirror"`
}

type PipelineConfig struct {
	Async bool `json:"async" mapstructure:"async"`
	// MotionThreshold is the percentage of changed pixels below which a frame
	// skips detection. Zero disables the gate.
	MotionThreshold float64 `json:"motionThreshold" mapstructure:"motionThreshold"`
}

type MenuConfig struct {
	Rows     int         `json:"rows" mapstructure:"rows"`
	Cols     int         `json:"cols" mapstructure:"cols"`
	Tracking bool        `json:"tracking" mapstructure:"tracking"`
	Items    []menu.Item `json:"items" mapstructure:"items"`
}

type ServerConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	StaticDir string `json:"staticDir" mapstructure:"staticDir"`
}

type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

type PluginsConfig struct {
	Dir     string        `json:"dir" mapstructure:"dir"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

type TrayConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// Config is the complete runtime configuration.
type Config struct {
	Classifier ClassifierConfig `json:"classifier" mapstructure:"classifier"`
	Stabilizer StabilizerConfig `json:"stabilizer" mapstructure:"stabilizer"`
	Detector   DetectorConfig   `json:"detector" mapstructure:"detector"`
	Camera     CameraConfig     `json:"camera" mapstructure:"camera"`
	Pipeline   PipelineConfig   `json:"pipeline" mapstructure:"pipeline"`
	Menu       MenuConfig       `json:"menu" mapstructure:"menu"`
	Server     ServerConfig     `json:"server" mapstructure:"server"`
	Store      StoreConfig      `json:"store" mapstructure:"store"`
	Plugins    PluginsConfig    `json:"plugins" mapstructure:"plugins"`
	Log        LogConfig        `json:"log" mapstructure:"log"`
	Tray       TrayConfig       `json:"tray" mapstructure:"tray"`
}

// DataDir returns ~/.mudra, or .mudra when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

func setDefaults(v *viper.Viper) {
	gc := gesture.DefaultConfig()
	v.SetDefault("classifier.swipeThreshold", gc.SwipeThreshold)
	v.SetDefault("classifier.historyCapacity", gc.HistoryCapacity)

	sc := stabilizer.DefaultConfig()
	v.SetDefault("stabilizer.policy", string(sc.Policy))
	v.SetDefault("stabilizer.holdDuration", sc.HoldDuration)
	v.SetDefault("stabilizer.selectionCooldown", sc.SelectionCooldown)
	v.SetDefault("stabilizer.selectLabel", string(sc.SelectLabel))

	dc := detector.DefaultConfig()
	v.SetDefault("detector.maxHands", dc.MaxHands)
	v.SetDefault("detector.minDetectionConfidence", dc.MinConfidence)
	v.SetDefault("detector.minTrackingConfidence", dc.MinTrackingConf)

	cc := capture.DefaultConfig()
	v.SetDefault("camera.id", cc.DeviceID)
	v.SetDefault("camera.fps", cc.FPS)
	v.SetDefault("camera.width", cc.Width)
	v.SetDefault("camera.height", cc.Height)
	v.SetDefault("camera.mirror", cc.Mirror)

	v.SetDefault("pipeline.async", false)
	v.SetDefault("pipeline.motionThreshold", 0.0)

	mc := menu.DefaultConfig()
	v.SetDefault("menu.rows", mc.Rows)
	v.SetDefault("menu.cols", mc.Cols)
	v.SetDefault("menu.tracking", false)
	v.SetDefault("menu.items", []menu.Item{})

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.staticDir", "")

	dir := DataDir()
	v.SetDefault("store.path", filepath.Join(dir, "mudra.db"))
	v.SetDefault("plugins.dir", filepath.Join(dir, "plugins"))
	v.SetDefault("plugins.timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)

	v.SetDefault("tray.enabled", false)
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: decode defaults: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads the file at path, or searches for mudra.{json,yaml} in the
// working directory and DataDir when path is empty. A missing file is only
// an error when path was given explicitly.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath(DataDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns every violation at once.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.GestureConfig().Validate())

	if sc, err := c.StabilizerConfig(); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, sc.Validate())
	}

	if c.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector.maxHands must be at least 1, got %d", c.Detector.MaxHands))
	}
	for key, val := range map[string]float64{
		"detector.minDetectionConfidence": c.Detector.MinDetectionConfidence,
		"detector.minTrackingConfidence":  c.Detector.MinTrackingConfidence,
	} {
		if val < 0 || val > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %g", key, val))
		}
	}

	if c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS))
	}
	if c.Pipeline.MotionThreshold < 0 || c.Pipeline.MotionThreshold > 100 {
		errs = append(errs, fmt.Errorf("pipeline.motionThreshold must be within [0,100], got %g", c.Pipeline.MotionThreshold))
	}

	errs = append(errs, c.MenuConfig().Validate())

	if c.Plugins.Timeout < 0 {
		errs = append(errs, fmt.Errorf("plugins.timeout must not be negative, got %s", c.Plugins.Timeout))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// GestureConfig converts the classifier section.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		SwipeThreshold:  c.Classifier.SwipeThreshold,
		HistoryCapacity: c.Classifier.HistoryCapacity,
	}
}

// StabilizerConfig converts the stabilizer section, resolving the policy
// and label names.
func (c *Config) StabilizerConfig() (stabilizer.Config, error) {
	policy, err := stabilizer.ParsePolicy(c.Stabilizer.Policy)
	if err != nil {
		return stabilizer.Config{}, err
	}
	label, err := gesture.ParseLabel(c.Stabilizer.SelectLabel)
	if err != nil {
		return stabilizer.Config{}, fmt.Errorf("stabilizer.selectLabel: %w", err)
	}
	return stabilizer.Config{
		Policy:            policy,
		HoldDuration:      c.Stabilizer.HoldDuration,
		SelectionCooldown: c.Stabilizer.SelectionCooldown,
		SelectLabel:       label,
	}, nil
}

// DetectorConfig converts the detector section.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}

// CameraConfig converts the camera section.
func (c *Config) CameraConfig() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.ID,
		FPS:      c.Camera.FPS,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		Mirror:   c.Camera.Mirror,
	}
}

// MenuConfig converts the menu section.
func (c *Config) MenuConfig() menu.Config {
	return menu.Config{
		Rows:     c.Menu.Rows,
		Cols:     c.Menu.Cols,
		Tracking: c.Menu.Tracking,
		Items:    c.Menu.Items,
	}
}
