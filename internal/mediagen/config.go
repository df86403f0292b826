// Package mediagen produces the audio narrations and dish images referenced
// by the catalog, by driving external TTS and txt2img services over the
// recipe source files.
package mediagen

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when no config file is named.
const DefaultConfigPath = "mediagen.toml"

// Config is the mediagen.toml file.
type Config struct {
	OutputRoot        string  `toml:"output_root"`
	Attempts          int     `toml:"attempts"`
	BackoffSeconds    float64 `toml:"backoff_seconds"`
	RequestsPerMinute float64 `toml:"requests_per_minute"`
	S3Bucket          string  `toml:"s3_bucket"`
	S3Region          string  `toml:"s3_region"`

	Audio   AudioConfig   `toml:"audio"`
	Image   ImageConfig   `toml:"image"`
	Prompts PromptsConfig `toml:"prompts"`
}

// AudioConfig configures the TTS service and the final encode.
type AudioConfig struct {
	BaseURL        string `toml:"base_url"`
	Voice          string `toml:"voice"`
	RVCVoice       string `toml:"rvc_voice"`
	Language       string `toml:"language"`
	MaxSegment     int    `toml:"max_segment"`
	FFmpeg         string `toml:"ffmpeg"`
	Bitrate        string `toml:"bitrate"`
	SampleRate     int    `toml:"sample_rate"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImageConfig configures the txt2img service and the JPEG encode.
type ImageConfig struct {
	URL            string  `toml:"url"`
	NegativePrompt string  `toml:"negative_prompt"`
	Sampler        string  `toml:"sampler"`
	Scheduler      string  `toml:"scheduler"`
	Steps          int     `toml:"steps"`
	CFGScale       float64 `toml:"cfg_scale"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	JPEGQuality    int     `toml:"jpeg_quality"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// PromptsConfig configures the describe-prompt lists.
type PromptsConfig struct {
	OutputDir string `toml:"output_dir"`
	Limit     int    `toml:"limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputRoot:        "media-output",
		Attempts:          3,
		BackoffSeconds:    1,
		RequestsPerMinute: 30,
		Audio: AudioConfig{
			BaseURL:        "http://127.0.0.1:7851",
			Voice:          "female_01.wav",
			Language:       "en",
			MaxSegment:     2000,
			FFmpeg:         "ffmpeg",
			Bitrate:        "48k",
			SampleRate:     48000,
			TimeoutSeconds: 300,
		},
		Image: ImageConfig{
			URL:            "http://127.0.0.1:7860/sdapi/v1/txt2img",
			NegativePrompt: "touching plates, (cutlery:0.4), zoom, macro, multiple, (saturated:0.4), (multiple plates), text, deformed, people",
			Sampler:        "UniPC",
			Scheduler:      "Automatic",
			Steps:          16,
			CFGScale:       6,
			Width:          1024,
			Height:         1024,
			JPEGQuality:    50,
			TimeoutSeconds: 300,
		},
		Prompts: PromptsConfig{
			OutputDir: "describe-prompts",
			Limit:     20,
		},
	}
}

// Load reads path over the defaults. A missing file at the default path is
// not an error; a missing file named explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the jobs cannot run with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.OutputRoot) == "":
		return errors.New("output_root must be set")
	case c.Attempts < 1:
		return errors.New("attempts must be at least 1")
	case c.BackoffSeconds < 0:
		return errors.New("backoff_seconds must not be negative")
	case c.RequestsPerMinute < 0:
		return errors.New("requests_per_minute must not be negative")
	case c.Audio.MaxSegment < 1:
		return errors.New("audio.max_segment must be positive")
	case c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100:
		return errors.New("image.jpeg_quality must be between 1 and 100")
	case c.Prompts.Limit < 1:
		return errors.New("prompts.limit must be positive")
	}
	return nil
}

// Backoff is the wait before retry number attempt (1-based).
func (c Config) Backoff(attempt int) time.Duration {
	return time.Duration(float64(attempt) * c.BackoffSeconds * float64(time.Second))
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
