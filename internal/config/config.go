package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// GenerationSettings are the sampling and budget knobs for one class of
// generation call. Chunk transcription and the merge pass carry different
// budgets: merge output can be far larger than any single chunk.
type GenerationSettings struct {
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	TimeoutSec      int     `mapstructure:"timeout_sec"`
}

type Config struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	ChunkDuration   float64 `mapstructure:"chunk_duration"`
	Overlap         float64 `mapstructure:"overlap"`
	ChunksDir       string  `mapstructure:"chunks_dir"`
	Output          string  `mapstructure:"output"`
	PollIntervalSec int     `mapstructure:"poll_interval_sec"`
	ReuseUploads    bool    `mapstructure:"reuse_uploads"`
	Parallel        int     `mapstructure:"parallel"`

	ChunkGen GenerationSettings `mapstructure:"chunk_generation"`
	MergeGen GenerationSettings `mapstructure:"merge_generation"`
}

// Load builds the run configuration from defaults, the GEMINI_API_KEY
// environment variable, and an optional yaml config file. CLI flags are
// applied on top by the caller.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("model", "gemini-3-pro-preview")
	v.SetDefault("chunk_duration", 1200)
	v.SetDefault("overlap", 10)
	v.SetDefault("chunks_dir", "audio_chunks")
	v.SetDefault("output", "transcript.md")
	v.SetDefault("poll_interval_sec", 3)
	v.SetDefault("reuse_uploads", true)
	v.SetDefault("parallel", 1)
	v.SetDefault("chunk_generation.temperature", 0.2)
	v.SetDefault("chunk_generation.max_output_tokens", 30000)
	v.SetDefault("chunk_generation.timeout_sec", 600)
	v.SetDefault("merge_generation.temperature", 0.3)
	v.SetDefault("merge_generation.max_output_tokens", 100000)
	v.SetDefault("merge_generation.timeout_sec", 900)

	v.BindEnv("api_key", "GEMINI_API_KEY")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations that would stall the chunk loop or fail
// remote calls, before any file or network work starts.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key required: pass --api-key or set GEMINI_API_KEY")
	}
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk duration must be positive, got %g", c.ChunkDuration)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkDuration {
		return fmt.Errorf("overlap must satisfy 0 <= overlap < chunk duration, got overlap %g with chunk duration %g",
			c.Overlap, c.ChunkDuration)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}
