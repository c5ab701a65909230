// Package config loads the settings of the algo-daw command.
//
// Values come from three layers, each overriding the previous one: built-in
// defaults, an optional YAML file, and the environment. Variables from a
// .env file fill in whatever the process environment leaves unset.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/engine"
	"github.com/cwbudde/algo-daw/export"
	"github.com/cwbudde/algo-daw/internal/logging"
	"github.com/cwbudde/algo-daw/mixer"
)

// DefaultEnvFile is read when Load is given no env files.
const DefaultEnvFile = ".env"

// Config is the complete command configuration.
type Config struct {
	Audio Audio          `yaml:"audio"`
	Log   logging.Config `yaml:"log"`
	Minio Minio          `yaml:"minio"`
}

// Audio holds the processing format and the master bus defaults.
type Audio struct {
	SampleRate float64 `yaml:"sampleRate"`
	BlockSize  int     `yaml:"blockSize"`
	Tempo      float64 `yaml:"tempo"`
	// PoolCeiling caps the samples the live buffer pool may allocate;
	// 0 is unbounded.
	PoolCeiling      int     `yaml:"poolCeiling"`
	LimiterCeilingDB float64 `yaml:"limiterCeilingDb"`
	LimiterReleaseMs float64 `yaml:"limiterReleaseMs"`
}

// Minio locates the bucket renders are uploaded to.
type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"useSSL"`
}

// Default returns 48 kHz, 256-frame blocks, 120 BPM, the default master
// bus and info logging to stderr.
func Default() Config {
	ec := engine.DefaultConfig()

	return Config{
		Audio: Audio{
			SampleRate:       ec.SampleRate,
			BlockSize:        ec.BlockSize,
			Tempo:            ec.Tempo,
			LimiterCeilingDB: ec.Master.CeilingDB,
			LimiterReleaseMs: ec.Master.ReleaseMs,
		},
		Log: logging.Config{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Minio: Minio{Bucket: "renders"},
	}
}

// Load reads the YAML file at path (skipped when empty) and applies the
// environment. Without envFiles, DefaultEnvFile is used if it exists; named
// env files must exist.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: %s: %w", path, daw.ErrNotFound)
			}

			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}

		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]

		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", err, daw.ErrInvalidParameter)
	}

	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil, nil
		}
		files = []string{DefaultEnvFile}
	}

	vals, err := godotenv.Read(files...)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: env file: %w: %w", err, daw.ErrNotFound)
		}

		return nil, fmt.Errorf("config: env file: %w: %w", err, daw.ErrInvalidParameter)
	}

	return vals, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays DAW_* and MINIO_* variables.
func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.float("DAW_SAMPLE_RATE", &c.Audio.SampleRate)
	e.int("DAW_BLOCK_SIZE", &c.Audio.BlockSize)
	e.float("DAW_TEMPO", &c.Audio.Tempo)
	e.int("DAW_POOL_CEILING", &c.Audio.PoolCeiling)
	e.float("DAW_LIMITER_CEILING_DB", &c.Audio.LimiterCeilingDB)
	e.float("DAW_LIMITER_RELEASE_MS", &c.Audio.LimiterReleaseMs)

	e.str("DAW_LOG_LEVEL", &c.Log.Level)
	e.str("DAW_LOG_FILE", &c.Log.File)
	e.bool("DAW_LOG_JSON", &c.Log.JSON)

	e.str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	e.str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	e.str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	e.str("MINIO_BUCKET", &c.Minio.Bucket)
	e.str("MINIO_REGION", &c.Minio.Region)
	e.str("MINIO_PREFIX", &c.Minio.Prefix)
	e.bool("MINIO_USE_SSL", &c.Minio.UseSSL)

	return e.err
}

// envReader parses variables and keeps the first failure.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key, v string, err error) {
	e.err = fmt.Errorf("config: %s=%q: %w: %w", key, v, err, daw.ErrInvalidParameter)
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = f
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)

		return
	}
	*dst = b
}

// Validate checks the audio format, tempo, master bus and log level.
func (c Config) Validate() error {
	pc := core.ProcessorConfig{SampleRate: c.Audio.SampleRate, BlockSize: c.Audio.BlockSize}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("config: %w: %w", err, daw.ErrInvalidParameter)
	}

	if !(c.Audio.Tempo >= engine.MinTempo && c.Audio.Tempo <= engine.MaxTempo) {
		return fmt.Errorf("config: tempo %g outside [%g, %g]: %w",
			c.Audio.Tempo, engine.MinTempo, engine.MaxTempo, daw.ErrInvalidParameter)
	}

	if c.Audio.PoolCeiling < 0 {
		return fmt.Errorf("config: negative pool ceiling %d: %w", c.Audio.PoolCeiling, daw.ErrInvalidParameter)
	}

	if err := c.master().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

func (c Config) master() mixer.MasterSettings {
	m := mixer.DefaultMasterSettings()
	m.CeilingDB = c.Audio.LimiterCeilingDB
	m.ReleaseMs = c.Audio.LimiterReleaseMs

	return m
}

// Engine returns the engine configuration.
func (c Config) Engine() engine.Config {
	return engine.Config{
		SampleRate: c.Audio.SampleRate,
		BlockSize:  c.Audio.BlockSize,
		Tempo:      c.Audio.Tempo,
		Master:     c.master(),
	}
}

// Pool returns a buffer pool honouring PoolCeiling.
func (c Config) Pool() *buffer.Pool {
	if c.Audio.PoolCeiling == 0 {
		return buffer.NewPool(buffer.Unbounded())
	}

	return buffer.NewPool(buffer.WithCeiling(c.Audio.PoolCeiling))
}

// Sink returns the upload target configuration.
func (m Minio) Sink() export.MinioConfig {
	return export.MinioConfig{
		Endpoint:  m.Endpoint,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Bucket:    m.Bucket,
		Region:    m.Region,
		UseSSL:    m.UseSSL,
		Prefix:    m.Prefix,
	}
}
