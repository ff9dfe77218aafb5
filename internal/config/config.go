// Package config loads service configuration from the environment and an
// optional JSON config file.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultRegion is used when no AWS region is configured.
const DefaultRegion = "ap-southeast-2"

// Default Bedrock model identifiers, overridable via the config file or env.
var defaultModelMap = map[string]string{
	"claude": "anthropic.claude-3-sonnet-20240229-v1:0",
	"nova":   "apac.amazon.nova-lite-v1:0",
}

// KafkaConfig holds event publishing configuration.
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicAnalysis  string
	TopicArtefacts string
	Principal      string
}

// TranscriptionConfig holds batch transcription job parameters.
type TranscriptionConfig struct {
	Bucket        string
	OutputKey     string
	JobNamePrefix string
	Specialty     string
	Type          string
	MaxSpeakers   int64
	LanguageCode  string
	PollInterval  time.Duration
}

// LiveConfig holds streaming transcription parameters.
type LiveConfig struct {
	Provider     string // aws, google or mock
	LanguageCode string
	SampleRate   int64
}

// Config is the full service configuration.
type Config struct {
	Region       string
	OutputDir    string
	DefaultModel string
	ModelMap     map[string]string

	Transcription TranscriptionConfig
	Live          LiveConfig
	Kafka         KafkaConfig

	DashboardAddr string
	MetricsAddr   string
}

// fileConfig is the subset of configuration that may come from a JSON file.
// Search order: CLINICAL_SCRIBE_CONFIG, config/models.json, config.json.
type fileConfig struct {
	DefaultModel string            `json:"default_model"`
	Models       map[string]string `json:"models"`
	OutputDir    string            `json:"output_dir"`
	Bucket       string            `json:"bucket"`
}

// Load builds the configuration from the environment with file values
// applied first, so env vars always win.
func Load() *Config {
	fc := loadFile()

	models := make(map[string]string, len(defaultModelMap))
	for k, v := range defaultModelMap {
		models[k] = v
	}
	for k, v := range fc.Models {
		models[k] = v
	}
	if v := os.Getenv("CLAUDE_MODEL_ID"); v != "" {
		models["claude"] = v
	}
	if v := os.Getenv("NOVA_MODEL_ID"); v != "" {
		models["nova"] = v
	}

	defaultModel := fc.DefaultModel
	if defaultModel == "" {
		defaultModel = "nova"
	}

	return &Config{
		Region:       envOrDefault("AWS_REGION", envOrDefault("AWS_DEFAULT_REGION", DefaultRegion)),
		OutputDir:    envOrDefault("OUTPUT_DIR", firstNonEmpty(fc.OutputDir, "data/outputs")),
		DefaultModel: envOrDefault("DEFAULT_MODEL", defaultModel),
		ModelMap:     models,

		Transcription: TranscriptionConfig{
			Bucket:        envOrDefault("S3_BUCKET", fc.Bucket),
			OutputKey:     envOrDefault("TRANSCRIBE_OUTPUT_KEY", "transcription-output/"),
			JobNamePrefix: envOrDefault("TRANSCRIBE_JOB_PREFIX", "medical-transcription"),
			Specialty:     envOrDefault("TRANSCRIBE_SPECIALTY", "PRIMARYCARE"),
			Type:          envOrDefault("TRANSCRIBE_TYPE", "CONVERSATION"),
			MaxSpeakers:   envInt64("TRANSCRIBE_MAX_SPEAKERS", 2),
			LanguageCode:  envOrDefault("TRANSCRIBE_LANGUAGE", "en-US"),
			PollInterval:  envDuration("TRANSCRIBE_POLL_INTERVAL", 10*time.Second),
		},
		Live: LiveConfig{
			Provider:     envOrDefault("LIVE_STT_PROVIDER", "mock"),
			LanguageCode: envOrDefault("LIVE_LANGUAGE", "en-AU"),
			SampleRate:   envInt64("LIVE_SAMPLE_RATE", 16000),
		},
		Kafka: KafkaConfig{
			Enabled:        envBool("KAFKA_ENABLED", false),
			Brokers:        envList("KAFKA_BROKERS"),
			TopicAnalysis:  envOrDefault("KAFKA_TOPIC_ANALYSIS", "clinical.encounter.analyzed"),
			TopicArtefacts: envOrDefault("KAFKA_TOPIC_ARTEFACTS", "clinical.artefact.generated"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", "clinical-scribe"),
		},

		DashboardAddr: envOrDefault("DASHBOARD_ADDR", ":8080"),
		MetricsAddr:   envOrDefault("METRICS_ADDR", ":9090"),
	}
}

// ModelID resolves a short model name ("claude", "nova") to a Bedrock model
// id. Unknown names resolve to themselves so full ids can be passed through.
func (c *Config) ModelID(name string) string {
	if name == "" {
		name = c.DefaultModel
	}
	if id, ok := c.ModelMap[name]; ok {
		return id
	}
	return name
}

func loadFile() fileConfig {
	var paths []string
	if p := os.Getenv("CLINICAL_SCRIBE_CONFIG"); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, "config/models.json", "config.json")

	var fc fileConfig
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(b, &fc); err != nil {
			// A broken config file is skipped, same as a missing one.
			fc = fileConfig{}
			continue
		}
		return fc
	}
	return fc
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
