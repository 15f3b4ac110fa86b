package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Engine    EngineConfig
	Storage   StorageConfig
	S3        S3Config
	MediaHub  MediaHubConfig
	Clients   map[string]string // auth token -> domain
	Pipeline  PipelineConfig
}

type EngineConfig struct {
	URL string // face recognition engine base URL (defaults to http://localhost:8000)
}

type StorageConfig struct {
	UploadsDir      string // temporary uploads, one subfolder per domain
	StagingDir      string // staging corpus (storage/recognized_faces)
	ProductionDir   string // production reference corpus the engine searches against
	NameMappingPath string // JSON file with normalized -> original name mappings
	TrainingDir     string // bulk-training input, one subfolder per person
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type MediaHubConfig struct {
	URL   string
	Token string
}

// PipelineConfig carries the tuning constants from the embedded defaults.yaml.
type PipelineConfig struct {
	Validation  ValidationConfig  `yaml:"validation"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Quota       QuotaConfig       `yaml:"quota"`
	Sync        SyncConfig        `yaml:"sync"`
}

type ValidationConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
	MinFaceSize   int     `yaml:"min_face_size"`
	BlurThreshold float64 `yaml:"blur_threshold"`
	SizeRatio     float64 `yaml:"size_ratio"`
}

type RecognitionConfig struct {
	Threshold        float64 `yaml:"threshold"`
	ClusterTolerance float64 `yaml:"cluster_tolerance"`
	ResizeMaxDim     int     `yaml:"resize_max_dim"`
	CropHeight       int     `yaml:"crop_height"`
}

type ScoringConfig struct {
	AvgDistanceWeight float64 `yaml:"avg_distance_weight"`
	MinDistanceWeight float64 `yaml:"min_distance_weight"`
	OccurrenceWeight  float64 `yaml:"occurrence_weight"`
}

type QuotaConfig struct {
	MaxTotalImages int `yaml:"max_total_images"`
	MaxDailyImages int `yaml:"max_daily_images"`
}

type SyncConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// envStr reads an environment variable with a fallback default.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// parseClients parses the CLIENTS_TOKENS env var (JSON object token -> domain).
func parseClients(raw string) map[string]string {
	clients := make(map[string]string)
	if raw == "" {
		return clients
	}
	if err := json.Unmarshal([]byte(raw), &clients); err != nil {
		// A broken token table means nobody can authenticate; fail loudly.
		panic("failed to parse CLIENTS_TOKENS: " + err.Error())
	}
	return clients
}

func Load() *Config {
	var pipeline PipelineConfig
	if err := yaml.Unmarshal(defaultsYAML, &pipeline); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Engine: EngineConfig{
			URL: envStr("ENGINE_URL", "http://localhost:8000"),
		},
		Storage: StorageConfig{
			UploadsDir:      envStr("STORAGE_UPLOADS_DIR", "storage/uploads"),
			StagingDir:      envStr("STORAGE_STAGING_DIR", "storage/recognized_faces"),
			ProductionDir:   envStr("STORAGE_PRODUCTION_DIR", "storage/recognized_faces_prod"),
			NameMappingPath: envStr("STORAGE_NAME_MAPPING_PATH", "storage/name_mapping.json"),
			TrainingDir:     envStr("STORAGE_TRAINING_DIR", "storage/training"),
		},
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    os.Getenv("S3_DEFAULT_REGION"),
			AccessKey: os.Getenv("S3_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Bucket:    envStr("S3_BUCKET", "facerec"),
		},
		MediaHub: MediaHubConfig{
			URL:   os.Getenv("MEDIAHUB_URL"),
			Token: os.Getenv("MEDIAHUB_TOKEN"),
		},
		Clients:  parseClients(os.Getenv("CLIENTS_TOKENS")),
		Pipeline: pipeline,
	}
}
