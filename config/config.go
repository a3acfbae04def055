package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration for both the collection
// server and the collect client. Values come from the environment (via an
// optional .env file) with workable local defaults.
type Config struct {
	// Server
	ServerAddr     string
	PromptSeedFile string // watched for new prompts; empty disables the watcher

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO object storage for utterance audio
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// One-time upload links
	UploadLinkSecret string
	UploadLinkTTL    time.Duration

	// Client
	APIBaseURL    string
	UploadTimeout time.Duration
	ProfilePath   string

	// Microphone capture
	FFmpegPath   string
	InputFormat  string // e.g. "pulse", "alsa", "avfoundation"
	InputDevice  string
	SampleRate   int
	Channels     int

	// Quality control
	MinDurationSec float64
	SilenceCutoff  float64
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration or returns a
// default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// defaultProfilePath keeps the speaker profile under the home directory
// so a stock environment works on first run.
func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "voxcollect-profile.json"
	}
	return filepath.Join(home, ".voxcollect", "profile.json")
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load does not override variables already set.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		PromptSeedFile: getEnv("PROMPT_SEED_FILE", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "voxcollect"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "utterances"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		UploadLinkSecret: getEnv("UPLOAD_LINK_SECRET", "dev-only-upload-link-secret"),
		UploadLinkTTL:    getEnvDuration("UPLOAD_LINK_TTL", 10*time.Minute),

		APIBaseURL:    getEnv("API_BASE_URL", "http://127.0.0.1:8080"),
		UploadTimeout: getEnvDuration("UPLOAD_TIMEOUT", 30*time.Second),
		ProfilePath:   getEnv("PROFILE_PATH", defaultProfilePath()),

		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
		InputFormat:  getEnv("MIC_INPUT_FORMAT", "pulse"),
		InputDevice:  getEnv("MIC_INPUT_DEVICE", "default"),
		SampleRate:   getEnvInt("MIC_SAMPLE_RATE", 16000),
		Channels:     getEnvInt("MIC_CHANNELS", 1),

		MinDurationSec: getEnvFloat("QC_MIN_DURATION_SEC", 2.0),
		SilenceCutoff:  getEnvFloat("QC_SILENCE_CUTOFF", 0.2),
	}
}
