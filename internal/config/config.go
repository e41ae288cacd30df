package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SelectorSettings are the termination thresholds of the adaptive stage
type SelectorSettings struct {
	ConfidenceThreshold       float64
	MaxQuestions              int
	MinQuestionsForConfidence int
}

// AdminSettings configure question bank administrators
type AdminSettings struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt; takes precedence over Password
	JWTSecret    string
	TokenTTL     time.Duration
}

// CORSSettings are echoed into the Access-Control-* headers
type CORSSettings struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// Config is the service configuration, read from the environment
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string // empty disables the quiz cache
	QuizCacheTTL  time.Duration
	HTTPPort      string
	LogLevel      string
	DefaultQuizID string
	Selector      SelectorSettings
	Admin         AdminSettings
	CORS          CORSSettings
}

// Load reads the configuration. A .env file in the working directory is
// applied first when present; real environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "aspireedge"),
		RedisAddr:     strings.TrimPrefix(os.Getenv("REDIS_URI"), "redis://"),
		QuizCacheTTL:  getEnvDuration("QUIZ_CACHE_TTL", 10*time.Minute),
		HTTPPort:      getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DefaultQuizID: getEnv("DEFAULT_QUIZ_ID", "career_interest_quiz_v1"),
		Selector: SelectorSettings{
			ConfidenceThreshold:       getEnvFloat("QUIZ_CONFIDENCE_THRESHOLD", 8),
			MaxQuestions:              getEnvInt("QUIZ_MAX_QUESTIONS", 30),
			MinQuestionsForConfidence: getEnvInt("QUIZ_MIN_QUESTIONS_FOR_CONFIDENCE", 5),
		},
		Admin: AdminSettings{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			Password:     getEnv("ADMIN_PASSWORD", "password123"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:    getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
			TokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 24*time.Hour),
		},
		CORS: CORSSettings{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}
