package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Server struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigin      string
}

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	URLExpiry  time.Duration
}

type Redis struct {
	// URL is empty when the login throttle should stay in-process.
	URL string
}

type Auth struct {
	SessionTTL       time.Duration
	ResetTokenTTL    time.Duration
	BcryptCost       int
	SweepSchedule    string
	LockoutThreshold int
	LockoutBase      time.Duration
	LockoutMax       time.Duration
	LockoutWindow    time.Duration
	RateLimit        float64
	RateBurst        int
	ExposeResetToken bool
}

type Mail struct {
	SendGridKey string
	FromName    string
	FromAddress string
	ResetURL    string
}

type Config struct {
	Server        Server
	DB            DB
	MinIO         MinIO
	Redis         Redis
	Auth          Auth
	Mail          Mail
	MaxUploadSize int64
	MaxAvatarSize int64
	LogLevel      string
	LogFormat     string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// parseDuration falls back to the default instead of failing startup.
func parseDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		log.Printf("config: invalid duration %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return duration
}

func LoadServer() Server {
	return Server{
		Port:            getEnvAsInt("SERVER_PORT", 8080),
		ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: parseDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
	}
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "album"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "album"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		URLExpiry:  parseDuration("MINIO_URL_EXPIRY", time.Hour),
	}
}

func LoadAuth() Auth {
	return Auth{
		SessionTTL:       parseDuration("SESSION_TTL", 30*24*time.Hour),
		ResetTokenTTL:    parseDuration("RESET_TOKEN_TTL", time.Hour),
		BcryptCost:       getEnvAsInt("BCRYPT_COST", 10),
		SweepSchedule:    getEnv("SWEEP_SCHEDULE", "@every 1h"),
		LockoutThreshold: getEnvAsInt("LOCKOUT_THRESHOLD", 5),
		LockoutBase:      parseDuration("LOCKOUT_BASE", time.Minute),
		LockoutMax:       parseDuration("LOCKOUT_MAX", time.Hour),
		LockoutWindow:    parseDuration("LOCKOUT_WINDOW", 24*time.Hour),
		RateLimit:        getEnvAsFloat("AUTH_RATE_LIMIT", 5),
		RateBurst:        getEnvAsInt("AUTH_RATE_BURST", 10),
		ExposeResetToken: getEnvBool("EXPOSE_RESET_TOKEN", false),
	}
}

func LoadMail() Mail {
	return Mail{
		SendGridKey: getEnv("SENDGRID_API_KEY", ""),
		FromName:    getEnv("MAIL_FROM_NAME", "Album"),
		FromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@localhost"),
		ResetURL:    getEnv("PASSWORD_RESET_URL", "http://localhost:5173/reset-password"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server:        LoadServer(),
		DB:            LoadDB(),
		MinIO:         LoadMinIO(),
		Redis:         Redis{URL: getEnv("REDIS_URL", "")},
		Auth:          LoadAuth(),
		Mail:          LoadMail(),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
		MaxAvatarSize: getEnvAsInt64("MAX_AVATAR_SIZE", 2*1024*1024),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}
}
