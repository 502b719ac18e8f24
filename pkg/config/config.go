package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	Scheduler    SchedulerConfig
	Jobs         JobsConfig
	Availability AvailabilityConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the timetable generation strategies.
type SchedulerConfig struct {
	DefaultStrategy          string
	MaxIterations            int
	BacktrackDepth           int
	WorkingDays              []string
	WorkStart                string
	WorkEnd                  string
	SlotDurationMinutes      int
	PopulationSize           int
	Generations              int
	MutationRate             float64
	TeacherAvailabilityHard  bool
	MaxSessionsPerRequest    int
}

// JobsConfig governs the async generation job manager.
type JobsConfig struct {
	Workers    int
	BufferSize int
	ResultTTL  time.Duration
	PruneEvery time.Duration
}

// AvailabilityConfig controls caching of resolved free intervals.
type AvailabilityConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		DefaultStrategy:         v.GetString("SCHEDULER_DEFAULT_STRATEGY"),
		MaxIterations:           v.GetInt("SCHEDULER_MAX_ITERATIONS"),
		BacktrackDepth:          v.GetInt("SCHEDULER_BACKTRACK_DEPTH"),
		WorkingDays:             splitAndTrim(v.GetString("SCHEDULER_WORKING_DAYS")),
		WorkStart:               v.GetString("SCHEDULER_WORK_START"),
		WorkEnd:                 v.GetString("SCHEDULER_WORK_END"),
		SlotDurationMinutes:     v.GetInt("SCHEDULER_SLOT_DURATION_MINUTES"),
		PopulationSize:          v.GetInt("SCHEDULER_POPULATION_SIZE"),
		Generations:             v.GetInt("SCHEDULER_GENERATIONS"),
		MutationRate:            v.GetFloat64("SCHEDULER_MUTATION_RATE"),
		TeacherAvailabilityHard: v.GetBool("SCHEDULER_TEACHER_AVAILABILITY_HARD"),
		MaxSessionsPerRequest:   v.GetInt("SCHEDULER_MAX_SESSIONS_PER_REQUEST"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		ResultTTL:  parseDuration(v.GetString("JOBS_RESULT_TTL"), time.Hour),
		PruneEvery: parseDuration(v.GetString("JOBS_PRUNE_INTERVAL"), 10*time.Minute),
	}

	cfg.Availability = AvailabilityConfig{
		CacheEnabled: v.GetBool("AVAILABILITY_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "scheduler_core")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_DEFAULT_STRATEGY", "greedy")
	v.SetDefault("SCHEDULER_MAX_ITERATIONS", 5000)
	v.SetDefault("SCHEDULER_BACKTRACK_DEPTH", 3)
	v.SetDefault("SCHEDULER_WORKING_DAYS", "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY")
	v.SetDefault("SCHEDULER_WORK_START", "08:00")
	v.SetDefault("SCHEDULER_WORK_END", "18:00")
	v.SetDefault("SCHEDULER_SLOT_DURATION_MINUTES", 60)
	v.SetDefault("SCHEDULER_POPULATION_SIZE", 40)
	v.SetDefault("SCHEDULER_GENERATIONS", 120)
	v.SetDefault("SCHEDULER_MUTATION_RATE", 0.08)
	v.SetDefault("SCHEDULER_TEACHER_AVAILABILITY_HARD", true)
	v.SetDefault("SCHEDULER_MAX_SESSIONS_PER_REQUEST", 512)

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 16)
	v.SetDefault("JOBS_RESULT_TTL", "1h")
	v.SetDefault("JOBS_PRUNE_INTERVAL", "10m")

	v.SetDefault("AVAILABILITY_CACHE_ENABLED", false)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
