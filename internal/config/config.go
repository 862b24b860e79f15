package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/ecogo-motion/internal/detection"
	"github.com/jengzang/ecogo-motion/internal/navigation"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
	"github.com/jengzang/ecogo-motion/internal/sensor"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Sampling   SamplingConfig
	Detection  DetectionConfig
	RoadMatch  RoadMatchConfig
	Navigation NavigationConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	JWTSecret    string
	JWTIssuer    string
	AuthRequired bool
	RateLimit    int
	RateWindow   time.Duration
}

// DatabaseConfig holds the sqlite location
type DatabaseConfig struct {
	Path string
}

// SamplingConfig holds sensor window settings
type SamplingConfig struct {
	SampleInterval time.Duration
	WindowSize     time.Duration
	SlideStep      time.Duration
}

// DetectionConfig holds classifier and fusion settings
type DetectionConfig struct {
	SmoothingWindow     int
	ModelPath           string
	ForceTrajectoryOnly bool
	RoadResultMaxAge    time.Duration
}

// RoadMatchConfig holds road-snapping settings. An empty APIURL disables
// road matching.
type RoadMatchConfig struct {
	APIURL        string
	APIKey        string
	Timeout       time.Duration
	TriggerEvery  int
	MaxTrajectory int
}

// NavigationConfig holds route tracking settings
type NavigationConfig struct {
	LookAhead         int
	MinProgressMeters float64
	OffRouteMeters    float64
}

// TelemetryConfig holds snapshot sink settings. Kafka is enabled when
// brokers are configured.
type TelemetryConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	BufferSize   int
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
			JWTIssuer:    getEnv("JWT_ISSUER", "ecogo-motion"),
			AuthRequired: getEnvAsBool("AUTH_REQUIRED", false),
			RateLimit:    getEnvAsInt("RATE_LIMIT", 600),
			RateWindow:   getEnvAsDuration("RATE_WINDOW", "1m"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/motion/motion.db"),
		},
		Sampling: SamplingConfig{
			SampleInterval: getEnvAsDuration("SAMPLE_INTERVAL", "50ms"),
			WindowSize:     getEnvAsDuration("WINDOW_SIZE", "5s"),
			SlideStep:      getEnvAsDuration("SLIDE_STEP", "2.5s"),
		},
		Detection: DetectionConfig{
			SmoothingWindow:     getEnvAsInt("SMOOTHING_WINDOW", 3),
			ModelPath:           getEnv("MODEL_PATH", ""),
			ForceTrajectoryOnly: getEnvAsBool("FORCE_TRAJECTORY_ONLY", false),
			RoadResultMaxAge:    getEnvAsDuration("ROAD_RESULT_MAX_AGE", "1m"),
		},
		RoadMatch: RoadMatchConfig{
			APIURL:        getEnv("ROADS_API_URL", ""),
			APIKey:        getEnv("ROADS_API_KEY", ""),
			Timeout:       getEnvAsDuration("ROADS_TIMEOUT", "3s"),
			TriggerEvery:  getEnvAsInt("ROADS_TRIGGER_EVERY", 10),
			MaxTrajectory: getEnvAsInt("ROADS_MAX_TRAJECTORY", 100),
		},
		Navigation: NavigationConfig{
			LookAhead:         getEnvAsInt("LOOKAHEAD", 20),
			MinProgressMeters: getEnvAsFloat("MIN_PROGRESS_M", 10),
			OffRouteMeters:    getEnvAsFloat("OFF_ROUTE_M", 50),
		},
		Telemetry: TelemetryConfig{
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "motion-telemetry"),
			BufferSize:   getEnvAsInt("TELEMETRY_BUFFER", 256),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are usable together
func (c *Config) Validate() error {
	if c.Server.AuthRequired && c.Server.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set when AUTH_REQUIRED=true")
	}
	if c.Server.RateLimit < 1 || c.Server.RateWindow <= 0 {
		return errors.New("RATE_LIMIT and RATE_WINDOW must be positive")
	}

	s := c.Sampling
	if s.SampleInterval <= 0 || s.WindowSize <= 0 || s.SlideStep <= 0 {
		return errors.New("SAMPLE_INTERVAL, WINDOW_SIZE and SLIDE_STEP must be positive")
	}
	if s.WindowSize < s.SampleInterval {
		return fmt.Errorf("WINDOW_SIZE %v is shorter than SAMPLE_INTERVAL %v", s.WindowSize, s.SampleInterval)
	}
	if s.SlideStep > s.WindowSize {
		return fmt.Errorf("SLIDE_STEP %v exceeds WINDOW_SIZE %v", s.SlideStep, s.WindowSize)
	}

	if c.Detection.SmoothingWindow < 1 {
		return errors.New("SMOOTHING_WINDOW must be at least 1")
	}
	if c.RoadMatch.TriggerEvery < 2 {
		return errors.New("ROADS_TRIGGER_EVERY must be at least 2")
	}
	if c.RoadMatch.MaxTrajectory < c.RoadMatch.TriggerEvery {
		return errors.New("ROADS_MAX_TRAJECTORY must not be smaller than ROADS_TRIGGER_EVERY")
	}
	if c.Navigation.LookAhead < 1 || c.Navigation.OffRouteMeters <= 0 {
		return errors.New("LOOKAHEAD and OFF_ROUTE_M must be positive")
	}
	if len(c.Telemetry.KafkaBrokers) > 0 && strings.TrimSpace(c.Telemetry.KafkaTopic) == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// DetectionSettings converts the loaded values for the detection package
func (c *Config) DetectionSettings() detection.Config {
	cfg := detection.DefaultConfig()
	cfg.Sampling = sensor.Config{
		SampleInterval: c.Sampling.SampleInterval,
		WindowSize:     c.Sampling.WindowSize,
		SlideStep:      c.Sampling.SlideStep,
	}
	cfg.SmoothingWindow = c.Detection.SmoothingWindow
	cfg.ForceTrajectoryOnly = c.Detection.ForceTrajectoryOnly
	cfg.RoadResultMaxAge = c.Detection.RoadResultMaxAge
	return cfg
}

// RoadMatchSettings converts the loaded values for the roadmatch package
func (c *Config) RoadMatchSettings() roadmatch.Config {
	cfg := roadmatch.DefaultConfig()
	cfg.TriggerEvery = c.RoadMatch.TriggerEvery
	cfg.MaxTrajectory = c.RoadMatch.MaxTrajectory
	cfg.Timeout = c.RoadMatch.Timeout
	return cfg
}

// NavigationSettings converts the loaded values for the navigation package
func (c *Config) NavigationSettings() navigation.Config {
	return navigation.Config{
		LookAhead:         c.Navigation.LookAhead,
		MinProgressMeters: c.Navigation.MinProgressMeters,
		OffRouteMeters:    c.Navigation.OffRouteMeters,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		value, _ = time.ParseDuration(defaultValue)
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
