package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by KNOWTRACE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("KNOWTRACE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// APIKey returns the static API key clients must present. Auth is disabled
// when empty (local development).
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// MasteryThreshold is the p_l above which a skill counts as mastered.
func MasteryThreshold() float64 {
	return floatEnv("MASTERY_THRESHOLD", 0.95)
}

// LevelMasteryThreshold is the p_l required (with the streak) to level up.
func LevelMasteryThreshold() float64 {
	return floatEnv("LEVEL_MASTERY_THRESHOLD", 0.8)
}

// RequiredConsecutive is the correct-answer streak required to level up.
func RequiredConsecutive() int {
	return intEnv("REQUIRED_CONSECUTIVE", 3)
}

// MaxLevel is the highest difficulty tier.
func MaxLevel() int {
	return intEnv("MAX_LEVEL", 10)
}

// ConfidenceThreshold gates pure-DKT selection.
func ConfidenceThreshold() float64 {
	return floatEnv("CONFIDENCE_THRESHOLD", 0.7)
}

// DKTSkillCount is the number of skill slots in the prediction vector.
func DKTSkillCount() int {
	return intEnv("DKT_SKILL_COUNT", 50)
}

// DKTHiddenSize is the length of the hidden-state vector.
func DKTHiddenSize() int {
	return intEnv("DKT_HIDDEN_SIZE", 20)
}

func floatEnv(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
