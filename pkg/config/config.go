package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	GitHub GitHubConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type GitHubConfig struct {
	Token          string
	Usernames      []string
	BaseURL        string
	RequestTimeout time.Duration
	RepoLimit      int
}

type LogConfig struct {
	Level string
}

// DefaultUsernames is the roster served when GITHUB_USERNAMES is not set.
var DefaultUsernames = []string{
	"Swanjith",
	"Yogeshwara7",
	"AKill-17",
	"KarthikeyaJ",
	"Sumanth-l",
	"C0deNe0",
	"BNsrujan",
	"ShettyVinith",
	"Dhanraj-SH",
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	usernames, err := ParseUsernames(getEnv("GITHUB_USERNAMES", strings.Join(DefaultUsernames, ",")))
	if err != nil {
		return err
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		GitHub: GitHubConfig{
			// A missing token is not a startup error; requests go out
			// unauthenticated and fail per user if GitHub refuses them.
			Token:          getEnv("GITHUB_TOKEN", ""),
			Usernames:      usernames,
			BaseURL:        getEnv("GITHUB_API_URL", ""),
			RequestTimeout: getEnvAsDuration("GITHUB_REQUEST_TIMEOUT", 10*time.Second),
			RepoLimit:      getEnvAsInt("GITHUB_REPO_LIMIT", 5),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return nil
}

// ParseUsernames splits a comma separated roster, keeping order.
// Empty rosters and duplicate logins are rejected.
func ParseUsernames(raw string) ([]string, error) {
	var usernames []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		username := strings.TrimSpace(part)
		if username == "" {
			continue
		}
		// GitHub logins are case-insensitive
		key := strings.ToLower(username)
		if seen[key] {
			return nil, fmt.Errorf("duplicate username in roster: %s", username)
		}
		seen[key] = true
		usernames = append(usernames, username)
	}

	if len(usernames) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	return usernames, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
