package config

import (
	"fmt"
	"goal-navigator/internal/rank"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig     *AppConfig
	AIConfig      *AIConfig
	BrowserConfig *BrowserConfig
	AgentConfig   *AgentConfig
	Scoring       *rank.Weights
}

type AppConfig struct {
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	Debug          bool   `envconfig:"DEBUG" default:"false"`
	LogFile        string `envconfig:"LOG_FILE"`
	LogMaxSizeMB   int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups  int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	LogMaxAgeDays  int    `envconfig:"LOG_MAX_AGE_DAYS" default:"7"`
	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
}

type AIConfig struct {
	Provider    string `envconfig:"AI_PROVIDER" default:"anthropic"`
	APIKey      string `envconfig:"AI_API_KEY" required:"true"`
	Model       string `envconfig:"AI_MODEL" default:"claude-sonnet-4-20250514"`
	BaseURL     string `envconfig:"AI_BASE_URL"`
	APIVersion  string `envconfig:"AI_API_VERSION" default:"2024-06-01"`
	MaxTokens   int    `envconfig:"AI_MAX_TOKENS" default:"1024"`
	HistorySize int    `envconfig:"AI_HISTORY_SIZE" default:"6"`
}

type BrowserConfig struct {
	Headless       bool   `envconfig:"BROWSER_HEADLESS" default:"false"`
	SlowMo         int    `envconfig:"BROWSER_SLOW_MO" default:"100"`
	Timeout        int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	UserDataDir    string `envconfig:"BROWSER_USER_DATA_DIR" default:"./browser-data"`
	UseScreenshots bool   `envconfig:"BROWSER_USE_SCREENSHOTS" default:"true"`
	ViewportWidth  int    `envconfig:"BROWSER_VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int    `envconfig:"BROWSER_VIEWPORT_HEIGHT" default:"800"`
	MaxCandidates  int    `envconfig:"BROWSER_MAX_CANDIDATES" default:"300"`
	MouseSteps     int    `envconfig:"BROWSER_MOUSE_STEPS" default:"10"`
}

type AgentConfig struct {
	MaxSteps             int           `envconfig:"AGENT_MAX_STEPS" default:"10"`
	GoalConfidence       float64       `envconfig:"AGENT_GOAL_CONFIDENCE" default:"0.8"`
	MaxRepeats           int           `envconfig:"AGENT_MAX_REPEATS" default:"3"`
	MaxConsecutiveErrors int           `envconfig:"AGENT_MAX_CONSECUTIVE_ERRORS" default:"3"`
	StepDelay            time.Duration `envconfig:"AGENT_STEP_DELAY" default:"1s"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	return &conf, nil
}

// Default returns the configuration used when no environment is set, minus the API key.
func Default() *Config {
	weights := rank.DefaultWeights()

	return &Config{
		AppConfig: &AppConfig{LogLevel: "info", LogMaxSizeMB: 50, LogMaxBackups: 3, LogMaxAgeDays: 7},
		AIConfig: &AIConfig{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-20250514",
			APIVersion:  "2024-06-01",
			MaxTokens:   1024,
			HistorySize: 6,
		},
		BrowserConfig: &BrowserConfig{
			SlowMo:         100,
			Timeout:        30000,
			UserDataDir:    "./browser-data",
			UseScreenshots: true,
			ViewportWidth:  1280,
			ViewportHeight: 800,
			MaxCandidates:  300,
			MouseSteps:     10,
		},
		AgentConfig: &AgentConfig{
			MaxSteps:             10,
			GoalConfidence:       0.8,
			MaxRepeats:           3,
			MaxConsecutiveErrors: 3,
			StepDelay:            time.Second,
		},
		Scoring: &weights,
	}
}
