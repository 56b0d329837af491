package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging         LoggingConfig         `yaml:"logging"`
	Server          ServerConfig          `yaml:"server"`
	Redis           RedisConfig           `yaml:"redis"`
	Mongo           MongoConfig           `yaml:"mongo"`
	Roster          RosterConfig          `yaml:"roster"`
	News            NewsConfig            `yaml:"news"`
	LLM             LLMConfig             `yaml:"llm"`
	GenerationQuota GenerationQuotaConfig `yaml:"generation_quota"`
	Retention       RetentionConfig       `yaml:"retention"`
	Sweeper         SweeperConfig         `yaml:"sweeper"`
	Events          EventsConfig          `yaml:"events"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	// StoreTimeout bounds every store-backed operation of a single request.
	StoreTimeout time.Duration `yaml:"store_timeout"`
	// GenerateTimeout bounds the whole generation flow including upstream calls.
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
}

type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	MaxIdle     int           `yaml:"max_idle"`
	MaxActive   int           `yaml:"max_active"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// MongoConfig is optional: with an empty URI generation logs and the event
// archive are disabled.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RosterConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type NewsConfig struct {
	// SearchURL is an RSS search endpoint; the subject name is sent as "q".
	SearchURL string        `yaml:"search_url"`
	Limit     int           `yaml:"limit"`
	Timeout   time.Duration `yaml:"timeout"`
}

type LLMConfig struct {
	Provider     string  `yaml:"provider"`
	ModelName    string  `yaml:"model_name"`
	APIKey       string  `yaml:"-"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int32   `yaml:"max_tokens"`
	PromptPrefix string  `yaml:"prompt_prefix"`
}

// GenerationQuotaConfig caps calls to the text generation provider.
// Values <= 0 mean "no limit" in that direction.
type GenerationQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type RetentionConfig struct {
	RecordTTL    time.Duration `yaml:"record_ttl"`
	VoteGuardTTL time.Duration `yaml:"vote_guard_ttl"`
	TopViewTTL   time.Duration `yaml:"top_view_ttl"`
	TeamsTTL     time.Duration `yaml:"teams_ttl"`
	RosterTTL    time.Duration `yaml:"roster_ttl"`
	PlayerTTL    time.Duration `yaml:"player_ttl"`
	NewsTTL      time.Duration `yaml:"news_ttl"`
}

type SweeperConfig struct {
	// Schedule is a standard five-field cron expression evaluated in UTC.
	Schedule string        `yaml:"schedule"`
	Timeout  time.Duration `yaml:"timeout"`
}

type EventsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Brokers    string `yaml:"-"`
	GroupID    string `yaml:"group_id"`
	Partitions int    `yaml:"partitions"`
}

var config *AppConfig

// InitApp loads .env and config.yaml and stores the result globally.
// A missing config.yaml is not an error; defaults apply.
func InitApp() {
	c, err := Load(GetBasePath())
	if err != nil {
		panic(err)
	}
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// Load reads configuration from dir, applies environment overrides and fills
// defaults.
func Load(dir string) (AppConfig, error) {
	_ = godotenv.Load(filepath.Join(dir, ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(filepath.Join(dir, CONFIG_FILE))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return AppConfig{}, err
		}
	}

	applyEnv(&c)
	applyDefaults(&c)
	return c, nil
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		c.Events.Brokers = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		c.Events.GroupID = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.StoreTimeout <= 0 {
		c.Server.StoreTimeout = 3 * time.Second
	}
	if c.Server.GenerateTimeout <= 0 {
		c.Server.GenerateTimeout = 45 * time.Second
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.MaxIdle <= 0 {
		c.Redis.MaxIdle = 8
	}
	if c.Redis.IdleTimeout <= 0 {
		c.Redis.IdleTimeout = 5 * time.Minute
	}

	if c.Mongo.Database == "" {
		c.Mongo.Database = "roastboard"
	}

	if c.Roster.BaseURL == "" {
		c.Roster.BaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	}
	if c.Roster.Timeout <= 0 {
		c.Roster.Timeout = 10 * time.Second
	}

	if c.News.SearchURL == "" {
		c.News.SearchURL = "https://news.google.com/rss/search"
	}
	if c.News.Limit <= 0 {
		c.News.Limit = 5
	}
	if c.News.Timeout <= 0 {
		c.News.Timeout = 10 * time.Second
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.ModelName == "" {
		c.LLM.ModelName = "gemini-2.5-flash"
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.8
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 500
	}

	if c.Retention.RecordTTL <= 0 {
		c.Retention.RecordTTL = 7 * 24 * time.Hour
	}
	if c.Retention.VoteGuardTTL <= 0 {
		c.Retention.VoteGuardTTL = 7 * 24 * time.Hour
	}
	if c.Retention.TopViewTTL <= 0 {
		c.Retention.TopViewTTL = 5 * time.Minute
	}
	if c.Retention.TeamsTTL <= 0 {
		c.Retention.TeamsTTL = 24 * time.Hour
	}
	if c.Retention.RosterTTL <= 0 {
		c.Retention.RosterTTL = time.Hour
	}
	if c.Retention.PlayerTTL <= 0 {
		c.Retention.PlayerTTL = 30 * time.Minute
	}
	if c.Retention.NewsTTL <= 0 {
		c.Retention.NewsTTL = 30 * time.Minute
	}

	if c.Sweeper.Schedule == "" {
		c.Sweeper.Schedule = "0 3 * * *"
	}
	if c.Sweeper.Timeout <= 0 {
		c.Sweeper.Timeout = 2 * time.Minute
	}

	if c.Events.GroupID == "" {
		c.Events.GroupID = "roast-board-archiver"
	}
	if c.Events.Partitions <= 0 {
		c.Events.Partitions = 3
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
