package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogJSON    bool   `yaml:"log_json"`

	ThreadsPerPage int `yaml:"threads_per_page"` // thread list page size
	MaxResponses   int `yaml:"max_responses"`    // default per-thread response cap

	ThreadCooldown   time.Duration `yaml:"thread_cooldown"`
	ResponseCooldown time.Duration `yaml:"response_cooldown"`

	// "replace" or "ignore": what to do with runes that have no Shift_JIS mapping
	LegacyEncodePolicy string `yaml:"legacy_encode_policy"`

	Redis Redis `yaml:"redis"`
	Pg    Pg    `yaml:"pg"`

	Workers int `yaml:"workers"` // background task pool size
}

type Redis struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

type Private struct {
	ShownIdKey         string `yaml:"shown_id_key"` // HMAC key for daily pseudonyms
	TurnstileSiteKey   string `yaml:"turnstile_site_key"`
	TurnstileSecretKey string `yaml:"turnstile_secret_key"`
	PgPassword         string `yaml:"pg_password"`
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Public.ListenAddr == "" {
		c.Public.ListenAddr = ":8080"
	}
	if c.Public.ThreadsPerPage == 0 {
		c.Public.ThreadsPerPage = 20
	}
	if c.Public.MaxResponses == 0 {
		c.Public.MaxResponses = 1000
	}
	if c.Public.ThreadCooldown == 0 {
		c.Public.ThreadCooldown = 15 * time.Minute
	}
	if c.Public.ResponseCooldown == 0 {
		c.Public.ResponseCooldown = 15 * time.Second
	}
	if c.Public.LegacyEncodePolicy == "" {
		c.Public.LegacyEncodePolicy = "replace"
	}
	if c.Public.Workers == 0 {
		c.Public.Workers = 4
	}
}
