package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"
	_ "time/tzdata" // view_timezone must resolve in minimal containers

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port                 int           `yaml:"port" validate:"gte=0,lte=65535"`
	Database             Database      `yaml:"database"`
	ThreadCacheTTL       time.Duration `yaml:"thread_cache_ttl"` // 120s when omitted
	// keeps the list until a mutation clears it; overrides thread_cache_ttl
	ThreadCacheUnbounded bool          `yaml:"thread_cache_unbounded"`
	ViewTimezone         string        `yaml:"view_timezone" validate:"required"`
	SecureCookies        bool          `yaml:"secure_cookies"`
	JwtTTL               time.Duration `yaml:"jwt_ttl"` // lifetime of tokens minted by the CLI
	AllowedOrigins       []string      `yaml:"allowed_origins"`
	Log                  Log           `yaml:"log"`
	Revalidate           Revalidate    `yaml:"revalidate"`
}

type Database struct {
	Driver     string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	SqlitePath string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Revalidate struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel" validate:"required_if=Enabled true"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
	DSN      string `yaml:"dsn"` // overrides the fields above when set
}

type Private struct {
	Pg            Pg     `yaml:"pg"`
	JwtKey        string `yaml:"jwt_key" validate:"required"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
}

func (p Pg) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Dbname)
}

// DataSource returns the driver name and DSN for the configured database.
func (c *Config) DataSource() (string, string) {
	if c.Public.Database.Driver == "sqlite" {
		return "sqlite", c.Public.Database.SqlitePath
	}
	return "postgres", c.Private.Pg.ConnString()
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

// ViewLocation is the fixed time zone that defines a "day" for view dedup.
func (c *Config) ViewLocation() *time.Location {
	loc, err := time.LoadLocation(c.Public.ViewTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// env overrides for values that differ per deployment
func applyEnv(cfg *Config) {
	if v := os.Getenv("FEEDBACK_JWT_KEY"); v != "" {
		cfg.Private.JwtKey = v
	}
	if v := os.Getenv("FEEDBACK_DB_DSN"); v != "" {
		cfg.Private.Pg.DSN = v
	}
	if v := os.Getenv("FEEDBACK_REDIS_ADDR"); v != "" {
		cfg.Private.RedisAddr = v
	}
	if v := os.Getenv("FEEDBACK_REDIS_PASSWORD"); v != "" {
		cfg.Private.RedisPassword = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Public.Port = port
		}
	}
}

const DefaultThreadCacheTTL = 120 * time.Second

func applyDefaults(cfg *Config) {
	if cfg.Public.ViewTimezone == "" {
		cfg.Public.ViewTimezone = "UTC"
	}
	switch {
	case cfg.Public.ThreadCacheUnbounded:
		cfg.Public.ThreadCacheTTL = 0
	case cfg.Public.ThreadCacheTTL == 0:
		cfg.Public.ThreadCacheTTL = DefaultThreadCacheTTL
	}
	if cfg.Public.JwtTTL == 0 {
		cfg.Public.JwtTTL = 24 * time.Hour
	}
	if cfg.Public.Port == 0 {
		cfg.Public.Port = 8080
	}
	if cfg.Public.Log.Level == "" {
		cfg.Public.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Public.ViewTimezone); err != nil {
		return fmt.Errorf("view_timezone: %w", err)
	}
	if c.Public.ThreadCacheTTL < 0 {
		return fmt.Errorf("thread_cache_ttl must not be negative")
	}
	return nil
}

func MustLoad(configFolder string) *Config {
	// .env is optional; real environment wins over it
	_ = godotenv.Load(path.Join(configFolder, ".env"))

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}
