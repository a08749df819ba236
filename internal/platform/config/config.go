package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	// Bootstrap admin, created on start when no admin exists yet.
	Admin AdminConfig `yaml:"admin"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Auth     bool   `yaml:"auth"`
	// mandatory | opportunistic | none
	TLS    string `yaml:"tls"`
	Locale string `yaml:"locale"`
}

type ReservationConfig struct {
	SweepCron    string `yaml:"sweep_cron"`
	SweepOnStart bool   `yaml:"sweep_on_start"`
}

type Config struct {
	Version     string            `yaml:"version"`
	Mode        string            `yaml:"mode"`
	Server      ServerConfig      `yaml:"server"`
	DB          DatabaseConfig    `yaml:"database"`
	Certificate Certs             `yaml:"certificate"`
	Auth        AuthConfig        `yaml:"auth"`
	Mail        MailConfig        `yaml:"mail"`
	Reservation ReservationConfig `yaml:"reservation"`
}

// Defaults are development values; release deployments override them in the file or env.
func Defaults() Config {
	return Config{
		Mode: "dev",
		Server: ServerConfig{
			Addr:        ":8443",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		DB: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			Username: "library",
			DBName:   "library",
		},
		Auth: AuthConfig{
			JWTSecret: "dev-secret-key",
			TokenTTL:  24 * time.Hour,
		},
		Mail: MailConfig{
			Port:   587,
			Auth:   true,
			TLS:    "opportunistic",
			Locale: "ru",
		},
		Reservation: ReservationConfig{
			SweepCron: "0 9 * * *",
		},
	}
}

// Load applies defaults, then the yaml file, then environment overrides for secrets.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LIBRARY_DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("LIBRARY_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LIBRARY_MAIL_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
}

func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("invalid mode %q: want dev or release", c.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Reservation.SweepCron == "" {
		return fmt.Errorf("reservation.sweep_cron is required")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail.host and mail.from are required when mail is enabled")
	}
	return nil
}
