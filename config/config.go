package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Ticket    TicketConfig
}

type AppConfig struct {
	Port         string
	Env          string
	LogLevel     string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	TimeZone    string
	Path        string
	AutoMigrate bool
	LogLevel    string
}

// DSN returns the key/value connection string understood by both pgx and lib/pq.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// AuthConfig describes the single front-desk operator allowed to open a session.
type AuthConfig struct {
	Enabled              bool
	OperatorUsername     string
	OperatorPasswordHash string
}

type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	// Empty means the header is ignored and clients are keyed by peer address.
	TrustedProxies []netip.Prefix
}

// TicketConfig holds the institution block printed on every E-Ticket.
type TicketConfig struct {
	InstitutionName    string
	InstitutionAddress string
	InstitutionPhone   string
	Title              string
	Footer             string
	DateLayout         string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("APP_CORS_ORIGIN", "*")
	v.SetDefault("APP_READ_TIMEOUT", "15s")
	v.SetDefault("APP_WRITE_TIMEOUT", "30s")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("DB_PATH", "data/patients.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRY", "8h")

	v.SetDefault("AUTH_ENABLED", true)

	v.SetDefault("RATE_LIMIT_LOGIN_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT_LOGIN_BURST", 5)
	v.SetDefault("RATE_LIMIT_TRUSTED_PROXIES", "")

	v.SetDefault("TICKET_INSTITUTION_NAME", "Hospital X South Africa")
	v.SetDefault("TICKET_INSTITUTION_ADDRESS", "76 Maude Street, Corner West Street, Sandton, 2196, Johannesburg")
	v.SetDefault("TICKET_INSTITUTION_PHONE", "Phone +27 21 XXX XXXX")
	v.SetDefault("TICKET_TITLE", "E-Ticket Registration")
	v.SetDefault("TICKET_FOOTER", "Registered at Hospital X, according to the data above")
	v.SetDefault("TICKET_DATE_LAYOUT", "02/01/2006")
}

func LoadConfig() (*Config, error) {
	return Load(".env")
}

// Load reads configuration from the given env file, if it exists, overlaid by
// process environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	readTimeout, err := time.ParseDuration(v.GetString("APP_READ_TIMEOUT"))
	if err != nil {
		readTimeout = 15 * time.Second
	}

	writeTimeout, err := time.ParseDuration(v.GetString("APP_WRITE_TIMEOUT"))
	if err != nil {
		writeTimeout = 30 * time.Second
	}

	trustedProxies, err := parseTrustedProxies(v.GetString("RATE_LIMIT_TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 8 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:         v.GetString("APP_PORT"),
			Env:          v.GetString("APP_ENV"),
			LogLevel:     v.GetString("APP_LOG_LEVEL"),
			CORSOrigin:   v.GetString("APP_CORS_ORIGIN"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		DB: DBConfig{
			Driver:      v.GetString("DB_DRIVER"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			TimeZone:    v.GetString("DB_TIMEZONE"),
			Path:        v.GetString("DB_PATH"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
			LogLevel:    v.GetString("DB_LOG_LEVEL"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Auth: AuthConfig{
			Enabled:              v.GetBool("AUTH_ENABLED"),
			OperatorUsername:     v.GetString("AUTH_OPERATOR_USERNAME"),
			OperatorPasswordHash: v.GetString("AUTH_OPERATOR_PASSWORD_HASH"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: v.GetInt("RATE_LIMIT_LOGIN_PER_MINUTE"),
			LoginBurst:     v.GetInt("RATE_LIMIT_LOGIN_BURST"),
			TrustedProxies: trustedProxies,
		},
		Ticket: TicketConfig{
			InstitutionName:    v.GetString("TICKET_INSTITUTION_NAME"),
			InstitutionAddress: v.GetString("TICKET_INSTITUTION_ADDRESS"),
			InstitutionPhone:   v.GetString("TICKET_INSTITUTION_PHONE"),
			Title:              v.GetString("TICKET_TITLE"),
			Footer:             v.GetString("TICKET_FOOTER"),
			DateLayout:         v.GetString("TICKET_DATE_LAYOUT"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// parseTrustedProxies reads a comma separated list of addresses or CIDR ranges.
func parseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid RATE_LIMIT_TRUSTED_PROXIES entry %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	if c.Auth.Enabled {
		if c.JWT.Secret == "" {
			return errors.New("JWT_SECRET is required when AUTH_ENABLED is true")
		}
		if c.Auth.OperatorUsername == "" || c.Auth.OperatorPasswordHash == "" {
			return errors.New("AUTH_OPERATOR_USERNAME and AUTH_OPERATOR_PASSWORD_HASH are required when AUTH_ENABLED is true")
		}
	}

	return nil
}
