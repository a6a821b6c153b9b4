package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config is the Remote Task API server configuration.
type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	// DatabaseDSN, when set, is used verbatim instead of the DB_* parts.
	DatabaseDSN string

	HTTPAddr        string
	CORSOrigins     []string
	AuthSecret      string
	ShutdownTimeout time.Duration
}

// Load reads the server configuration from the environment. A YAML file named
// by PLANNER_API_CONFIG may supply the same keys in lower case; environment
// variables win over the file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("db_driver", DriverPostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "planner")
	v.SetDefault("database_dsn", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("auth_secret", "")
	v.SetDefault("shutdown_timeout", "10s")
	v.AutomaticEnv()

	if path := v.GetString("planner_api_config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	driver := strings.ToLower(v.GetString("db_driver"))
	switch driver {
	case DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	// A missing or garbled DB_PORT falls back to the driver default.
	port := v.GetInt("db_port")
	if port <= 0 {
		port = defaultPort(driver)
	}

	return &Config{
		DBDriver:    driver,
		DBHost:      v.GetString("db_host"),
		DBPort:      port,
		DBUser:      v.GetString("db_user"),
		DBPassword:  v.GetString("db_password"),
		DBName:      v.GetString("db_name"),
		DatabaseDSN: v.GetString("database_dsn"),

		HTTPAddr:        v.GetString("http_addr"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		AuthSecret:      v.GetString("auth_secret"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}, nil
}

// ConnString returns the DSN for the configured driver.
func (c *Config) ConnString() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	if c.DBDriver == DriverMySQL {
		mc := mysql.NewConfig()
		mc.User = c.DBUser
		mc.Passwd = c.DBPassword
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.DBHost, c.DBPort)
		mc.DBName = c.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mc.FormatDSN()
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, quoteKV(c.DBUser), quoteKV(c.DBPassword), c.DBName,
	)
}

// AuthEnabled reports whether /api routes require a bearer token.
func (c *Config) AuthEnabled() bool { return c.AuthSecret != "" }

func defaultPort(driver string) int {
	if driver == DriverMySQL {
		return 3306
	}
	return 5432
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// quoteKV quotes a libpq keyword value when it is empty or contains spaces.
func quoteKV(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
