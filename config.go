package dragondb

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// Config holds connection and template settings.
// All fields can be populated from environment variables with LoadConfig.
type Config struct {
	// Driver selects the dialect: mysql, sqlite3 or pgx.
	Driver string `env:"DB_DRIVER" envDefault:"mysql"`

	// DSN overrides the connection string built from the fields below.
	DSN string `env:"DB_DSN"`

	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	// Name is the database name, or the file path for SQLite.
	Name    string `env:"DB_NAME"`
	Charset string `env:"DB_CHARSET" envDefault:"utf8mb4"`

	// ConnectTimeout bounds connection establishment. It is the only
	// timeout applied by the package.
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`

	// ParamChar is the placeholder marker.
	ParamChar string `env:"DB_PARAM_CHAR" envDefault:"%"`
	// NamedSeparator introduces a named reference: %s_name.
	NamedSeparator string `env:"DB_NAMED_SEPARATOR" envDefault:"_"`

	// NestedTransactions turns nested StartTransaction calls into savepoints.
	NestedTransactions bool `env:"DB_NESTED_TRANSACTIONS" envDefault:"false"`
	// NullAsEmpty renders nil bound to %? as '' instead of NULL.
	NullAsEmpty bool `env:"DB_NULL_AS_EMPTY" envDefault:"false"`

	ParseCacheSize int `env:"DB_PARSE_CACHE_SIZE" envDefault:"256"`
}

// LoadConfig reads a Config from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the engine cannot work with.
func (c Config) Validate() error {
	if _, err := DialectFor(c.Driver); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if c.ParamChar == "" {
		return fmt.Errorf("%w: empty placeholder marker", ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	return nil
}

// withDefaults fills fields left empty by programmatic callers.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.ParamChar == "" {
		c.ParamChar = "%"
	}
	if c.NamedSeparator == "" {
		c.NamedSeparator = "_"
	}
	if c.ParseCacheSize == 0 {
		c.ParseCacheSize = DefaultParseCacheSize
	}
	return c
}

// dataSource builds the driver connection string.
func (c Config) dataSource(d *Dialect) string {
	if c.DSN != "" {
		return c.DSN
	}
	switch d.kind {
	case kindSQLite:
		if c.Name == "" {
			return ":memory:"
		}
		return c.Name
	case kindPostgreSQL:
		return c.postgresDSN()
	}
	return c.mysqlDSN()
}

func (c Config) mysqlDSN() string {
	port := c.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	mc.DBName = c.Name
	mc.Timeout = c.ConnectTimeout
	if c.Charset != "" {
		mc.Params = map[string]string{"charset": c.Charset}
	}
	return mc.FormatDSN()
}

func (c Config) postgresDSN() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	q := url.Values{}
	if c.ConnectTimeout > 0 {
		secs := max(int(c.ConnectTimeout.Round(time.Second)/time.Second), 1)
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
