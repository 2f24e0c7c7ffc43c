package configuration

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/garage/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	var found []string
	for _, file := range envFiles {
		if fs.FileExists(file) {
			found = append(found, file)
		}
	}
	if len(found) == 0 {
		return 0, nil
	}
	return len(found), godotenv.Load(found...)
}

type DatabaseOptions struct {
	// Opts is the libpq keyword/value DSN built from the fields below. Both
	// pgxpool and lib/pq accept it.
	Opts           string        `env:"-"`
	Name           string        `env:"DB_NAME" envDefault:"garage"`
	Host           string        `env:"DB_HOST" envDefault:"localhost"`
	Port           string        `env:"DB_PORT" envDefault:"5432"`
	User           string        `env:"DB_USER" envDefault:"postgres"`
	Password       string        `env:"DB_PASSWORD" envDefault:"postgres"`
	SSLMode        string        `env:"DB_SSLMODE" envDefault:"disable"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
}

func (d *DatabaseOptions) ConnectionString() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"dbname=" + d.Name,
		"password=" + d.Password,
		"sslmode=" + d.SSLMode,
	}
	if secs := int(d.ConnectTimeout / time.Second); secs > 0 {
		parts = append(parts, "connect_timeout="+strconv.Itoa(secs))
	}
	return strings.Join(parts, " ")
}

type LogOptions struct {
	Level      string `env:"LOG_LEVEL" envDefault:"error"`
	Path       string `env:"LOG_PATH" envDefault:"./logs/workshop.log"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"20"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"garage-workshop"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

// BillNumberOptions configures job card numbering. Table may be schema
// qualified ("garage.jobcards").
type BillNumberOptions struct {
	Prefix      string        `env:"BILLNO_PREFIX" envDefault:"JB"`
	Table       string        `env:"BILLNO_TABLE" envDefault:"jobcards"`
	Column      string        `env:"BILLNO_COLUMN" envDefault:"bill_number"`
	LockTimeout time.Duration `env:"BILLNO_LOCK_TIMEOUT" envDefault:"5s"`
}

func (b *BillNumberOptions) Validate() error {
	b.Prefix = strings.TrimSpace(b.Prefix)
	var errs []error
	if b.Prefix == "" {
		errs = append(errs, errors.New("BILLNO_PREFIX must not be empty"))
	} else if strings.Contains(b.Prefix, "-") {
		errs = append(errs, fmt.Errorf("BILLNO_PREFIX must not contain '-', got %q", b.Prefix))
	}
	if strings.TrimSpace(b.Table) == "" || strings.TrimSpace(b.Column) == "" {
		errs = append(errs, errors.New("BILLNO_TABLE and BILLNO_COLUMN must not be empty"))
	}
	if b.LockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("BILLNO_LOCK_TIMEOUT must be positive, got %s", b.LockTimeout))
	}
	return errors.Join(errs...)
}

type InvoiceOptions struct {
	Currency   string `env:"INVOICE_CURRENCY" envDefault:"INR"`
	ShopName   string `env:"INVOICE_SHOP_NAME" envDefault:"Garage"`
	ExportPath string `env:"INVOICE_EXPORT_PATH" envDefault:"./invoices"`
}

// Validate upper-cases the currency code, which must be ISO 4217 shaped.
func (o *InvoiceOptions) Validate() error {
	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	if len(o.Currency) != 3 {
		return fmt.Errorf("INVOICE_CURRENCY must be a 3-letter code, got %q", o.Currency)
	}
	return nil
}

type Configuration struct {
	Database      DatabaseOptions
	Log           LogOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	BillNumber    BillNumberOptions
	Invoice       InvoiceOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`

	logFile io.Closer
	logger  *logrus.Logger
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

// LogrusLogLevel maps LOG_LEVEL to a logrus level. "silent" keeps only
// panics; anything unparsable falls back to error.
func (c *Configuration) LogrusLogLevel() logrus.Level {
	if c.Log.Level == "silent" {
		return logrus.PanicLevel
	}
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.ErrorLevel
	}
	return level
}

func (c *Configuration) validate() error {
	var errs []error
	if err := c.BillNumber.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bill number configuration: %w", err))
	}
	if err := c.Invoice.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("invoice configuration: %w", err))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.ServerPort))
	}
	return errors.Join(errs...)
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		for _, file := range envFiles {
			log.Printf("env file not found: %s", filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), logging.FileOptions{
		Path:       c.Log.Path,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	})
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	host := "localhost"
	if c.GoAppEnvironment == Production {
		host = ""
	}
	c.SocketAddress = net.JoinHostPort(host, strconv.Itoa(c.ServerPort))
	return nil
}

// Unload closes the log file. It is safe to call more than once.
func (c *Configuration) Unload() {
	if c.logFile == nil {
		return
	}
	if err := c.logFile.Close(); err != nil {
		log.Printf("failed to close log file: %v", err)
	}
	c.logFile = nil
}
