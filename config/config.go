package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	configFileEnvName = "REFSEARCH_CONFIG_FILE"
	envPrefix         = "REFSEARCH"
	redacted          = "<redacted>"
)

type source struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

func (s source) Source() domain.Source {
	return domain.Source{Path: s.Path, Sheet: s.Sheet}
}

type sources struct {
	Catalog  source `mapstructure:"catalog"`
	Stock    source `mapstructure:"stock"`
	Discount source `mapstructure:"discount"`
}

type session struct {
	Secret       string        `mapstructure:"secret"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type auth struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// Enabled reports whether the login gate is on.
func (a auth) Enabled() bool {
	return a.Username != ""
}

type redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type selection struct {
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether all TLS files are set.
func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type topic struct {
	Name              string `mapstructure:"name"`
	Partitions        int32  `mapstructure:"partitions"`
	ReplicationFactor int16  `mapstructure:"replication_factor"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	SearchEventsTopic  topic    `mapstructure:"search_events_topic"`
	TLS                tlsFiles `mapstructure:"tls"`
}

// Enabled reports whether search events are produced.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type loader struct {
	CacheSize int `mapstructure:"cache_size"`
}

type Config struct {
	LogLevel       slog.Level     `mapstructure:"log_level"`
	HTTPServerAddr string         `mapstructure:"http_server_addr"`
	Sources        sources        `mapstructure:"sources"`
	Columns        domain.Columns `mapstructure:"columns"`
	Loader         loader         `mapstructure:"loader"`
	Session        session        `mapstructure:"session"`
	Auth           auth           `mapstructure:"auth"`
	Selection      selection      `mapstructure:"selection"`
	Redis          redis          `mapstructure:"redis"`
	Broker         broker         `mapstructure:"broker"`
}

var defaults = map[string]any{
	"log_level":        "info",
	"http_server_addr": ":8080",

	"sources.catalog.path":   "BBDD REFERENCIAS 2025 AGOSTO.xlsx",
	"sources.catalog.sheet":  "",
	"sources.stock.path":     "BBDD Stocks.xlsx",
	"sources.stock.sheet":    "",
	"sources.discount.path":  "NSC.xlsx",
	"sources.discount.sheet": "",

	"columns.catalog.item_code":              "Item Code",
	"columns.catalog.oee_second_item_number": "OEE Second Item Number",
	"columns.catalog.catalog_description":    "Catalog Description",
	"columns.catalog.item_long_description":  "Item Long Description",
	"columns.catalog.list_price":             "List Price ES",
	"columns.catalog.stocking_type":          "Stocking Type",
	"columns.catalog.primary_image_url":      "<Primary Image.|Node|.Deep Link - 160px>",
	"columns.catalog.discount_group_key":     "<Discount Link.|Node|.Discount - Level 3 - Family>",

	"columns.stock.product_code":  "OC Product Code",
	"columns.stock.qty_immediate": "Quantity Immediately Available",
	"columns.stock.qty_future":    "Quantity Future Available",

	"columns.discount.discount_group":             "Discount Group",
	"columns.discount.discount_group_description": "Discount Group Description",
	"columns.discount.sales_person_limit":         "Sales person Limit",

	"loader.cache_size": 16,

	"session.secret":        "",
	"session.max_age":       "8h",
	"session.secure_cookie": false,

	"auth.username":      "",
	"auth.password_hash": "",

	"selection.max_sessions": 1024,
	"selection.ttl":          "8h",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,

	"broker.seed_brokers":                           []string{},
	"broker.schema_registry_urls":                   []string{},
	"broker.search_events_topic.name":               "refsearch-search-events",
	"broker.search_events_topic.partitions":         3,
	"broker.search_events_topic.replication_factor": 1,
	"broker.tls.ca":                                 "",
	"broker.tls.cert":                               "",
	"broker.tls.key":                                "",
}

// Load reads the config file named by the --config flag or the
// REFSEARCH_CONFIG_FILE variable and exits the process on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	if err := cfg.Validate(); err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads path over the defaults. Every key may be
// overridden by an environment variable such as
// REFSEARCH_REDIS_ADDR.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

// ValidateData reports the problems of the sources and columns.
func (c Config) ValidateData() error {
	var errs []error
	required := func(key, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	required("sources.catalog.path", c.Sources.Catalog.Path)
	required("sources.stock.path", c.Sources.Stock.Path)
	required("sources.discount.path", c.Sources.Discount.Path)

	for i, col := range c.Columns.Catalog.List() {
		required(fmt.Sprintf("columns.catalog[%d]", i), col)
	}
	for i, col := range c.Columns.Stock.List() {
		required(fmt.Sprintf("columns.stock[%d]", i), col)
	}
	for i, col := range c.Columns.Discount.List() {
		required(fmt.Sprintf("columns.discount[%d]", i), col)
	}

	if c.Loader.CacheSize <= 0 {
		errs = append(errs, errors.New("loader.cache_size must be positive"))
	}
	return errors.Join(errs...)
}

// Validate reports every problem of the server config at once.
func (c Config) Validate() error {
	errs := []error{c.ValidateData()}

	if c.HTTPServerAddr == "" {
		errs = append(errs, errors.New("http_server_addr is required"))
	}
	if len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("session.secret must have at least 16 characters"))
	}
	if c.Session.MaxAge <= 0 {
		errs = append(errs, errors.New("session.max_age must be positive"))
	}
	if c.Selection.MaxSessions <= 0 || c.Selection.TTL <= 0 {
		errs = append(errs, errors.New("selection.max_sessions and selection.ttl must be positive"))
	}

	if c.Auth.Enabled() {
		if _, err := bcrypt.Cost([]byte(c.Auth.PasswordHash)); err != nil {
			errs = append(errs, fmt.Errorf("auth.password_hash: %w", err))
		}
	}

	if c.Broker.Enabled() {
		if len(c.Broker.SchemaRegistryURLs) == 0 {
			errs = append(errs, errors.New("broker.schema_registry_urls is required with seed_brokers"))
		}
		if c.Broker.SearchEventsTopic.Name == "" {
			errs = append(errs, errors.New("broker.search_events_topic.name is required with seed_brokers"))
		}
	}
	return errors.Join(errs...)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q

	Sources:
	Catalog=%q
	Stock=%q
	Discount=%q
	LoaderCacheSize=%d

	Session:
	Secret=%q
	MaxAge=%q
	SecureCookie=%t
	AuthUsername=%q
	AuthPasswordHash=%q
	SelectionMaxSessions=%d
	SelectionTTL=%q

	Redis:
	Addr=%q
	Password=%q
	DB=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	SearchEventsTopic=%q
	TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Sources.Catalog.Source(),
		c.Sources.Stock.Source(),
		c.Sources.Discount.Source(),
		c.Loader.CacheSize,
		redact(c.Session.Secret),
		c.Session.MaxAge,
		c.Session.SecureCookie,
		c.Auth.Username,
		redact(c.Auth.PasswordHash),
		c.Selection.MaxSessions,
		c.Selection.TTL,
		c.Redis.Addr,
		redact(c.Redis.Password),
		c.Redis.DB,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.SearchEventsTopic.Name,
		c.Broker.TLS.Enabled(),
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
