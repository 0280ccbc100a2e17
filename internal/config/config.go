package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultConfigPath     = "config/config.toml"
	DefaultClientVersion  = "8.4.1.2703"
	DefaultTimeoutSeconds = 30
	DefaultSessionDb      = "session.db"
	DefaultSQLitePath     = "./data/forward-collab.db"
)

type DecoderConfig struct {
	MaxDepth int `toml:"max_depth"`
}

type DownloadConfig struct {
	ClientVersion  string `toml:"client_version"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Cookie         string
}

type SpoolConfig struct {
	Directory string `toml:"directory"`
}

type MatrixConfig struct {
	Room      string `toml:"room"`
	SessionDb string `toml:"session_db"`

	HomeServer string
	Username   string
	Password   string
}

// Enabled is false when no homeserver is configured, forwards are then
// only archived.
func (c *MatrixConfig) Enabled() bool {
	return c.HomeServer != "" && c.Room != ""
}

type ArchiveConfig struct {
	Driver     string `toml:"driver"` // postgres or sqlite
	SQLitePath string `toml:"sqlite_path"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// one-shot decode requested on the command line
type OnceConfig struct {
	PayloadFile string
	SessionKey  string // hex
	Root        string
	Enabled     bool
}

type Config struct {
	Decoder  *DecoderConfig  `toml:"decoder"`
	Download *DownloadConfig `toml:"download"`
	Spool    *SpoolConfig    `toml:"spool"`
	Matrix   *MatrixConfig   `toml:"matrix"`
	Archive  *ArchiveConfig  `toml:"archive"`
	Metrics  *MetricsConfig  `toml:"metrics"`
	Once     *OnceConfig     `toml:"-"`

	DatabaseUrl string
}

func (c *Config) getenv(name string) string {
	return os.Getenv(name)
}

// Parse decodes a config file and fills in defaults for everything left
// out. Secrets are not part of the file.
func Parse(file []byte) (*Config, error) {
	c := &Config{}
	if err := toml.Unmarshal(file, c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Decoder == nil {
		c.Decoder = &DecoderConfig{}
	}
	if c.Download == nil {
		c.Download = &DownloadConfig{}
	}
	if c.Download.ClientVersion == "" {
		c.Download.ClientVersion = DefaultClientVersion
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Spool == nil {
		c.Spool = &SpoolConfig{}
	}
	if c.Matrix == nil {
		c.Matrix = &MatrixConfig{}
	}
	if c.Matrix.SessionDb == "" {
		c.Matrix.SessionDb = DefaultSessionDb
	}
	if c.Archive == nil {
		c.Archive = &ArchiveConfig{}
	}
	c.Archive.Driver = strings.ToLower(c.Archive.Driver)
	if c.Archive.Driver == "" {
		c.Archive.Driver = "sqlite"
	}
	if c.Archive.SQLitePath == "" {
		c.Archive.SQLitePath = DefaultSQLitePath
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
	if c.Once == nil {
		c.Once = &OnceConfig{}
	}
}

func (c *Config) loadEnv() {
	c.Matrix.HomeServer = c.getenv("MATRIX_HOMESERVER")
	c.Matrix.Username = c.getenv("MATRIX_USERNAME")
	c.Matrix.Password = c.getenv("MATRIX_PASSWORD")
	c.Download.Cookie = c.getenv("QQ_COOKIE")
	c.DatabaseUrl = c.getenv("DATABASE_URL")
}

func (c *Config) validate() {
	switch c.Archive.Driver {
	case "postgres":
		if c.DatabaseUrl == "" {
			log.Fatalf("Archive driver postgres requires DATABASE_URL")
		}
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(c.Archive.SQLitePath), 0755); err != nil {
			log.Fatalf("Error creating archive directory: %v", err)
		}
	default:
		log.Fatalf("Unknown archive driver \"%s\"", c.Archive.Driver)
	}
	if c.Matrix.HomeServer != "" && (c.Matrix.Username == "" || c.Matrix.Password == "") {
		log.Fatalf("Incomplete matrix credentials provided")
	}
	if c.Matrix.HomeServer != "" && c.Matrix.Room == "" {
		log.Warnf("No matrix room configured, forwards will only be archived")
	}
	if c.Once.Enabled && (c.Once.PayloadFile == "" || c.Once.SessionKey == "") {
		log.Fatalf("-once requires -payload and -key")
	}
}

func (c *Config) Load() {
	// parse command line flags
	flagConfig := flag.String("config", DefaultConfigPath, "Path of the toml config file")
	flagPayload := flag.String("payload", "", "Decode this envelope file instead of watching the spool")
	flagKey := flag.String("key", "", "Hex session key of the envelope given by -payload")
	flagRoot := flag.String("root", "", "Item to resolve, defaults to the root item")
	flagOnce := flag.Bool("once", false, "Decode -payload, archive and post it, then exit")
	flag.Parse()

	// load config.toml
	file, err := os.ReadFile(*flagConfig)
	if err != nil {
		log.Fatalf("Error reading config.toml: %v", err)
		return
	}
	parsed, err := Parse(file)
	if err != nil {
		log.Fatalf("Error decoding TOML: %s", err)
		return
	}
	*c = *parsed
	c.Once = &OnceConfig{
		PayloadFile: *flagPayload,
		SessionKey:  *flagKey,
		Root:        *flagRoot,
		Enabled:     *flagOnce || *flagPayload != "",
	}
	log.Infof("Loaded config: %+v", c)

	// load .env
	err = godotenv.Load()
	if err != nil {
		log.Warnf("[Expected in docker] Error loading .env file: %v", err)
	}
	c.loadEnv()
	c.validate()
}
