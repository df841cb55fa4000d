package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	DocStore *docStoreConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"opsportal"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type docStoreConfig struct {
	URI      string `envconfig:"OPS_SYNC_DOCSTORE_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"OPS_SYNC_DOCSTORE_DB" default:"opsportal"`
}

type svcConfig struct {
	Address             string        `envconfig:"OPS_SYNC_ADDRESS" default:":3443"`
	MetricsAddress      string        `envconfig:"OPS_SYNC_METRICS_ADDRESS" default:":8080"`
	LogLevel            string        `envconfig:"OPS_SYNC_LOG_LEVEL" default:"info"`
	MigrationFolder     string        `envconfig:"OPS_SYNC_MIGRATIONS_FOLDER" default:""`
	ReplicationInterval time.Duration `envconfig:"OPS_SYNC_REPLICATION_INTERVAL" default:"1m"`
	ReplicationPageSize int           `envconfig:"OPS_SYNC_REPLICATION_PAGE_SIZE" default:"500"`
	ReplicationWorkers  int           `envconfig:"OPS_SYNC_REPLICATION_WORKERS" default:"8"`
	Auth                Auth
}

type Auth struct {
	AdminURL        string `envconfig:"OPS_SYNC_AUTH_ADMIN_URL" default:"http://localhost:9099"`
	ServiceTokenKey string `envconfig:"OPS_SYNC_AUTH_TOKEN_KEY" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config populated with defaults only, ignoring the
// environment, with an in-memory sqlite database. Used by tests.
func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("ops_sync_defaults", cfg); err != nil {
		panic(err)
	}
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = ":memory:"
	return cfg
}
