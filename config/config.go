package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del predictor y su preflight.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Bankroll BankrollConfig `yaml:"bankroll"`
	Audit    AuditConfig    `yaml:"audit"`
	Fix      FixConfig      `yaml:"fix"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
}

// PathsConfig ubica los directorios de datos.
type PathsConfig struct {
	FeedsDir  string `yaml:"feeds_dir"`
	LedgerDir string `yaml:"ledger_dir"`
}

// BankrollConfig controla el sizing de apuestas. El auditor valida
// presencia y rangos antes de dejar operar.
type BankrollConfig struct {
	StartingBankroll float64 `yaml:"starting_bankroll"`
	UnitSize         float64 `yaml:"unit_size"`
	EdgeCap          float64 `yaml:"edge_cap"`
}

// AuditConfig controla el comportamiento del preflight.
type AuditConfig struct {
	StaleHours        float64 `yaml:"stale_hours"`          // umbral de frescura de feeds
	SpotCheckGames    int     `yaml:"spot_check_games"`     // partidos re-predichos en el spot check
	StatusMaxAgeHours float64 `yaml:"status_max_age_hours"` // vigencia del sello al registrar apuestas
	Workers           int     `yaml:"workers"`              // concurrencia de secciones de feeds
}

// FixConfig controla el modo fix (refresco de feeds stale).
type FixConfig struct {
	CollectorCommand string  `yaml:"collector_command"` // comando externo que regenera un feed
	RefreshSeconds   float64 `yaml:"refresh_seconds"`   // mínimo entre refrescos
}

// HistoryConfig controla dónde se persiste el histórico de corridas.
type HistoryConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// StaleThreshold devuelve el umbral de frescura como time.Duration.
func (c *Config) StaleThreshold() time.Duration {
	return time.Duration(c.Audit.StaleHours * float64(time.Hour))
}

// StatusMaxAge devuelve la vigencia del sello como time.Duration.
func (c *Config) StatusMaxAge() time.Duration {
	return time.Duration(c.Audit.StatusMaxAgeHours * float64(time.Hour))
}

// RefreshInterval devuelve el mínimo entre refrescos del modo fix.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Fix.RefreshSeconds * float64(time.Second))
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FEEDS_DIR"); v != "" {
		cfg.Paths.FeedsDir = v
	}
	if v := os.Getenv("LEDGER_DIR"); v != "" {
		cfg.Paths.LedgerDir = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Paths.FeedsDir == "" {
		cfg.Paths.FeedsDir = "data/feeds"
	}
	if cfg.Paths.LedgerDir == "" {
		cfg.Paths.LedgerDir = "data/ledgers"
	}
	if cfg.Audit.StaleHours <= 0 {
		cfg.Audit.StaleHours = 18
	}
	if cfg.Audit.SpotCheckGames <= 0 {
		cfg.Audit.SpotCheckGames = 5
	}
	if cfg.Audit.StatusMaxAgeHours <= 0 {
		cfg.Audit.StatusMaxAgeHours = 18
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 4
	}
	if cfg.Fix.RefreshSeconds <= 0 {
		cfg.Fix.RefreshSeconds = 5
	}
	if cfg.History.DSN == "" {
		cfg.History.DSN = "courtline.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
