package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

type Config struct {
	Port               int
	DatabaseURL        string
	DatabaseType       string
	VoterHashSalt      string
	LedgerTable        string
	ChainCount         int
	QueryTimeout       time.Duration
	SlowQueryThreshold time.Duration
	CORSAllowedOrigins []string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, origins, timeout, slowQuery string

	fs := flag.NewFlagSet("ballot-ledger", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Ledger
	fs.StringVar(&cfg.LedgerTable, "table", "", "Ledger table name")
	fs.IntVar(&cfg.ChainCount, "chains", 0, "Number of hash chains new votes are spread across")
	fs.StringVar(&timeout, "timeout", "", "Ledger query timeout (e.g. 30s)")
	fs.StringVar(&slowQuery, "slow-query", "", "Slow query warning threshold (e.g. 5s)")
	fs.StringVar(&origins, "cors-origins", "", "Comma separated allowed CORS origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.VoterHashSalt, "voter-salt", "", "Voter identifier salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already in the environment win over the dotenv file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.LedgerTable == "" {
		cfg.LedgerTable = os.Getenv("BLOCKCHAIN_TABLE")
		if cfg.LedgerTable == "" {
			cfg.LedgerTable = "votes_blockchain_v3"
		}
	}
	// The table name is interpolated into SQL
	if !tableNamePattern.MatchString(cfg.LedgerTable) {
		return Config{}, fmt.Errorf("invalid ledger table name %q", cfg.LedgerTable)
	}

	if cfg.ChainCount == 0 {
		if s := os.Getenv("CHAIN_COUNT"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid CHAIN_COUNT env variable")
			}
			cfg.ChainCount = n
		} else {
			cfg.ChainCount = 1
		}
	}
	if cfg.ChainCount < 1 {
		return Config{}, errors.New("chain count must be at least 1")
	}

	var err error
	if cfg.QueryTimeout, err = parseDuration(timeout, "QUERY_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SlowQueryThreshold, err = parseDuration(slowQuery, "SLOW_QUERY_THRESHOLD", 5*time.Second); err != nil {
		return Config{}, err
	}

	if origins == "" {
		origins = os.Getenv("CORS_ALLOWED_ORIGINS")
		if origins == "" {
			origins = "http://localhost:3000,https://localhost:3000"
		}
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	// Secrets - MUST be provided
	if cfg.VoterHashSalt == "" {
		cfg.VoterHashSalt = os.Getenv("VOTER_HASH_SALT")
	}
	if cfg.VoterHashSalt == "" {
		return Config{}, errors.New("VOTER_HASH_SALT required")
	}

	return cfg, nil
}

// parseDuration accepts Go durations ("5s") or bare milliseconds ("5000").
func parseDuration(flagValue, envKey string, def time.Duration) (time.Duration, error) {
	s := flagValue
	if s == "" {
		s = os.Getenv(envKey)
	}
	if s == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envKey, err)
	}
	return d, nil
}
