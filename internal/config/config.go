package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Ledger struct {
		Network           string   `yaml:"network"`
		FullnodeEndpoints []string `yaml:"fullnode_endpoints"`
		FaucetEndpoint    string   `yaml:"faucet_endpoint"`
		ContractAddress   string   `yaml:"contract_address"`
		ReceiverAddress   string   `yaml:"receiver_address"`
		FailoverThreshold int      `yaml:"failover_threshold"`
	} `yaml:"ledger"`
	Sponsor struct {
		// PrivateKey is resolved from the environment only; it never lives
		// in the config file and never reaches client-visible code.
		PrivateKey         string `yaml:"-"`
		UserSignerKey      string `yaml:"-"`
		MinBalanceOctas    uint64 `yaml:"min_balance_octas"`
		FaucetGrantOctas   uint64 `yaml:"faucet_grant_octas"`
		SettleDelaySeconds int    `yaml:"settle_delay_seconds"`
	} `yaml:"sponsor"`
	Pricing struct {
		MaxTokenAmount    string            `yaml:"max_token_amount"`
		MaxReferencePrice map[string]string `yaml:"max_reference_price"`
	} `yaml:"pricing"`
	Log struct {
		Dev bool `yaml:"dev"`
	} `yaml:"log"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	if len(cfg.Ledger.FullnodeEndpoints) == 0 {
		return nil, errors.New("ledger.fullnode_endpoints is required")
	}
	if cfg.Ledger.ContractAddress == "" || cfg.Ledger.ReceiverAddress == "" {
		return nil, errors.New("ledger contract and receiver addresses are required")
	}
	if len(cfg.Pricing.MaxReferencePrice) == 0 {
		return nil, errors.New("pricing.max_reference_price is required")
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("LEDGER_NETWORK"); v != "" {
		cfg.Ledger.Network = v
	}
	if v := os.Getenv("FULLNODE_ENDPOINTS"); v != "" {
		cfg.Ledger.FullnodeEndpoints = splitCommaList(v)
	}
	if v := os.Getenv("FAUCET_ENDPOINT"); v != "" {
		cfg.Ledger.FaucetEndpoint = v
	}
	if v := os.Getenv("CONTRACT_ADDRESS"); v != "" {
		cfg.Ledger.ContractAddress = v
	}
	if v := os.Getenv("RECEIVER_ADDRESS"); v != "" {
		cfg.Ledger.ReceiverAddress = v
	}
	if v := os.Getenv("FAILOVER_THRESHOLD"); v != "" {
		cfg.Ledger.FailoverThreshold = atoiOr(cfg.Ledger.FailoverThreshold, v)
	}
	if v := os.Getenv("MIN_BALANCE_OCTAS"); v != "" {
		cfg.Sponsor.MinBalanceOctas = atou64Or(cfg.Sponsor.MinBalanceOctas, v)
	}
	if v := os.Getenv("FAUCET_GRANT_OCTAS"); v != "" {
		cfg.Sponsor.FaucetGrantOctas = atou64Or(cfg.Sponsor.FaucetGrantOctas, v)
	}
	if v := os.Getenv("SETTLE_DELAY_SECONDS"); v != "" {
		cfg.Sponsor.SettleDelaySeconds = atoiOr(cfg.Sponsor.SettleDelaySeconds, v)
	}
	if v := os.Getenv("MAX_TOKEN_AMOUNT"); v != "" {
		cfg.Pricing.MaxTokenAmount = v
	}
	if v := os.Getenv("LOG_DEV"); v != "" {
		cfg.Log.Dev = v == "1" || strings.EqualFold(v, "true")
	}

	// secrets: env only
	cfg.Sponsor.PrivateKey = os.Getenv("SPONSOR_PRIVATE_KEY")
	cfg.Sponsor.UserSignerKey = os.Getenv("USER_SIGNER_PRIVATE_KEY")
}

func applyDefaults(cfg *Config) {
	if cfg.Ledger.Network == "" {
		cfg.Ledger.Network = "devnet"
	}
	if cfg.Ledger.FailoverThreshold <= 0 {
		cfg.Ledger.FailoverThreshold = 3
	}
	if cfg.Sponsor.MinBalanceOctas == 0 {
		cfg.Sponsor.MinBalanceOctas = 10_000_000 // 0.1 token
	}
	if cfg.Sponsor.FaucetGrantOctas == 0 {
		cfg.Sponsor.FaucetGrantOctas = 100_000_000 // 1 token
	}
	if cfg.Sponsor.SettleDelaySeconds <= 0 {
		cfg.Sponsor.SettleDelaySeconds = 2
	}
	if cfg.Pricing.MaxTokenAmount == "" {
		cfg.Pricing.MaxTokenAmount = "1"
	}
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func atou64Or(fallback uint64, v string) uint64 {
	i, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
