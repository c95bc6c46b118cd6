package config

import (
	"hlsimple/pkg/errs"
	"hlsimple/pkg/types"
	"hlsimple/pkg/utils"

	"github.com/joho/godotenv"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
	MainnetWSURL  = "wss://api.hyperliquid.xyz/ws"
	TestnetWSURL  = "wss://api.hyperliquid-testnet.xyz/ws"
)

// Config carries the three externally supplied settings: network
// environment, public account address, and private signing key. Address and
// key are optional; without them only public info endpoints work.
type Config struct {
	Env           types.Environment
	PublicAddress string
	PrivateKey    string
}

// Load reads HL_ENV, HL_PUBLIC_ADDRESS and HL_PRIVATE_KEY, picking up a
// .env file when present.
func Load() (*Config, error) {
	godotenv.Load()

	env := types.Environment(utils.LoadEnvWithDefault("HL_ENV", string(types.EnvMainnet)))
	if !env.Valid() {
		return nil, errs.Validationf("HL_ENV must be %q or %q, got %q", types.EnvMainnet, types.EnvTestnet, env)
	}

	return &Config{
		Env:           env,
		PublicAddress: utils.LoadEnv("HL_PUBLIC_ADDRESS"),
		PrivateKey:    utils.LoadEnv("HL_PRIVATE_KEY"),
	}, nil
}

func (c *Config) IsMainnet() bool {
	return c.Env == types.EnvMainnet
}

func (c *Config) APIURL() string {
	if c.IsMainnet() {
		return MainnetAPIURL
	}
	return TestnetAPIURL
}

func (c *Config) WSURL() string {
	if c.IsMainnet() {
		return MainnetWSURL
	}
	return TestnetWSURL
}
