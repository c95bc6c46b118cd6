package types

type Environment string

const (
	EnvMainnet = Environment("mainnet")
	EnvTestnet = Environment("testnet")
)

func (e Environment) Valid() bool {
	return e == EnvMainnet || e == EnvTestnet
}
