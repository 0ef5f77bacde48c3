// internal/blockchain/explorer.go
package blockchain

import "fmt"

const explorerBaseURL = "https://explorer.solana.com"

// Cluster – имя кластера Solana.
type Cluster string

const (
	ClusterDevnet   Cluster = "devnet"
	ClusterTestnet  Cluster = "testnet"
	ClusterMainnet  Cluster = "mainnet-beta"
	ClusterLocalnet Cluster = "localnet"
)

// SupportsAirdrop сообщает, есть ли у кластера faucet.
func (c Cluster) SupportsAirdrop() bool {
	return c != ClusterMainnet
}

// Explorer строит ссылки на explorer.solana.com для кластера.
type Explorer struct {
	Cluster Cluster
}

// TxURL – ссылка на транзакцию.
func (e Explorer) TxURL(signature string) string {
	return fmt.Sprintf("%s/tx/%s%s", explorerBaseURL, signature, e.query())
}

// AddressURL – ссылка на адрес или mint.
func (e Explorer) AddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s%s", explorerBaseURL, address, e.query())
}

func (e Explorer) query() string {
	switch e.Cluster {
	case "", ClusterMainnet:
		return ""
	case ClusterLocalnet:
		return "?cluster=custom&customUrl=http%3A%2F%2Flocalhost%3A8899"
	default:
		return "?cluster=" + string(e.Cluster)
	}
}
