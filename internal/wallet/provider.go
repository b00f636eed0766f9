package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// NetworkConfig carries the full metadata a wallet needs to add a chain it
// does not know yet.
type NetworkConfig struct {
	ChainID          uint64
	Name             string
	RPCURL           string
	CurrencyName     string
	CurrencySymbol   string
	CurrencyDecimals uint8
	ExplorerURL      string
}

// TxRequest describes a transaction for the wallet to sign and send.
type TxRequest struct {
	From  common.Address
	To    *common.Address
	Data  []byte
	Value *big.Int
	Gas   uint64
}

// Provider is the narrow wallet capability surface the session core consumes:
// account access, chain management, reads, and sign-and-send. Any endpoint
// speaking the injected-provider request protocol over RPC satisfies it.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	AddChain(ctx context.Context, network NetworkConfig) error
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// rpcProvider implements Provider over a wallet RPC endpoint.
type rpcProvider struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// Dial connects to the wallet provider endpoint.
func Dial(ctx context.Context, url string) (Provider, error) {
	if url == "" {
		return nil, ErrProviderMissing
	}
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, ErrProviderMissing
	}
	return &rpcProvider{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

func (p *rpcProvider) Close() {
	if p.rpcClient != nil {
		p.rpcClient.Close()
	}
}

func (p *rpcProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpcClient.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

func (p *rpcProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpcClient.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, classify(err)
	}
	return accounts, nil
}

func (p *rpcProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.ethClient.ChainID(ctx)
}

func (p *rpcProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	param := map[string]string{
		"chainId": hexutil.EncodeUint64(chainID),
	}
	err := p.rpcClient.CallContext(ctx, nil, "wallet_switchEthereumChain", param)
	return classify(err)
}

func (p *rpcProvider) AddChain(ctx context.Context, network NetworkConfig) error {
	param := map[string]interface{}{
		"chainId":   hexutil.EncodeUint64(network.ChainID),
		"chainName": network.Name,
		"nativeCurrency": map[string]interface{}{
			"name":     network.CurrencyName,
			"symbol":   network.CurrencySymbol,
			"decimals": network.CurrencyDecimals,
		},
		"rpcUrls":           []string{network.RPCURL},
		"blockExplorerUrls": []string{network.ExplorerURL},
	}
	err := p.rpcClient.CallContext(ctx, nil, "wallet_addEthereumChain", param)
	return classify(err)
}

func (p *rpcProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.ethClient.BalanceAt(ctx, account, nil)
}

func (p *rpcProvider) BlockNumber(ctx context.Context) (uint64, error) {
	return p.ethClient.BlockNumber(ctx)
}

func (p *rpcProvider) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return p.ethClient.CallContract(ctx, msg, blockNumber)
}

func (p *rpcProvider) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return p.ethClient.TransactionReceipt(ctx, txHash)
}

func (p *rpcProvider) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	param := map[string]interface{}{
		"from": tx.From,
	}
	if tx.To != nil {
		param["to"] = *tx.To
	}
	if len(tx.Data) > 0 {
		param["data"] = hexutil.Bytes(tx.Data)
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		param["value"] = hexutil.EncodeBig(tx.Value)
	}
	if tx.Gas > 0 {
		param["gas"] = hexutil.EncodeUint64(tx.Gas)
	}

	var hash common.Hash
	if err := p.rpcClient.CallContext(ctx, &hash, "eth_sendTransaction", param); err != nil {
		return common.Hash{}, classify(err)
	}
	return hash, nil
}
