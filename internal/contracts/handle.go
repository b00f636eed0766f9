package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/wallet"
)

// Backend is the slice of the wallet provider the contract layer needs.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error)
}

// Handle is a bound, callable reference to a deployed contract. A handle is
// immutable once built; a rebind produces a new handle rather than mutating
// one in place.
type Handle struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
	account common.Address
}

func newHandle(name string, address common.Address, contractABI abi.ABI, account common.Address) *Handle {
	return &Handle{Name: name, Address: address, ABI: contractABI, account: account}
}

// Account reports the signer the handle was bound to.
func (h *Handle) Account() common.Address {
	return h.account
}

// Call performs a read (eth_call) against the contract and returns the
// decoded output values.
func (h *Handle) Call(ctx context.Context, backend Backend, method string, args ...interface{}) ([]interface{}, error) {
	data, err := h.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", h.Name, method, err)
	}
	msg := ethereum.CallMsg{From: h.account, To: &h.Address, Data: data}
	resp, err := backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", h.Name, method, err)
	}
	values, err := h.ABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s.%s: %w", h.Name, method, err)
	}
	return values, nil
}

// Send submits a state-changing transaction through the wallet and returns
// its hash. The wallet signs with the bound account.
func (h *Handle) Send(ctx context.Context, backend Backend, value *big.Int, gas uint64, method string, args ...interface{}) (common.Hash, error) {
	data, err := h.ABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s.%s: %w", h.Name, method, err)
	}
	to := h.Address
	hash, err := backend.SendTransaction(ctx, wallet.TxRequest{
		From:  h.account,
		To:    &to,
		Data:  data,
		Value: value,
		Gas:   gas,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("send %s.%s: %w", h.Name, method, err)
	}
	return hash, nil
}

// CallMsg builds the read message for a method without issuing it. Used to
// replay a mined transaction as eth_call when extracting a revert reason.
func (h *Handle) CallMsg(method string, args ...interface{}) (ethereum.CallMsg, error) {
	data, err := h.ABI.Pack(method, args...)
	if err != nil {
		return ethereum.CallMsg{}, fmt.Errorf("pack %s.%s: %w", h.Name, method, err)
	}
	to := h.Address
	return ethereum.CallMsg{From: h.account, To: &to, Data: data}, nil
}
