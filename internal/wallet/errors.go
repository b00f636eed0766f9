package wallet

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes.
const (
	codeUserRejected = 4001
	codeChainUnknown = 4902
)

var (
	// ErrProviderMissing indicates no wallet provider endpoint is reachable.
	ErrProviderMissing = errors.New("wallet provider missing")
	// ErrUserRejected indicates the user declined a wallet prompt.
	ErrUserRejected = errors.New("rejected by user")
	// ErrNetworkSwitchRejected indicates the user declined a chain switch or
	// add-chain request.
	ErrNetworkSwitchRejected = errors.New("network switch rejected")

	// errChainUnknown is returned by wallets for switch requests naming a
	// chain they have no configuration for.
	errChainUnknown = errors.New("chain unknown to wallet")
)

func isUserRejected(err error) bool {
	return errors.Is(err, ErrUserRejected) || hasCode(err, codeUserRejected)
}

func isChainUnknown(err error) bool {
	return errors.Is(err, errChainUnknown) || hasCode(err, codeChainUnknown)
}

// hasCode matches raw coded errors from provider implementations that do not
// classify on their own.
func hasCode(err error, code int) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == code
}

// classify maps wallet RPC error codes onto the package sentinels so callers
// can branch with errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return fmt.Errorf("%w: %s", ErrUserRejected, rpcErr.Error())
		case codeChainUnknown:
			return fmt.Errorf("%w: %s", errChainUnknown, rpcErr.Error())
		}
	}
	return err
}
