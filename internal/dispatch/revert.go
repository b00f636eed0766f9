package dispatch

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// decodeRevert extracts a human-readable reason from an eth_call error. Nodes
// attach the ABI-encoded Error(string) payload as JSON-RPC error data; when
// that is missing or malformed the raw error message is returned instead.
func decodeRevert(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			if raw, decodeErr := hexutil.Decode(hexData); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return reason
				}
			}
		}
	}
	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx >= 0 {
		return msg[idx:]
	}
	return msg
}
