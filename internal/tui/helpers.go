package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/dispatch"
	"astradash/internal/wallet"
)

// shortenAddress renders 0x1234...abcd for display.
func shortenAddress(addr common.Address) string {
	hex := addr.Hex()
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "..." + hex[len(hex)-4:]
}

// shortenHash renders the leading and trailing hex of a tx hash.
func shortenHash(hex string) string {
	if len(hex) <= 14 {
		return hex
	}
	return hex[:10] + "..." + hex[len(hex)-4:]
}

// errorMessage maps session and dispatch failures to the short messages shown
// in the status line.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, wallet.ErrProviderMissing):
		return "Wallet endpoint unreachable. Check --wallet."
	case errors.Is(err, wallet.ErrUserRejected):
		return "Request rejected in the wallet."
	case errors.Is(err, wallet.ErrNetworkSwitchRejected):
		return "Network switch declined in the wallet."
	case errors.Is(err, dispatch.ErrInvalidInput):
		return fmt.Sprintf("Invalid input: %v", trimPrefix(err, dispatch.ErrInvalidInput))
	case errors.Is(err, dispatch.ErrFeatureUnavailable):
		return "That feature is not available on this network."
	case errors.Is(err, dispatch.ErrReverted):
		return fmt.Sprintf("Transaction reverted: %v", trimPrefix(err, dispatch.ErrReverted))
	case errors.Is(err, dispatch.ErrTimeout):
		return "Confirmation timed out. The transaction may still land."
	default:
		return err.Error()
	}
}

func trimPrefix(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	return strings.TrimPrefix(msg, ": ")
}

func parseSeconds(text string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatUnix(ts uint64) string {
	if ts == 0 {
		return "never"
	}
	return time.Unix(int64(ts), 0).Format("2006-01-02 15:04:05")
}

func formatDuration(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
