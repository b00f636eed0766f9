package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/dispatch"
	"astradash/internal/wallet"
)

func TestShortenAddress(t *testing.T) {
	addr := common.HexToAddress("0xe8174d551fd69c9ec98a09033c0885a2efbeb52c")
	got := shortenAddress(addr)
	if len(got) != 13 {
		t.Fatalf("shortenAddress = %q, want 13 characters", got)
	}
	if !strings.EqualFold(got[:6], "0xe817") || !strings.EqualFold(got[9:], "b52c") {
		t.Fatalf("shortenAddress = %q", got)
	}
	if got[6:9] != "..." {
		t.Fatalf("shortenAddress = %q, want ellipsis in the middle", got)
	}
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{wallet.ErrProviderMissing, "Wallet endpoint unreachable. Check --wallet."},
		{wallet.ErrUserRejected, "Request rejected in the wallet."},
		{fmt.Errorf("switch chain: %w", wallet.ErrNetworkSwitchRejected), "Network switch declined in the wallet."},
		{fmt.Errorf("%w: amount must be positive", dispatch.ErrInvalidInput), "Invalid input: amount must be positive"},
		{dispatch.ErrTimeout, "Confirmation timed out. The transaction may still land."},
	}
	for _, tc := range cases {
		if got := errorMessage(tc.err); got != tc.want {
			t.Fatalf("errorMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestParseSeconds(t *testing.T) {
	if got := parseSeconds(" 3600 "); got != 3600 {
		t.Fatalf("parseSeconds = %d", got)
	}
	if got := parseSeconds("abc"); got != 0 {
		t.Fatalf("parseSeconds(abc) = %d, want 0", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds uint64
		want    string
	}{
		{45, "45s"},
		{90, "1m30s"},
		{3700, "1h01m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Fatalf("formatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
