package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"astradash/internal/contracts"
	"astradash/internal/session"
	"astradash/internal/snapshot"
)

// Backend is the provider slice the dispatcher needs: contract traffic plus
// the receipt/block queries behind confirmation polling.
type Backend interface {
	contracts.Backend
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Config bounds the confirmation-polling loop.
type Config struct {
	// Confirmations is the block depth to wait for after the receipt
	// appears: currentBlock - receipt.blockNumber.
	Confirmations uint64
	// PollInterval is the pause between receipt/height polls.
	PollInterval time.Duration
	// MaxPolls caps the total number of polls per transaction.
	MaxPolls int
	// GasLimit is attached to outgoing transactions; zero lets the wallet
	// estimate.
	GasLimit uint64
	// LiquidityDeadline is how far in the future the AMM deadline is set.
	LiquidityDeadline time.Duration
}

func (c *Config) applyDefaults() {
	if c.Confirmations == 0 {
		c.Confirmations = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = 60
	}
	if c.LiquidityDeadline <= 0 {
		c.LiquidityDeadline = 20 * time.Minute
	}
}

// Result reports a completed action and the snapshot sections it
// invalidated.
type Result struct {
	TxHash   common.Hash
	Receipt  *types.Receipt
	Sections []snapshot.Section
}

// Dispatcher validates user input, runs the approve-then-primary write
// sequence, and waits for confirmation.
type Dispatcher struct {
	cfg     Config
	backend Backend
	store   *session.Store
	logger  *zap.Logger
	now     func() time.Time
}

func NewDispatcher(cfg Config, backend Backend, store *session.Store, logger *zap.Logger) *Dispatcher {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{cfg: cfg, backend: backend, store: store, logger: logger, now: time.Now}
}

// Execute runs one action end to end: validate, approve if the spender's
// allowance is short, submit, and wait for confirmation. Validation failures
// never reach the network. The returned sections tell the caller what to
// re-aggregate.
func (d *Dispatcher) Execute(ctx context.Context, reg *contracts.Registry, kind Kind, params Params) (Result, error) {
	parsed, err := validate(kind, params)
	if err != nil {
		return Result{}, err
	}

	call, err := d.buildCall(reg, kind, parsed)
	if err != nil {
		return Result{}, err
	}

	if call.spender != (common.Address{}) {
		if err := d.ensureAllowance(ctx, reg, call.spender, parsed.token); err != nil {
			return Result{}, err
		}
	}

	hash, err := call.handle.Send(ctx, d.backend, call.value, d.cfg.GasLimit, call.method, call.args...)
	if err != nil {
		return Result{}, err
	}
	d.logger.Info("action submitted",
		zap.String("kind", string(kind)),
		zap.String("tx", hash.Hex()),
	)

	index, submitted := d.recordAction(kind, hash)
	receipt, err := d.waitMined(ctx, call, hash)
	if err != nil {
		d.finishAction(index, kind, hash, session.ActionFailed, err.Error(), submitted)
		return Result{}, err
	}
	d.finishAction(index, kind, hash, session.ActionConfirmed, "", submitted)

	return Result{
		TxHash:   hash,
		Receipt:  receipt,
		Sections: invalidatedSections(kind),
	}, nil
}

// contractCall is one prepared write.
type contractCall struct {
	handle *contracts.Handle
	method string
	args   []interface{}
	value  *big.Int
	// spender, when set, requires the token allowance check before the
	// primary transaction.
	spender common.Address
}

func (d *Dispatcher) buildCall(reg *contracts.Registry, kind Kind, parsed amounts) (contractCall, error) {
	switch kind {
	case KindStake:
		pool := reg.StakingPool()
		if pool == nil {
			return contractCall{}, fmt.Errorf("%w: staking pool", ErrFeatureUnavailable)
		}
		return contractCall{handle: pool, method: "stake", args: []interface{}{parsed.token}, spender: pool.Address}, nil
	case KindWithdraw:
		pool := reg.StakingPool()
		if pool == nil {
			return contractCall{}, fmt.Errorf("%w: staking pool", ErrFeatureUnavailable)
		}
		return contractCall{handle: pool, method: "withdraw", args: []interface{}{parsed.token}}, nil
	case KindClaim:
		pool := reg.StakingPool()
		if pool == nil {
			return contractCall{}, fmt.Errorf("%w: staking pool", ErrFeatureUnavailable)
		}
		return contractCall{handle: pool, method: "claimReward"}, nil
	case KindAddLiquidity:
		manager := reg.LiquidityManager()
		if manager == nil {
			return contractCall{}, fmt.Errorf("%w: liquidity manager", ErrFeatureUnavailable)
		}
		deadline := big.NewInt(d.now().Add(d.cfg.LiquidityDeadline).Unix())
		return contractCall{
			handle: manager,
			method: "addLiquidityFromContract",
			args: []interface{}{
				parsed.token,
				slippageFloor(parsed.token),
				slippageFloor(parsed.eth),
				deadline,
			},
			value:   parsed.eth,
			spender: manager.Address,
		}, nil
	case KindRelease:
		vesting := reg.Vesting()
		if vesting == nil {
			return contractCall{}, fmt.Errorf("%w: vesting", ErrFeatureUnavailable)
		}
		return contractCall{handle: vesting, method: "release"}, nil
	case KindTriggerOracle:
		oracle := reg.OracleMonitor()
		if oracle == nil {
			return contractCall{}, fmt.Errorf("%w: oracle monitor", ErrFeatureUnavailable)
		}
		return contractCall{handle: oracle, method: "checkAndBurn"}, nil
	case KindSetParams:
		oracle := reg.OracleMonitor()
		if oracle == nil {
			return contractCall{}, fmt.Errorf("%w: oracle monitor", ErrFeatureUnavailable)
		}
		return contractCall{handle: oracle, method: "updateParams", args: []interface{}{
			new(big.Int).SetUint64(parsed.window), parsed.burn,
		}}, nil
	default:
		return contractCall{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, kind)
	}
}

// slippageFloor applies the 5% tolerance the frontend uses for AMM minimums.
func slippageFloor(amount *big.Int) *big.Int {
	floor := new(big.Int).Mul(amount, big.NewInt(95))
	return floor.Div(floor, big.NewInt(100))
}

// ensureAllowance reads the current allowance and, when short, submits an
// approval and waits for it before the primary transaction. The two are
// strictly sequential: the primary depends on the approval's on-chain
// effect.
func (d *Dispatcher) ensureAllowance(ctx context.Context, reg *contracts.Registry, spender common.Address, amount *big.Int) error {
	token := reg.Token()
	if token == nil {
		return fmt.Errorf("%w: token", ErrFeatureUnavailable)
	}

	values, err := token.Call(ctx, d.backend, "allowance", reg.Account(), spender)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	allowance, err := contracts.AsBigInt(values[0])
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	hash, err := token.Send(ctx, d.backend, nil, d.cfg.GasLimit, "approve", spender, amount)
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	d.logger.Info("approval submitted",
		zap.String("spender", spender.Hex()),
		zap.String("tx", hash.Hex()),
	)

	index, submitted := d.recordAction("approve", hash)
	approveCall := contractCall{handle: token, method: "approve", args: []interface{}{spender, amount}}
	if _, err := d.waitMined(ctx, approveCall, hash); err != nil {
		d.finishAction(index, "approve", hash, session.ActionFailed, err.Error(), submitted)
		return fmt.Errorf("approve: %w", err)
	}
	d.finishAction(index, "approve", hash, session.ActionConfirmed, "", submitted)
	return nil
}

// waitMined polls for the receipt and the chain height until the
// confirmation threshold is met, failing with ErrTimeout once the poll
// budget is spent. A mined-but-reverted transaction maps to ErrReverted with
// the revert reason when one can be recovered.
func (d *Dispatcher) waitMined(ctx context.Context, call contractCall, hash common.Hash) (*types.Receipt, error) {
	for attempt := 0; attempt < d.cfg.MaxPolls; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(d.cfg.PollInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		receipt, err := d.backend.TransactionReceipt(ctx, hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				d.logger.Warn("receipt poll failed", zap.String("tx", hash.Hex()), zap.Error(err))
			}
			continue
		}

		if receipt.Status == types.ReceiptStatusFailed {
			reason := d.revertReason(ctx, call, receipt)
			if reason == "" {
				return nil, fmt.Errorf("%w: tx %s", ErrReverted, hash.Hex())
			}
			return nil, fmt.Errorf("%w: %s", ErrReverted, reason)
		}

		height, err := d.backend.BlockNumber(ctx)
		if err != nil {
			d.logger.Warn("block height poll failed", zap.Error(err))
			continue
		}
		if receipt.BlockNumber != nil && height >= receipt.BlockNumber.Uint64() {
			confirmations := height - receipt.BlockNumber.Uint64()
			if confirmations >= d.cfg.Confirmations {
				return receipt, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: tx %s after %d polls", ErrTimeout, hash.Hex(), d.cfg.MaxPolls)
}

// revertReason replays the transaction as a read at the mined block and
// decodes the revert payload when the node returns one.
func (d *Dispatcher) revertReason(ctx context.Context, call contractCall, receipt *types.Receipt) string {
	msg, err := call.handle.CallMsg(call.method, call.args...)
	if err != nil {
		return ""
	}
	msg.Value = call.value
	_, callErr := d.backend.CallContract(ctx, msg, receipt.BlockNumber)
	if callErr == nil {
		return ""
	}
	return decodeRevert(callErr)
}

func (d *Dispatcher) recordAction(kind Kind, hash common.Hash) (int, time.Time) {
	submitted := d.now()
	if d.store == nil {
		return -1, submitted
	}
	index := d.store.PutAction(session.PendingAction{
		Kind:        string(kind),
		TxHash:      hash,
		State:       session.ActionConfirming,
		SubmittedAt: submitted,
	})
	return index, submitted
}

// finishAction keeps the submission timestamp; only the state and detail
// change on confirmation or failure.
func (d *Dispatcher) finishAction(index int, kind Kind, hash common.Hash, state session.ActionState, detail string, submitted time.Time) {
	if d.store == nil || index < 0 {
		return
	}
	d.store.UpdateAction(index, session.PendingAction{
		Kind:        string(kind),
		TxHash:      hash,
		State:       state,
		Detail:      detail,
		SubmittedAt: submitted,
	})
}
