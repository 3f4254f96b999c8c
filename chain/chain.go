// Package chain is the in-process executor the contracts run on. Every tx is one store
// transaction: it commits as a whole or leaves no trace.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"okinoko_gallery/contract"
	"okinoko_gallery/internal/event"
	"okinoko_gallery/sdk"
)

const (
	keyHeight    = "sys/height"
	keyNonce     = "sys/nonce"
	deployPrefix = "sys/deploy/"
)

var (
	ErrUnknownKind   = errors.New("unknown contract kind")
	ErrDeployed      = errors.New("address already has a contract")
	ErrBadAddress    = errors.New("contract addresses need the contract: prefix")
	ErrUnknownTarget = errors.New("no contract at address")
)

// Factory builds a fresh contract instance of one kind.
type Factory func() contract.Contract

// Tx is a user transaction. A zero Timestamp means "now".
type Tx struct {
	Sender    sdk.Address
	Contract  sdk.Address
	Method    string
	Payload   string
	Timestamp int64
}

// Receipt is the outcome of Execute or Query. Contract failures are reported here, the
// error return of Execute is reserved for the store and the context.
type Receipt struct {
	TxId     string
	Height   uint64
	Success  bool
	Result   string
	Err      *contract.Error
	Logs     []Log
	Depth    int
	Duration time.Duration
}

type deployment struct {
	kind     string
	instance contract.Contract
}

type Chain struct {
	mu        sync.Mutex
	store     Store
	kinds     map[string]Factory
	contracts map[sdk.Address]deployment
	deployMu  sync.RWMutex
	bus       *event.EventBus
	metrics   *chainMetrics
	logger    *zap.Logger
	clock     func() time.Time
}

type ChainOptionFunc func(*Chain)

// WithKinds registers the contract kinds deployments can use.
func WithKinds(kinds map[string]Factory) ChainOptionFunc {
	return func(c *Chain) {
		for k, f := range kinds {
			c.kinds[k] = f
		}
	}
}

// WithEventBus publishes committed logs and every receipt. Publishing happens outside
// the chain lock but still on the Execute goroutine, so a full subscriber delays only
// that Execute call.
func WithEventBus(bus *event.EventBus) ChainOptionFunc {
	return func(c *Chain) { c.bus = bus }
}

func WithPromRegistry(reg prometheus.Registerer) ChainOptionFunc {
	return func(c *Chain) {
		if reg != nil {
			c.metrics = newChainMetrics(reg)
		}
	}
}

func WithLogger(logger *zap.Logger) ChainOptionFunc {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for txs without a timestamp.
func WithClock(clock func() time.Time) ChainOptionFunc {
	return func(c *Chain) { c.clock = clock }
}

// New opens a chain on store and restores persisted deployments.
func New(store Store, opts ...ChainOptionFunc) (*Chain, error) {
	c := &Chain{
		store:     store,
		kinds:     make(map[string]Factory),
		contracts: make(map[sdk.Address]deployment),
		logger:    zap.NewNop(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.restore(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chain) restore() error {
	txn := c.store.NewTxn(false)
	defer txn.Discard()
	return txn.Iterate(deployPrefix, func(key, kind string) error {
		addr := sdk.Address(strings.TrimPrefix(key, deployPrefix))
		factory, ok := c.kinds[kind]
		if !ok {
			return fmt.Errorf("restore %s: %w %q", addr, ErrUnknownKind, kind)
		}
		c.contracts[addr] = deployment{kind: kind, instance: factory()}
		c.logger.Debug("restored contract", zap.String("address", addr.String()), zap.String("kind", kind))
		return nil
	})
}

func (c *Chain) lookup(addr sdk.Address) (contract.Contract, bool) {
	c.deployMu.RLock()
	defer c.deployMu.RUnlock()
	d, ok := c.contracts[addr]
	return d.instance, ok
}

// Deploy binds a contract kind to an address and persists the binding.
func (c *Chain) Deploy(ctx context.Context, addr sdk.Address, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if addr.Type() != sdk.AddressTypeContract || !addr.IsValid() {
		return fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	factory, ok := c.kinds[kind]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.lookup(addr); exists {
		return fmt.Errorf("%w: %s", ErrDeployed, addr)
	}
	txn := c.store.NewTxn(true)
	defer txn.Discard()
	if err := txn.Set(deployPrefix+addr.String(), kind); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit deploy: %w", err)
	}
	c.deployMu.Lock()
	c.contracts[addr] = deployment{kind: kind, instance: factory()}
	c.deployMu.Unlock()
	c.logger.Info("contract deployed", zap.String("address", addr.String()), zap.String("kind", kind))
	return nil
}

// Deployments lists address → kind.
func (c *Chain) Deployments() map[sdk.Address]string {
	c.deployMu.RLock()
	defer c.deployMu.RUnlock()
	out := make(map[sdk.Address]string, len(c.contracts))
	for addr, d := range c.contracts {
		out[addr] = d.kind
	}
	return out
}

// Methods lists the entry points of a deployed contract when it is a router.
func (c *Chain) Methods(addr sdk.Address) []string {
	inst, ok := c.lookup(addr)
	if !ok {
		return nil
	}
	if r, ok := inst.(contract.Router); ok {
		return r.Methods()
	}
	return nil
}

// Height returns the last committed height.
func (c *Chain) Height() (uint64, error) {
	txn := c.store.NewTxn(false)
	defer txn.Discard()
	return readCounter(txn, keyHeight)
}

// Execute runs tx and commits its effects when the contract call succeeds.
func (c *Chain) Execute(ctx context.Context, tx Tx) (*Receipt, error) {
	return c.process(ctx, tx, true)
}

// Query runs tx against current state and throws every write away.
func (c *Chain) Query(ctx context.Context, tx Tx) (*Receipt, error) {
	return c.process(ctx, tx, false)
}

// process applies tx under the chain lock and publishes the outcome after releasing it,
// so bus subscribers may be slow or call back into the chain.
func (c *Chain) process(ctx context.Context, tx Tx, commit bool) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx.Timestamp == 0 {
		tx.Timestamp = c.clock().Unix()
	}
	receipt, err := c.apply(tx, commit)
	if err != nil {
		return nil, err
	}
	if commit {
		c.observe(tx, receipt)
	}
	return receipt, nil
}

func (c *Chain) apply(tx Tx, commit bool) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()

	txn := c.store.NewTxn(commit)
	defer txn.Discard()

	height, err := readCounter(txn, keyHeight)
	if err != nil {
		return nil, err
	}
	nonce, err := readCounter(txn, keyNonce)
	if err != nil {
		return nil, err
	}
	receipt := &Receipt{Height: height + 1, TxId: "query"}
	if commit {
		receipt.TxId = TxID(tx, nonce+1)
	}

	exec := &execution{chain: c, txn: txn}
	root := newFrame(exec, nil, sdk.Env{
		Sender:      tx.Sender,
		Caller:      tx.Sender,
		Self:        tx.Contract,
		Timestamp:   tx.Timestamp,
		TxId:        receipt.TxId,
		BlockHeight: receipt.Height,
	})
	var ret string
	var callErr error
	if target, ok := c.lookup(tx.Contract); ok {
		ret, callErr = root.run(target, tx.Method, tx.Payload)
	} else {
		callErr = contract.InvalidState(contract.CodeSubCall, "%s: %s", ErrUnknownTarget, tx.Contract)
	}
	receipt.Depth = exec.maxDepth

	if callErr != nil {
		receipt.Err = contract.AsError(callErr)
		if commit {
			// the nonce still moves so a retried tx gets a fresh id
			txn.Discard()
			if err := c.bumpNonce(nonce + 1); err != nil {
				return nil, err
			}
		}
	} else {
		receipt.Success = true
		receipt.Result = ret
		receipt.Logs = root.logs
		if commit {
			if err := root.flush(); err != nil {
				return nil, fmt.Errorf("flush tx %s: %w", receipt.TxId, err)
			}
			if err := txn.Set(keyHeight, strconv.FormatUint(receipt.Height, 10)); err != nil {
				return nil, err
			}
			if err := txn.Set(keyNonce, strconv.FormatUint(nonce+1, 10)); err != nil {
				return nil, err
			}
			if err := txn.Commit(); err != nil {
				return nil, fmt.Errorf("commit tx %s: %w", receipt.TxId, err)
			}
		}
	}
	if !commit || !receipt.Success {
		receipt.Height = height
	}
	receipt.Duration = time.Since(start)
	return receipt, nil
}

func (c *Chain) bumpNonce(nonce uint64) error {
	txn := c.store.NewTxn(true)
	defer txn.Discard()
	if err := txn.Set(keyNonce, strconv.FormatUint(nonce, 10)); err != nil {
		return err
	}
	return txn.Commit()
}

// observe logs, measures and publishes a finished tx.
func (c *Chain) observe(tx Tx, r *Receipt) {
	status := "ok"
	fields := []zap.Field{
		zap.String("tx", r.TxId),
		zap.String("contract", tx.Contract.String()),
		zap.String("method", tx.Method),
		zap.String("sender", tx.Sender.String()),
		zap.Duration("took", r.Duration),
	}
	if r.Success {
		c.logger.Debug("tx committed", append(fields, zap.Uint64("height", r.Height))...)
	} else {
		status = r.Err.Kind.String()
		c.logger.Debug("tx failed", append(fields, zap.Error(r.Err))...)
	}
	if c.metrics != nil {
		c.metrics.txTotal.WithLabelValues(tx.Method, status).Inc()
		c.metrics.txDuration.Observe(r.Duration.Seconds())
		c.metrics.callDepth.Observe(float64(r.Depth))
		if r.Success {
			c.metrics.height.Set(float64(r.Height))
		}
	}
	if c.bus == nil {
		return
	}
	for i, l := range r.Logs {
		c.bus.Publish(event.LogEventType, event.NewEvent(event.LogEventType, event.LogEvent{
			TxId:     r.TxId,
			Height:   r.Height,
			Index:    i,
			Contract: l.Contract.String(),
			Line:     l.Line,
		}))
	}
	re := event.ReceiptEvent{
		TxId:     r.TxId,
		Height:   r.Height,
		Contract: tx.Contract.String(),
		Method:   tx.Method,
		Sender:   tx.Sender.String(),
		Success:  r.Success,
		Result:   r.Result,
	}
	if r.Err != nil {
		re.Error = r.Err.Payload()
	}
	c.bus.Publish(event.ReceiptEventType, event.NewEvent(event.ReceiptEventType, re))
}

// Close closes the store.
func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Close()
}

func readCounter(txn Txn, key string) (uint64, error) {
	val, ok, err := txn.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s: %w", key, err)
	}
	return n, nil
}
