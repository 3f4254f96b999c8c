package chain

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gallery/contract"
	"okinoko_gallery/internal/event"
	"okinoko_gallery/sdk"
)

const (
	alice sdk.Address = "hive:alice"
	ping  sdk.Address = "contract:ping"
	pong  sdk.Address = "contract:pong"
)

// counter is a tiny contract exercising state, logs and nested calls.
func counter() contract.Contract {
	bump := func(h sdk.Host) uint64 {
		n := contract.GetCount(h.State(), "n") + 1
		contract.SetCount(h.State(), "n", n)
		h.Log("inc|n:" + strconv.FormatUint(n, 10))
		return n
	}
	return contract.Router{
		"inc": func(h sdk.Host, _ string) (string, error) {
			return contract.U64(bump(h)), nil
		},
		"get": func(h sdk.Host, _ string) (string, error) {
			return contract.U64(contract.GetCount(h.State(), "n")), nil
		},
		"inc_then_fail": func(h sdk.Host, _ string) (string, error) {
			bump(h)
			return "", contract.AlreadyDone(999, "nope")
		},
		// call bumps itself then forwards method to the address in payload
		"call": func(h sdk.Host, payload string) (string, error) {
			bump(h)
			parts := strings.SplitN(payload, "|", 3)
			if len(parts) < 2 {
				return "", contract.InvalidInput(contract.CodeBadPayload, "payload requires target|method")
			}
			rest := ""
			if len(parts) == 3 {
				rest = parts[2]
			}
			return h.Call(sdk.Address(parts[0]), parts[1], rest)
		},
		"call_swallow": func(h sdk.Host, payload string) (string, error) {
			bump(h)
			_, _ = h.Call(sdk.Address(payload), "inc_then_fail", "")
			return "swallowed", nil
		},
		"whoami": func(h sdk.Host, _ string) (string, error) {
			env := h.Env()
			return contract.Join(env.Sender.String(), env.Caller.String(), env.Self.String()), nil
		},
		"boom": func(sdk.Host, string) (string, error) {
			panic("boom")
		},
		"recurse": func(h sdk.Host, payload string) (string, error) {
			return h.Call(sdk.Address(payload), "recurse", h.Env().Self.String())
		},
	}
}

func newTestChain(t *testing.T, store Store, opts ...ChainOptionFunc) *Chain {
	t.Helper()
	opts = append([]ChainOptionFunc{
		WithKinds(map[string]Factory{"counter": counter}),
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }),
	}, opts...)
	c, err := New(store, opts...)
	require.NoError(t, err)
	for _, addr := range []sdk.Address{ping, pong} {
		if _, ok := c.lookup(addr); !ok {
			require.NoError(t, c.Deploy(context.Background(), addr, "counter"))
		}
	}
	return c
}

func memChain(t *testing.T, opts ...ChainOptionFunc) *Chain {
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	return newTestChain(t, store, opts...)
}

func send(t *testing.T, c *Chain, to sdk.Address, method, payload string, expectedResult bool) *Receipt {
	t.Helper()
	r, err := c.Execute(context.Background(), Tx{Sender: alice, Contract: to, Method: method, Payload: payload})
	require.NoError(t, err)
	if expectedResult {
		require.True(t, r.Success, "%s failed: %v", method, r.Err)
	} else {
		require.False(t, r.Success, "%s did not fail", method)
	}
	return r
}

func query(t *testing.T, c *Chain, to sdk.Address, method string) string {
	t.Helper()
	r, err := c.Query(context.Background(), Tx{Sender: alice, Contract: to, Method: method})
	require.NoError(t, err)
	require.True(t, r.Success, "%v", r.Err)
	return r.Result
}

func TestExecuteCommits(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "inc", "", true)
	assert.Equal(t, "1", r.Result)
	assert.Equal(t, uint64(1), r.Height)
	assert.NotEmpty(t, r.TxId)
	require.Len(t, r.Logs, 1)
	assert.Equal(t, Log{Contract: ping, Line: "inc|n:1"}, r.Logs[0])
	assert.Equal(t, "1", query(t, c, ping, "get"))
	assert.Equal(t, "0", query(t, c, pong, "get"), "state is per contract")

	h, err := c.Height()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h)
}

func TestFailedTxLeavesNoTrace(t *testing.T) {
	c := memChain(t)
	send(t, c, ping, "inc", "", true)
	r := send(t, c, ping, "inc_then_fail", "", false)
	assert.Equal(t, contract.KindAlreadyDone, r.Err.Kind)
	assert.Empty(t, r.Logs)
	assert.Equal(t, "1", query(t, c, ping, "get"))

	h, err := c.Height()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h, "failed txs do not move the height")
}

func TestSubCallFailureRollsBackCaller(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "call", "contract:pong|inc_then_fail", false)
	assert.Equal(t, contract.KindAlreadyDone, r.Err.Kind)
	assert.Equal(t, "0", query(t, c, ping, "get"))
	assert.Equal(t, "0", query(t, c, pong, "get"))
}

func TestSwallowedSubCallDropsOnlyChildWrites(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "call_swallow", "contract:pong", true)
	assert.Equal(t, "swallowed", r.Result)
	assert.Equal(t, "1", query(t, c, ping, "get"))
	assert.Equal(t, "0", query(t, c, pong, "get"))
	assert.Len(t, r.Logs, 1)
}

func TestNestedCallEnv(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "call", "contract:pong|whoami", true)
	assert.Equal(t, "hive:alice|contract:ping|contract:pong", r.Result)
	assert.Equal(t, 2, r.Depth)
	// both frames logged, caller first
	require.Len(t, r.Logs, 1)
	assert.Equal(t, ping, r.Logs[0].Contract)
}

func TestNestedLogsKeepOrder(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "call", "contract:pong|inc", true)
	require.Len(t, r.Logs, 2)
	assert.Equal(t, ping, r.Logs[0].Contract)
	assert.Equal(t, pong, r.Logs[1].Contract)
}

func TestReentrancyIsRejected(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "recurse", "contract:pong", false)
	assert.Equal(t, contract.KindInvalidState, r.Err.Kind)
	assert.Equal(t, contract.CodeReentrant, r.Err.Code)

	r = send(t, c, ping, "call", "contract:ping|inc", false)
	assert.Equal(t, contract.CodeReentrant, r.Err.Code)
}

func TestCallDepthLimit(t *testing.T) {
	kinds := map[string]Factory{"chainlink": func() contract.Contract {
		return contract.Router{"next": func(h sdk.Host, payload string) (string, error) {
			n, _ := strconv.Atoi(payload)
			if n == 0 {
				return "bottom", nil
			}
			next := sdk.Address("contract:link" + strconv.Itoa(n-1))
			return h.Call(next, "next", strconv.Itoa(n-1))
		}}
	}}
	c := memChain(t, WithKinds(kinds))
	for i := 0; i <= MaxCallDepth+1; i++ {
		require.NoError(t, c.Deploy(context.Background(), sdk.Address("contract:link"+strconv.Itoa(i)), "chainlink"))
	}
	r := send(t, c, "contract:link7", "next", "7", true)
	assert.Equal(t, "bottom", r.Result)
	assert.Equal(t, MaxCallDepth, r.Depth)

	r = send(t, c, "contract:link8", "next", "8", false)
	assert.Equal(t, contract.KindExhausted, r.Err.Kind)
	assert.Equal(t, contract.CodeCallDepth, r.Err.Code)
}

func TestPanicBecomesFailure(t *testing.T) {
	c := memChain(t)
	r := send(t, c, ping, "boom", "", false)
	assert.Equal(t, contract.CodePanic, r.Err.Code)
	send(t, c, ping, "inc", "", true)
}

func TestUnknownTargets(t *testing.T) {
	c := memChain(t)
	r := send(t, c, "contract:ghost", "inc", "", false)
	assert.Equal(t, contract.KindInvalidState, r.Err.Kind)
	r = send(t, c, ping, "nope", "", false)
	assert.Equal(t, contract.KindInvalidInput, r.Err.Kind)
}

func TestDeployValidation(t *testing.T) {
	c := memChain(t)
	ctx := context.Background()
	assert.ErrorIs(t, c.Deploy(ctx, ping, "counter"), ErrDeployed)
	assert.ErrorIs(t, c.Deploy(ctx, "hive:bob", "counter"), ErrBadAddress)
	assert.ErrorIs(t, c.Deploy(ctx, "contract:x", "nope"), ErrUnknownKind)
	assert.Equal(t, "counter", c.Deployments()[ping])
	assert.Contains(t, c.Methods(ping), "inc")
}

func TestContextCancelled(t *testing.T) {
	c := memChain(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Execute(ctx, Tx{Sender: alice, Contract: ping, Method: "inc"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTxIDsAreUnique(t *testing.T) {
	c := memChain(t)
	a := send(t, c, ping, "inc", "", true)
	b := send(t, c, ping, "inc", "", true)
	assert.NotEqual(t, a.TxId, b.TxId)

	tx := Tx{Sender: alice, Contract: ping, Method: "inc", Timestamp: 5}
	assert.Equal(t, TxID(tx, 1), TxID(tx, 1))
	assert.NotEqual(t, TxID(tx, 1), TxID(tx, 2))
	other := tx
	other.Payload = "x"
	assert.NotEqual(t, TxID(tx, 1), TxID(other, 1))
}

func TestBadgerStorePersistsDeploymentsAndState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	store, err := NewBadgerStore(dir, nil)
	require.NoError(t, err)
	c := newTestChain(t, store)
	send(t, c, ping, "inc", "", true)
	send(t, c, ping, "inc", "", true)
	require.NoError(t, c.Close())

	store, err = NewBadgerStore(dir, nil)
	require.NoError(t, err)
	c, err = New(store, WithKinds(map[string]Factory{"counter": counter}))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "counter", c.Deployments()[pong])
	assert.Equal(t, "2", query(t, c, ping, "get"))
}

func TestRestoreUnknownKindFails(t *testing.T) {
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	newTestChain(t, store)
	_, err = New(store)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestMemoryStoreSnapshot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.json")
	store, err := NewMemoryStore(file)
	require.NoError(t, err)
	c := newTestChain(t, store)
	send(t, c, pong, "inc", "", true)

	reopened, err := NewMemoryStore(file)
	require.NoError(t, err)
	assert.Equal(t, store.Len(), reopened.Len())
	c2 := newTestChain(t, reopened)
	assert.Equal(t, "1", query(t, c2, pong, "get"))
}

func TestEventsAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	_, logs := bus.Subscribe(event.LogEventType)
	_, receipts := bus.Subscribe(event.ReceiptEventType)
	c := memChain(t, WithEventBus(bus), WithPromRegistry(reg))

	r := send(t, c, ping, "call", "contract:pong|inc", true)
	for i := 0; i < 2; i++ {
		evt := <-logs
		le := evt.Data.(event.LogEvent)
		assert.Equal(t, r.TxId, le.TxId)
		assert.Equal(t, i, le.Index)
	}
	rc := (<-receipts).Data.(event.ReceiptEvent)
	assert.True(t, rc.Success)

	send(t, c, ping, "inc_then_fail", "", false)
	rc = (<-receipts).Data.(event.ReceiptEvent)
	assert.False(t, rc.Success)
	assert.Contains(t, rc.Error, "kind:already_done")
	select {
	case <-logs:
		t.Fatal("failed tx published logs")
	default:
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.txTotal.WithLabelValues("call", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.txTotal.WithLabelValues("inc_then_fail", "already_done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.height))
}

func TestSlowSubscriberDoesNotBlockQueries(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	_, receipts := bus.Subscribe(event.ReceiptEventType)
	c := memChain(t, WithEventBus(bus))

	// one receipt more than the subscriber buffers, the last publish blocks
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for i := 0; i <= event.EventQueueSize; i++ {
			_, _ = c.Execute(context.Background(), Tx{Sender: alice, Contract: pong, Method: "inc"})
		}
	}()
	require.Eventually(t, func() bool {
		h, err := c.Height()
		return err == nil && h == uint64(event.EventQueueSize+1)
	}, 5*time.Second, 10*time.Millisecond)

	got := make(chan string, 1)
	go func() {
		r, err := c.Query(context.Background(), Tx{Sender: alice, Contract: pong, Method: "get"})
		if err == nil && r.Success {
			got <- r.Result
		}
	}()
	select {
	case res := <-got:
		assert.Equal(t, strconv.Itoa(event.EventQueueSize+1), res)
	case <-time.After(5 * time.Second):
		t.Fatal("query blocked behind a stalled publish")
	}

	for i := 0; i <= event.EventQueueSize; i++ {
		<-receipts
	}
	<-sent
}
