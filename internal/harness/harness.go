// Package harness runs the bootstrapped contract suite on an in-memory chain for tests.
package harness

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gallery/chain"
	"okinoko_gallery/contract"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

const ownerAddress = suite.DefaultAdmin

// DefaultTimestamp is the block time of every call that does not pick its own.
const DefaultTimestamp = "2025-09-03T00:00:00"

const timestampLayout = "2006-01-02T15:04:05"

// ContractTest is one isolated chain with the full suite deployed and wired.
type ContractTest struct {
	Chain *chain.Chain
	Store *chain.MemoryStore
	Admin sdk.Address
}

// SetupContractTest boots a fresh suite, the admin is hive:tibfox.
func SetupContractTest(t testing.TB, opts ...chain.ChainOptionFunc) *ContractTest {
	t.Helper()
	store, err := chain.NewMemoryStore("")
	require.NoError(t, err)
	opts = append([]chain.ChainOptionFunc{
		chain.WithKinds(suite.Kinds()),
		chain.WithClock(func() time.Time { return time.Unix(Timestamp(DefaultTimestamp), 0) }),
	}, opts...)
	c, err := chain.New(store, opts...)
	require.NoError(t, err)
	require.NoError(t, suite.Bootstrap(context.Background(), c, ownerAddress))
	t.Cleanup(func() { _ = c.Close() })
	return &ContractTest{Chain: c, Store: store, Admin: ownerAddress}
}

// Timestamp parses the test time format into unix seconds.
func Timestamp(s string) int64 {
	ts, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		panic(fmt.Sprintf("bad test timestamp %q", s))
	}
	return ts.Unix()
}

// Hours is DefaultTimestamp shifted by n hours, handy for voting windows.
func Hours(n int) int64 {
	return Timestamp(DefaultTimestamp) + int64(n)*3600
}

// CallContract executes an action at DefaultTimestamp and asserts the outcome.
func CallContract(t testing.TB, ct *ContractTest, target sdk.Address, action, payload string, authUser sdk.Address, expectedResult bool) *chain.Receipt {
	t.Helper()
	return callContractWithTimestamp(t, ct, target, action, payload, authUser, expectedResult, Timestamp(DefaultTimestamp))
}

// CallContractAt executes a call but lets tests pick the block time for window checks.
func CallContractAt(t testing.TB, ct *ContractTest, target sdk.Address, action, payload string, authUser sdk.Address, expectedResult bool, ts int64) *chain.Receipt {
	t.Helper()
	if ts == 0 {
		ts = Timestamp(DefaultTimestamp)
	}
	return callContractWithTimestamp(t, ct, target, action, payload, authUser, expectedResult, ts)
}

func callContractWithTimestamp(t testing.TB, ct *ContractTest, target sdk.Address, action, payload string, authUser sdk.Address, expectedResult bool, ts int64) *chain.Receipt {
	t.Helper()
	r, err := ct.Chain.Execute(context.Background(), chain.Tx{
		Sender:    authUser,
		Contract:  target,
		Method:    action,
		Payload:   payload,
		Timestamp: ts,
	})
	require.NoError(t, err)
	PrintLogs(t, r)
	if expectedResult {
		assert.True(t, r.Success, "%s.%s failed with %v", target, action, r.Err)
	} else {
		assert.False(t, r.Success, "%s.%s did not fail (as expected)", target, action)
	}
	return r
}

// Query reads through a discarded transaction and requires success.
func Query(t testing.TB, ct *ContractTest, target sdk.Address, action, payload string, authUser sdk.Address) string {
	t.Helper()
	return QueryAt(t, ct, target, action, payload, authUser, Timestamp(DefaultTimestamp))
}

func QueryAt(t testing.TB, ct *ContractTest, target sdk.Address, action, payload string, authUser sdk.Address, ts int64) string {
	t.Helper()
	r, err := ct.Chain.Query(context.Background(), chain.Tx{
		Sender:    authUser,
		Contract:  target,
		Method:    action,
		Payload:   payload,
		Timestamp: ts,
	})
	require.NoError(t, err)
	require.True(t, r.Success, "query %s.%s failed with %v", target, action, r.Err)
	return r.Result
}

// ExpectError checks the kind and code of a failed receipt.
func ExpectError(t testing.TB, r *chain.Receipt, kind contract.Kind, code uint16) {
	t.Helper()
	require.False(t, r.Success, "expected %s(%d), call succeeded with %q", kind, code, r.Result)
	require.NotNil(t, r.Err)
	assert.Equal(t, kind, r.Err.Kind, "unexpected error %v", r.Err)
	assert.Equal(t, code, r.Err.Code, "unexpected error %v", r.Err)
}

// PrintLogs writes the contract logs of a call to the test log.
func PrintLogs(t testing.TB, r *chain.Receipt) {
	t.Helper()
	for _, l := range r.Logs {
		t.Logf("[%s] %s", l.Contract, l.Line)
	}
	if !r.Success && r.Err != nil {
		t.Logf("error: %s", r.Err.Payload())
	}
}

// Tags lists the event tags of a receipt in emit order.
func Tags(r *chain.Receipt) []string {
	out := make([]string, 0, len(r.Logs))
	for _, l := range r.Logs {
		if ev, ok := contract.ParseEvent(l.Line); ok {
			out = append(out, ev.Tag)
		}
	}
	return out
}

// ParseID reads a numeric result like a created gallery id.
func ParseID(t testing.TB, ret string, what string) uint64 {
	t.Helper()
	id, err := strconv.ParseUint(strings.TrimSpace(ret), 10, 64)
	require.NoError(t, err, "%s id %q", what, ret)
	return id
}
