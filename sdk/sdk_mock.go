package sdk

import (
	"fmt"
	"sort"
)

// MockState is a plain map backed State, handy for unit tests of a single contract.
type MockState struct {
	db map[string]string
}

// NewMockState returns an empty store.
func NewMockState() *MockState {
	return &MockState{db: make(map[string]string)}
}

func (m *MockState) Set(key, value string) {
	m.db[key] = value
}

func (m *MockState) Get(key string) *string {
	val, ok := m.db[key]
	if !ok {
		return nil
	}
	return &val
}

func (m *MockState) Delete(key string) {
	delete(m.db, key)
}

// Keys lists stored keys in order, used by tests to peek at the layout.
func (m *MockState) Keys() []string {
	keys := make([]string, 0, len(m.db))
	for k := range m.db {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MockCall remembers one outgoing cross contract call.
type MockCall struct {
	Contract Address
	Method   string
	Payload  string
}

// MockHandler answers a stubbed cross contract call.
type MockHandler func(payload string) (string, error)

// MockHost is a Host without a chain behind it. Outgoing calls are answered by Handlers
// keyed as "contract:x.method"; unknown calls fail so tests notice them.
type MockHost struct {
	Environment Env
	Store       *MockState
	Logs        []string
	Calls       []MockCall
	Handlers    map[string]MockHandler
}

// NewMockHost builds a host acting as self, called directly by sender.
// Example payload: sdk.NewMockHost("contract:staking", "hive:alice", 1700000000)
func NewMockHost(self Address, sender Address, ts int64) *MockHost {
	return &MockHost{
		Environment: Env{
			Sender:    sender,
			Caller:    sender,
			Self:      self,
			Timestamp: ts,
			TxId:      "mock-tx",
		},
		Store:    NewMockState(),
		Handlers: map[string]MockHandler{},
	}
}

// As switches the direct caller, e.g. to pretend a collaborator contract is calling.
func (m *MockHost) As(caller Address) *MockHost {
	m.Environment.Caller = caller
	return m
}

// At moves the block clock.
func (m *MockHost) At(ts int64) *MockHost {
	m.Environment.Timestamp = ts
	return m
}

// Handle registers a stub for contract.method.
func (m *MockHost) Handle(contract Address, method string, fn MockHandler) {
	m.Handlers[contract.String()+"."+method] = fn
}

func (m *MockHost) Env() Env { return m.Environment }

func (m *MockHost) State() State { return m.Store }

func (m *MockHost) Log(line string) {
	m.Logs = append(m.Logs, line)
}

func (m *MockHost) Call(contract Address, method string, payload string) (string, error) {
	m.Calls = append(m.Calls, MockCall{Contract: contract, Method: method, Payload: payload})
	fn, ok := m.Handlers[contract.String()+"."+method]
	if !ok {
		return "", fmt.Errorf("no mock for %s.%s", contract, method)
	}
	return fn(payload)
}
