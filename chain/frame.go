package chain

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// MaxCallDepth bounds nested contract calls, the entry frame counts as one.
const MaxCallDepth = 8

// Log is one contract log line collected during a tx.
type Log struct {
	Contract sdk.Address
	Line     string
}

// frame is one contract invocation. Writes land in the frame's overlay and reach the
// parent only when the call returns without error.
type frame struct {
	exec   *execution
	parent *frame
	env    sdk.Env
	writes map[string]*string
	logs   []Log
	depth  int
}

// execution is the shared part of all frames in one tx.
type execution struct {
	chain    *Chain
	txn      Txn
	maxDepth int
	storeErr error
}

func newFrame(exec *execution, parent *frame, env sdk.Env) *frame {
	depth := 1
	if parent != nil {
		depth = parent.depth + 1
	}
	if depth > exec.maxDepth {
		exec.maxDepth = depth
	}
	return &frame{exec: exec, parent: parent, env: env, writes: make(map[string]*string), depth: depth}
}

func stateKey(addr sdk.Address, key string) string {
	return "c/" + addr.String() + "/" + key
}

func (f *frame) Env() sdk.Env { return f.env }

func (f *frame) State() sdk.State { return frameState{f: f} }

func (f *frame) Log(line string) {
	f.logs = append(f.logs, Log{Contract: f.env.Self, Line: line})
}

// onStack reports whether addr is already executing somewhere up the stack.
func (f *frame) onStack(addr sdk.Address) bool {
	for p := f; p != nil; p = p.parent {
		if p.env.Self == addr {
			return true
		}
	}
	return false
}

func (f *frame) Call(addr sdk.Address, method string, payload string) (string, error) {
	if f.depth >= MaxCallDepth {
		return "", contract.Exhausted(contract.CodeCallDepth, "call depth %d reached", MaxCallDepth)
	}
	if f.onStack(addr) {
		return "", contract.InvalidState(contract.CodeReentrant, "%s is already executing", addr)
	}
	target, ok := f.exec.chain.lookup(addr)
	if !ok {
		return "", contract.InvalidState(contract.CodeSubCall, "no contract at %s", addr)
	}
	env := f.env
	env.Caller = f.env.Self
	env.Self = addr
	child := newFrame(f.exec, f, env)
	ret, err := child.run(target, method, payload)
	if err != nil {
		return "", err
	}
	child.mergeInto(f)
	return ret, nil
}

// run dispatches into the contract, turning panics into typed failures.
func (f *frame) run(target contract.Contract, method, payload string) (ret string, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.exec.chain.logger.Error("contract panic",
				zap.String("contract", f.env.Self.String()),
				zap.String("method", method),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			ret, err = "", contract.InvalidState(contract.CodePanic, "%s.%s panicked: %v", f.env.Self, method, r)
		}
	}()
	ret, err = target.Dispatch(f, method, payload)
	if err == nil && f.exec.storeErr != nil {
		err = fmt.Errorf("state access: %w", f.exec.storeErr)
	}
	if err != nil {
		return "", contract.AsError(err)
	}
	return ret, nil
}

func (f *frame) mergeInto(parent *frame) {
	for k, v := range f.writes {
		parent.writes[k] = v
	}
	parent.logs = append(parent.logs, f.logs...)
}

// flush writes the root overlay into the txn.
func (f *frame) flush() error {
	for k, v := range f.writes {
		var err error
		if v == nil {
			err = f.exec.txn.Delete(k)
		} else {
			err = f.exec.txn.Set(k, *v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *frame) get(key string) *string {
	for p := f; p != nil; p = p.parent {
		if v, ok := p.writes[key]; ok {
			return v
		}
	}
	val, ok, err := f.exec.txn.Get(key)
	if err != nil {
		// sdk.State has no error return, remember it and fail the frame afterwards
		if f.exec.storeErr == nil {
			f.exec.storeErr = err
		}
		return nil
	}
	if !ok {
		return nil
	}
	return &val
}

// frameState is the contract facing view, keys are scoped to the executing contract.
type frameState struct {
	f *frame
}

func (s frameState) Set(key, value string) {
	v := value
	s.f.writes[stateKey(s.f.env.Self, key)] = &v
}

func (s frameState) Get(key string) *string {
	return s.f.get(stateKey(s.f.env.Self, key))
}

func (s frameState) Delete(key string) {
	s.f.writes[stateKey(s.f.env.Self, key)] = nil
}
