package contract

import (
	"sort"

	"okinoko_gallery/sdk"
)

// Handler is one exported entry point. The payload is the raw pipe-delimited string.
type Handler func(h sdk.Host, payload string) (string, error)

// Contract is anything the host can dispatch calls into.
type Contract interface {
	Dispatch(h sdk.Host, method string, payload string) (string, error)
}

// Router maps method names to handlers.
type Router map[string]Handler

// Dispatch looks up the method, unknown names fail with InvalidInput.
func (r Router) Dispatch(h sdk.Host, method string, payload string) (string, error) {
	fn, ok := r[method]
	if !ok {
		return "", InvalidInput(CodeUnknownMethod, "unknown method %q", method)
	}
	return fn(h, payload)
}

// Methods lists the router entries sorted, used by the cli help output.
func (r Router) Methods() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
