// Package suite knows the full gallery contract set: which kinds exist, where they live
// and how they are wired to each other.
package suite

import (
	"context"
	"fmt"
	"strings"

	"okinoko_gallery/chain"
	"okinoko_gallery/contract"
	"okinoko_gallery/contract/curation"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/contract/market"
	"okinoko_gallery/contract/minter"
	"okinoko_gallery/contract/multitoken"
	"okinoko_gallery/contract/registration"
	"okinoko_gallery/contract/safevote"
	"okinoko_gallery/contract/staking"
	"okinoko_gallery/contract/storage"
	"okinoko_gallery/contract/ticketing"
	"okinoko_gallery/contract/token"
	"okinoko_gallery/sdk"
)

// fixed addresses of a bootstrapped suite
const (
	Gallery      sdk.Address = "contract:gallery"
	Ticketing    sdk.Address = "contract:ticketing"
	Storage      sdk.Address = "contract:storage"
	Curation     sdk.Address = "contract:curation"
	Staking      sdk.Address = "contract:staking"
	SafeVote     sdk.Address = "contract:safevote"
	Minter       sdk.Address = "contract:minter"
	Token        sdk.Address = "contract:token"
	MultiToken   sdk.Address = "contract:multitoken"
	Registration sdk.Address = "contract:registration"
	Market       sdk.Address = "contract:market"
)

// DefaultAdmin locks every contract when nothing else is configured.
const DefaultAdmin sdk.Address = "hive:tibfox"

// Kinds maps kind names to contract constructors. The kind name equals the address
// suffix for the bootstrapped suite.
func Kinds() map[string]chain.Factory {
	wrap := func(r func() contract.Router) chain.Factory {
		return func() contract.Contract { return r() }
	}
	return map[string]chain.Factory{
		"gallery":      wrap(gallery.New),
		"ticketing":    wrap(ticketing.New),
		"storage":      wrap(storage.New),
		"curation":     wrap(curation.New),
		"staking":      wrap(staking.New),
		"safevote":     wrap(safevote.New),
		"minter":       wrap(minter.New),
		"token":        wrap(token.New),
		"multitoken":   wrap(multitoken.New),
		"registration": wrap(registration.New),
		"market":       wrap(market.New),
	}
}

// Addresses lists the suite in deploy order.
func Addresses() []sdk.Address {
	return []sdk.Address{
		Gallery, Ticketing, Storage, Curation, Staking, SafeVote,
		Minter, Token, MultiToken, Registration, Market,
	}
}

// KindOf strips the contract: prefix, suite addresses are named after their kind.
func KindOf(addr sdk.Address) string {
	return strings.TrimPrefix(addr.String(), "contract:")
}

// Step is one wiring call, always sent by the admin.
type Step struct {
	Contract sdk.Address
	Method   string
	Payload  string
}

// Wiring returns the admin calls that connect the contracts.
func Wiring() []Step {
	j := func(addrs ...sdk.Address) string {
		parts := make([]string, len(addrs))
		for i, a := range addrs {
			parts[i] = a.String()
		}
		return contract.Join(parts...)
	}
	return []Step{
		{Gallery, "set_ticketing", j(Ticketing)},
		{Ticketing, "set_collaborators", j(Gallery, Token)},
		{Storage, "set_collaborators", j(Curation, Gallery, Minter)},
		{Curation, "set_collaborators", j(Gallery, Storage)},
		{Staking, "set_controller", j(SafeVote)},
		{SafeVote, "set_collaborators", j(Staking, Token, Gallery, Curation)},
		{Minter, "set_collaborators", j(Staking, Gallery, Curation, MultiToken, Storage)},
		{MultiToken, "set_minter", j(Minter)},
		{Token, "set_minter", contract.Join(Registration.String(), "true")},
		{Registration, "set_token", j(Token)},
		{Market, "set_collaborators", j(MultiToken, Token)},
	}
}

// Bootstrap deploys whatever part of the suite is missing and runs the wiring as admin.
// Running it twice is fine as long as the admin stays the same.
func Bootstrap(ctx context.Context, c *chain.Chain, admin sdk.Address) error {
	deployed := c.Deployments()
	for _, addr := range Addresses() {
		if _, ok := deployed[addr]; ok {
			continue
		}
		if err := c.Deploy(ctx, addr, KindOf(addr)); err != nil {
			return fmt.Errorf("deploy %s: %w", addr, err)
		}
	}
	for _, s := range Wiring() {
		r, err := c.Execute(ctx, chain.Tx{Sender: admin, Contract: s.Contract, Method: s.Method, Payload: s.Payload})
		if err != nil {
			return fmt.Errorf("wire %s.%s: %w", s.Contract, s.Method, err)
		}
		if !r.Success {
			return fmt.Errorf("wire %s.%s: %w", s.Contract, s.Method, r.Err)
		}
	}
	return nil
}
