// Package token is the fungible ledger used for ticket prices, stakes and airdrops.
package token

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	Name     = "Nova Vault"
	Symbol   = "NovaV"
	Decimals = 10
)

const (
	CodeBalance   uint16 = 801
	CodeAllowance uint16 = 802
	CodeOverflow  uint16 = 803
	CodeNotMinter uint16 = 804
)

const (
	// kBalance holds balances by address.
	kBalance byte = 0x01
	// kAllowance holds owner->spender allowances.
	kAllowance byte = 0x02
	// kSupply is the total supply slot.
	kSupply byte = 0x03
	// kMinter flags contracts allowed to mint_to.
	kMinter byte = 0x04
)

// New returns the token entry points.
func New() contract.Router {
	return contract.Router{
		"name":          constant(Name),
		"symbol":        constant(Symbol),
		"decimals":      constant(contract.U64(Decimals)),
		"total_supply":  totalSupply,
		"balance_of":    balanceOf,
		"allowance":     allowance,
		"transfer":      transfer,
		"approve":       approve,
		"transfer_from": transferFrom,
		"mint":          mint,
		"mint_to":       mintTo,
		"burn":          burn,
		"set_minter":    setMinter,
	}
}

func constant(v string) contract.Handler {
	return func(sdk.Host, string) (string, error) { return v, nil }
}

func balanceKey(a sdk.Address) string { return contract.KeyAddr(kBalance, a) }

func allowanceKey(owner, spender sdk.Address) string {
	return contract.KeyAddrAddr(kAllowance, owner, spender)
}

func totalSupply(h sdk.Host, _ string) (string, error) {
	return sdk.FormatAmount(contract.GetAmount(h.State(), contract.Key(kSupply))), nil
}

// Payload: account
func balanceOf(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "account")
	if err != nil {
		return "", err
	}
	acc, err := args.Address(0, "account")
	if err != nil {
		return "", err
	}
	return sdk.FormatAmount(contract.GetAmount(h.State(), balanceKey(acc))), nil
}

// Payload: owner|spender
func allowance(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "owner|spender")
	if err != nil {
		return "", err
	}
	owner, err := args.Address(0, "owner")
	if err != nil {
		return "", err
	}
	spender, err := args.Address(1, "spender")
	if err != nil {
		return "", err
	}
	return sdk.FormatAmount(contract.GetAmount(h.State(), allowanceKey(owner, spender))), nil
}

// transfer moves value from the caller.
// Payload: to|value
func transfer(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "to|value")
	if err != nil {
		return "", err
	}
	to, err := args.Address(0, "to")
	if err != nil {
		return "", err
	}
	value, err := args.Amount(1, "value")
	if err != nil {
		return "", err
	}
	if err := move(h, h.Env().Caller, to, value); err != nil {
		return "", err
	}
	return "ok", nil
}

// approve sets the spender allowance of the caller, overwriting the previous one.
// Payload: spender|value
func approve(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "spender|value")
	if err != nil {
		return "", err
	}
	spender, err := args.Address(0, "spender")
	if err != nil {
		return "", err
	}
	value, err := args.Amount(1, "value")
	if err != nil {
		return "", err
	}
	owner := h.Env().Caller
	contract.SetAmount(h.State(), allowanceKey(owner, spender), value)
	emitApprovalEvent(h, owner, spender, value)
	return "ok", nil
}

// transferFrom spends the caller's allowance on from.
// Payload: from|to|value
func transferFrom(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "from|to|value")
	if err != nil {
		return "", err
	}
	from, err := args.Address(0, "from")
	if err != nil {
		return "", err
	}
	to, err := args.Address(1, "to")
	if err != nil {
		return "", err
	}
	value, err := args.Amount(2, "value")
	if err != nil {
		return "", err
	}
	st := h.State()
	spender := h.Env().Caller
	if spender != from {
		allowed := contract.GetAmount(st, allowanceKey(from, spender))
		if allowed.Lt(value) {
			return "", contract.InsufficientValue(CodeAllowance, "allowance %s of %s below %s", allowed.Dec(), spender, value.Dec())
		}
		allowed.Sub(allowed, value)
		contract.SetAmount(st, allowanceKey(from, spender), allowed)
	}
	if err := move(h, from, to, value); err != nil {
		return "", err
	}
	return "ok", nil
}

// mint is the open faucet, value goes to the caller.
// Payload: value
func mint(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "value")
	if err != nil {
		return "", err
	}
	value, err := args.Amount(0, "value")
	if err != nil {
		return "", err
	}
	if err := issue(h, h.Env().Caller, value); err != nil {
		return "", err
	}
	return "ok", nil
}

// mintTo is reserved for the admin and registered minter contracts.
// Payload: to|value
func mintTo(h sdk.Host, payload string) (string, error) {
	st := h.State()
	caller := h.Env().Caller
	admin := contract.LoadAdmin(st)
	if !(admin.Initialized && admin.Owner == caller) && !contract.GetFlag(st, contract.KeyAddr(kMinter, caller)) {
		return "", contract.Unauthorized(CodeNotMinter, "%s may not mint", caller)
	}
	args, err := contract.ParseArgs(payload, 2, "to|value")
	if err != nil {
		return "", err
	}
	to, err := args.Address(0, "to")
	if err != nil {
		return "", err
	}
	value, err := args.Amount(1, "value")
	if err != nil {
		return "", err
	}
	if err := issue(h, to, value); err != nil {
		return "", err
	}
	return "ok", nil
}

// burn destroys value from the caller.
// Payload: value
func burn(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "value")
	if err != nil {
		return "", err
	}
	value, err := args.Amount(0, "value")
	if err != nil {
		return "", err
	}
	st := h.State()
	caller := h.Env().Caller
	bal := contract.GetAmount(st, balanceKey(caller))
	if bal.Lt(value) {
		return "", contract.InsufficientValue(CodeBalance, "balance %s below %s", bal.Dec(), value.Dec())
	}
	bal.Sub(bal, value)
	contract.SetAmount(st, balanceKey(caller), bal)
	supply := contract.GetAmount(st, contract.Key(kSupply))
	supply.Sub(supply, value)
	contract.SetAmount(st, contract.Key(kSupply), supply)
	emitTransferEvent(h, caller, sdk.ZeroAddress, value)
	return "ok", nil
}

// setMinter allows or revokes a mint_to caller.
// Payload: address|allowed
func setMinter(h sdk.Host, payload string) (string, error) {
	if err := contract.CheckAdmin(h); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 2, "address|allowed")
	if err != nil {
		return "", err
	}
	addr, err := args.Address(0, "minter")
	if err != nil {
		return "", err
	}
	if args.Bool(1) {
		contract.SetFlag(h.State(), contract.KeyAddr(kMinter, addr))
	} else {
		h.State().Delete(contract.KeyAddr(kMinter, addr))
	}
	return "ok", nil
}

func move(h sdk.Host, from, to sdk.Address, value *sdk.Amount) error {
	st := h.State()
	fromBal := contract.GetAmount(st, balanceKey(from))
	if fromBal.Lt(value) {
		return contract.InsufficientValue(CodeBalance, "balance of %s is %s, needs %s", from, fromBal.Dec(), value.Dec())
	}
	fromBal.Sub(fromBal, value)
	contract.SetAmount(st, balanceKey(from), fromBal)
	toBal := contract.GetAmount(st, balanceKey(to))
	if _, overflow := toBal.AddOverflow(toBal, value); overflow {
		return contract.Exhausted(CodeOverflow, "balance overflow")
	}
	contract.SetAmount(st, balanceKey(to), toBal)
	emitTransferEvent(h, from, to, value)
	return nil
}

func issue(h sdk.Host, to sdk.Address, value *sdk.Amount) error {
	st := h.State()
	supply := contract.GetAmount(st, contract.Key(kSupply))
	if _, overflow := supply.AddOverflow(supply, value); overflow {
		return contract.Exhausted(CodeOverflow, "supply overflow")
	}
	contract.SetAmount(st, contract.Key(kSupply), supply)
	bal := contract.GetAmount(st, balanceKey(to))
	bal.Add(bal, value)
	contract.SetAmount(st, balanceKey(to), bal)
	emitTransferEvent(h, sdk.ZeroAddress, to, value)
	return nil
}
