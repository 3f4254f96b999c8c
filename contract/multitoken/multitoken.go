// Package multitoken is the ERC-1155 style ledger for gallery rewards. Only the minter
// contract can create supply; holders move pieces themselves or through approved operators.
package multitoken

import (
	"strconv"
	"strings"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Name is the collection name.
const Name = "Nova Vault NFTs and SFT"

// RoleMinter may mint and attach data.
const RoleMinter = "minter"

const (
	CodeNotApproved uint16 = 901
	CodeBalance     uint16 = 902
	CodeLength      uint16 = 903
	CodeOverflow    uint16 = 904
	CodeCorrupt     uint16 = 905
	CodeSelf        uint16 = 906
)

// New returns the multi token entry points.
func New() contract.Router {
	return contract.Router{
		"name":                     name,
		"balance_of":               balanceOf,
		"balance_of_batch":         balanceOfBatch,
		"set_approval_for_all":     setApprovalForAll,
		"is_approved_for_all":      isApprovedForAll,
		"safe_transfer_from":       safeTransferFrom,
		"safe_batch_transfer_from": safeBatchTransferFrom,
		"mint":                     mint,
		"mint_batch":               mintBatch,
		"total_supply":             totalSupply,
		"set_data":                 setData,
		"get_data":                 getData,
		"set_minter":               setMinter,
	}
}

func name(_ sdk.Host, _ string) (string, error) { return Name, nil }

// Payload: account|id
func balanceOf(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "account|id")
	if err != nil {
		return "", err
	}
	account, err := args.Address(0, "account")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(1, "id")
	if err != nil {
		return "", err
	}
	return sdk.FormatAmount(contract.GetAmount(h.State(), balanceKey(account, id))), nil
}

// balanceOfBatch pairs accounts with ids, the shorter list wins.
// Payload: account;account|id;id
// Result: balance;balance
func balanceOfBatch(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "accounts|ids")
	if err != nil {
		return "", err
	}
	accounts := args.List(0)
	ids, err := parseIDs(args.List(1))
	if err != nil {
		return "", err
	}
	n := min(len(accounts), len(ids))
	out := make([]string, 0, n)
	st := h.State()
	for i := 0; i < n; i++ {
		addr := sdk.Address(accounts[i])
		if !addr.IsValid() {
			return "", contract.InvalidInput(contract.CodeBadPayload, "invalid account %q", accounts[i])
		}
		out = append(out, sdk.FormatAmount(contract.GetAmount(st, balanceKey(addr, ids[i]))))
	}
	return strings.Join(out, ";"), nil
}

// Payload: operator|approved
func setApprovalForAll(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "operator|approved")
	if err != nil {
		return "", err
	}
	operator, err := args.Address(0, "operator")
	if err != nil {
		return "", err
	}
	owner := h.Env().Caller
	if operator == owner {
		return "", contract.InvalidInput(CodeSelf, "cannot approve yourself")
	}
	approved := args.Bool(1)
	st := h.State()
	if approved {
		contract.SetFlag(st, approvalKey(owner, operator))
	} else {
		st.Delete(approvalKey(owner, operator))
	}
	emitApprovalEvent(h, owner, operator, approved)
	return "ok", nil
}

// Payload: account|operator
func isApprovedForAll(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "account|operator")
	if err != nil {
		return "", err
	}
	account, err := args.Address(0, "account")
	if err != nil {
		return "", err
	}
	operator, err := args.Address(1, "operator")
	if err != nil {
		return "", err
	}
	return contract.FormatBool(contract.GetFlag(h.State(), approvalKey(account, operator))), nil
}

// safeTransferFrom moves amount of id. The caller is the owner or an approved operator.
// Payload: from|to|id|amount
func safeTransferFrom(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 4, "from|to|id|amount")
	if err != nil {
		return "", err
	}
	from, to, err := parties(args)
	if err != nil {
		return "", err
	}
	id, err := args.Uint(2, "id")
	if err != nil {
		return "", err
	}
	amount, err := args.Amount(3, "amount")
	if err != nil {
		return "", err
	}
	operator := h.Env().Caller
	if err := checkOperator(h.State(), operator, from); err != nil {
		return "", err
	}
	if err := move(h.State(), from, to, id, amount); err != nil {
		return "", err
	}
	emitTransferEvent(h, "ts", operator, from, to, contract.U64(id), sdk.FormatAmount(amount))
	return "ok", nil
}

// Payload: from|to|id;id|amount;amount
func safeBatchTransferFrom(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 4, "from|to|ids|amounts")
	if err != nil {
		return "", err
	}
	from, to, err := parties(args)
	if err != nil {
		return "", err
	}
	ids, amounts, err := pairs(args, 2)
	if err != nil {
		return "", err
	}
	operator := h.Env().Caller
	st := h.State()
	if err := checkOperator(st, operator, from); err != nil {
		return "", err
	}
	for i := range ids {
		if err := move(st, from, to, ids[i], amounts[i]); err != nil {
			return "", err
		}
	}
	emitTransferEvent(h, "tb", operator, from, to, args.String(2), args.String(3))
	return "ok", nil
}

// mint issues amount of id to a holder, minter only.
// Payload: to|id|amount
func mint(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleMinter); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 3, "to|id|amount")
	if err != nil {
		return "", err
	}
	to, err := args.Address(0, "to")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(1, "id")
	if err != nil {
		return "", err
	}
	amount, err := args.Amount(2, "amount")
	if err != nil {
		return "", err
	}
	if err := issue(h.State(), to, id, amount); err != nil {
		return "", err
	}
	emitTransferEvent(h, "ts", h.Env().Caller, sdk.ZeroAddress, to, contract.U64(id), sdk.FormatAmount(amount))
	return "ok", nil
}

// Payload: to|id;id|amount;amount
func mintBatch(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleMinter); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 3, "to|ids|amounts")
	if err != nil {
		return "", err
	}
	to, err := args.Address(0, "to")
	if err != nil {
		return "", err
	}
	ids, amounts, err := pairs(args, 1)
	if err != nil {
		return "", err
	}
	st := h.State()
	for i := range ids {
		if err := issue(st, to, ids[i], amounts[i]); err != nil {
			return "", err
		}
	}
	emitTransferEvent(h, "tb", h.Env().Caller, sdk.ZeroAddress, to, args.String(1), args.String(2))
	return "ok", nil
}

// Payload: id
func totalSupply(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "id")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(0, "id")
	if err != nil {
		return "", err
	}
	return sdk.FormatAmount(contract.GetAmount(h.State(), supplyKey(id))), nil
}

// setData attaches gallery|nft|meta to an id, minter only.
// Payload: id|gallery|nft|meta
func setData(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleMinter); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 4, "id|gallery|nft|meta")
	if err != nil {
		return "", err
	}
	vals := make([]uint64, 4)
	for i, field := range []string{"id", "gallery", "nft", "meta"} {
		if vals[i], err = args.Uint(i, field); err != nil {
			return "", err
		}
	}
	saveData(h.State(), vals[0], &Data{Gallery: vals[1], Nft: vals[2], Meta: vals[3]})
	return "ok", nil
}

// getData returns gallery|nft|meta, zeros for unknown ids.
// Payload: id
func getData(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "id")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(0, "id")
	if err != nil {
		return "", err
	}
	d, err := loadData(h.State(), id)
	if err != nil {
		return "", err
	}
	return contract.Join(contract.U64(d.Gallery), contract.U64(d.Nft), contract.U64(d.Meta)), nil
}

// Payload: minter
func setMinter(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleMinter)
}

// -----------------------------------------------------------------------------
// Ledger helpers
// -----------------------------------------------------------------------------

func checkOperator(st sdk.State, operator, from sdk.Address) error {
	if operator == from || contract.GetFlag(st, approvalKey(from, operator)) {
		return nil
	}
	return contract.Unauthorized(CodeNotApproved, "%s is not an operator for %s", operator, from)
}

func move(st sdk.State, from, to sdk.Address, id uint64, amount *sdk.Amount) error {
	fromBal := contract.GetAmount(st, balanceKey(from, id))
	if fromBal.Lt(amount) {
		return contract.InsufficientValue(CodeBalance, "%s holds %s of %d, needs %s", from, fromBal.Dec(), id, amount.Dec())
	}
	if from == to {
		return nil
	}
	toBal := contract.GetAmount(st, balanceKey(to, id))
	sum, overflow := new(sdk.Amount).AddOverflow(toBal, amount)
	if overflow {
		return contract.Exhausted(CodeOverflow, "balance overflow")
	}
	contract.SetAmount(st, balanceKey(from, id), new(sdk.Amount).Sub(fromBal, amount))
	contract.SetAmount(st, balanceKey(to, id), sum)
	return nil
}

func issue(st sdk.State, to sdk.Address, id uint64, amount *sdk.Amount) error {
	supply, overflow := new(sdk.Amount).AddOverflow(contract.GetAmount(st, supplyKey(id)), amount)
	if overflow {
		return contract.Exhausted(CodeOverflow, "supply overflow for %d", id)
	}
	bal, overflow := new(sdk.Amount).AddOverflow(contract.GetAmount(st, balanceKey(to, id)), amount)
	if overflow {
		return contract.Exhausted(CodeOverflow, "balance overflow")
	}
	contract.SetAmount(st, supplyKey(id), supply)
	contract.SetAmount(st, balanceKey(to, id), bal)
	return nil
}

func parties(args contract.Args) (sdk.Address, sdk.Address, error) {
	from, err := args.Address(0, "from")
	if err != nil {
		return "", "", err
	}
	to, err := args.Address(1, "to")
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func parseIDs(raw []string) ([]uint64, error) {
	ids := make([]uint64, len(raw))
	for i, r := range raw {
		id, err := strconv.ParseUint(r, 10, 64)
		if err != nil {
			return nil, contract.InvalidInput(contract.CodeBadPayload, "invalid id %q", r)
		}
		ids[i] = id
	}
	return ids, nil
}

// pairs reads the ids and amounts lists starting at field i, both must line up.
func pairs(args contract.Args, i int) ([]uint64, []*sdk.Amount, error) {
	ids, err := parseIDs(args.List(i))
	if err != nil {
		return nil, nil, err
	}
	rawAmounts := args.List(i + 1)
	if len(ids) == 0 || len(ids) != len(rawAmounts) {
		return nil, nil, contract.InvalidInput(CodeLength, "ids and amounts must have the same non zero length")
	}
	amounts := make([]*sdk.Amount, len(rawAmounts))
	for j, r := range rawAmounts {
		v, err := sdk.ParseAmount(r)
		if err != nil {
			return nil, nil, contract.InvalidInput(contract.CodeBadPayload, "invalid amount %q", r)
		}
		amounts[j] = v
	}
	return ids, amounts, nil
}
