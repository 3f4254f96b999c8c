// Package market lists multi token pieces for sale. Sellers approve the market as an
// operator; buyers approve it on the fungible token for the price.
package market

import (
	"strconv"
	"strings"

	"okinoko_gallery/contract"
	"okinoko_gallery/contract/multitoken"
	"okinoko_gallery/contract/token"
	"okinoko_gallery/sdk"
)

const (
	RoleMultiToken = "multitoken"
	RoleToken      = "token"
)

const (
	CodeBalance    uint16 = 1101
	CodeNotForSale uint16 = 1102
	CodeNoAccess   uint16 = 1103
	CodeOverflow   uint16 = 1104
	CodeCorrupt    uint16 = 1105
)

const kListing byte = 0x01

// Listing is an offer of amount pieces at price each.
type Listing struct {
	Price   *sdk.Amount
	ForSale bool
	Amount  *sdk.Amount
}

type Pieces interface {
	BalanceOf(account sdk.Address, id uint64) (*sdk.Amount, error)
	IsApprovedForAll(account, operator sdk.Address) (bool, error)
	SafeTransferFrom(from, to sdk.Address, id uint64, amount *sdk.Amount) error
}

type Payments interface {
	TransferFrom(from, to sdk.Address, value *sdk.Amount) error
}

// New returns the market entry points.
func New() contract.Router {
	return contract.Router{
		"offer":             offer,
		"get_cost_batch":    getCostBatch,
		"buy":               buy,
		"set_collaborators": setCollaborators,
	}
}

func pieces(h sdk.Host) (Pieces, error) {
	addr, err := contract.Collaborator(h.State(), RoleMultiToken)
	if err != nil {
		return nil, err
	}
	return multitoken.NewClient(h, addr), nil
}

func payments(h sdk.Host) (Payments, error) {
	addr, err := contract.Collaborator(h.State(), RoleToken)
	if err != nil {
		return nil, err
	}
	return token.NewClient(h, addr), nil
}

func listingKey(owner sdk.Address, id uint64) string { return contract.KeyAddrU64(kListing, owner, id) }

func loadListing(st sdk.State, owner sdk.Address, id uint64) (*Listing, error) {
	ptr := st.Get(listingKey(owner, id))
	if ptr == nil {
		return &Listing{Price: sdk.NewAmount(0), Amount: sdk.NewAmount(0)}, nil
	}
	r := contract.NewStringReader(*ptr)
	l := &Listing{}
	var err error
	if l.Price, err = r.ReadAmount(); err == nil {
		if l.ForSale, err = r.ReadBool(); err == nil {
			l.Amount, err = r.ReadAmount()
		}
	}
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "listing %s/%d unreadable", owner, id)
	}
	return l, nil
}

func saveListing(st sdk.State, owner sdk.Address, id uint64, l *Listing) {
	w := contract.NewWriter()
	w.WriteAmount(l.Price)
	w.WriteBool(l.ForSale)
	w.WriteAmount(l.Amount)
	st.Set(listingKey(owner, id), w.String())
}

// offer lists (or relists, or pauses) the caller's pieces of one id.
// Payload: id|amount|price|for_sale
func offer(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 4, "id|amount|price|for_sale")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(0, "id")
	if err != nil {
		return "", err
	}
	amount, err := args.Amount(1, "amount")
	if err != nil {
		return "", err
	}
	price, err := args.Amount(2, "price")
	if err != nil {
		return "", err
	}
	forSale := args.Bool(3)
	mt, err := pieces(h)
	if err != nil {
		return "", err
	}
	seller := h.Env().Caller
	balance, err := mt.BalanceOf(seller, id)
	if err != nil {
		return "", err
	}
	if balance.IsZero() || amount.Gt(balance) {
		return "", contract.InsufficientValue(CodeBalance, "%s holds %s of %d", seller, balance.Dec(), id)
	}
	saveListing(h.State(), seller, id, &Listing{Price: price, ForSale: forSale, Amount: amount})
	contract.Emit(h, "of",
		"by", seller.String(),
		"id", contract.U64(id),
		"amount", sdk.FormatAmount(amount),
		"price", sdk.FormatAmount(price),
		"sale", contract.FormatBool(forSale),
	)
	return "ok", nil
}

// getCostBatch returns price,for_sale,amount per owner/id pair.
// Payload: owner;owner|id;id
func getCostBatch(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "owners|ids")
	if err != nil {
		return "", err
	}
	owners := args.List(0)
	ids := args.List(1)
	n := min(len(owners), len(ids))
	st := h.State()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		owner := sdk.Address(owners[i])
		if !owner.IsValid() {
			return "", contract.InvalidInput(contract.CodeBadPayload, "invalid owner %q", owners[i])
		}
		id, err := strconv.ParseUint(ids[i], 10, 64)
		if err != nil {
			return "", contract.InvalidInput(contract.CodeBadPayload, "invalid id %q", ids[i])
		}
		l, err := loadListing(st, owner, id)
		if err != nil {
			return "", err
		}
		out = append(out, strings.Join([]string{sdk.FormatAmount(l.Price), contract.FormatBool(l.ForSale), sdk.FormatAmount(l.Amount)}, ","))
	}
	return strings.Join(out, ";"), nil
}

// buy takes amount pieces from a listing. The listing shrinks first, then the price
// moves buyer to seller, then the pieces move seller to buyer.
// Payload: owner|id|amount
func buy(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "owner|id|amount")
	if err != nil {
		return "", err
	}
	owner, err := args.Address(0, "owner")
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
	mt, err := pieces(h)
	if err != nil {
		return "", err
	}
	pay, err := payments(h)
	if err != nil {
		return "", err
	}
	env := h.Env()
	buyer := env.Caller
	st := h.State()
	l, err := loadListing(st, owner, id)
	if err != nil {
		return "", err
	}
	if !l.ForSale || l.Amount.IsZero() || amount.IsZero() || amount.Gt(l.Amount) {
		return "", contract.InvalidState(CodeNotForSale, "%s does not offer %s of %d", owner, amount.Dec(), id)
	}
	approved, err := mt.IsApprovedForAll(owner, env.Self)
	if err != nil {
		return "", err
	}
	if !approved {
		return "", contract.Unauthorized(CodeNoAccess, "%s has not approved the market", owner)
	}
	cost, overflow := new(sdk.Amount).MulOverflow(l.Price, amount)
	if overflow {
		return "", contract.Exhausted(CodeOverflow, "price overflow")
	}

	l.Amount = new(sdk.Amount).Sub(l.Amount, amount)
	saveListing(st, owner, id, l)
	if !cost.IsZero() {
		if err := pay.TransferFrom(buyer, owner, cost); err != nil {
			return "", err
		}
	}
	if err := mt.SafeTransferFrom(owner, buyer, id, amount); err != nil {
		return "", err
	}
	contract.Emit(h, "so",
		"from", owner.String(),
		"to", buyer.String(),
		"id", contract.U64(id),
		"amount", sdk.FormatAmount(amount),
		"cost", sdk.FormatAmount(cost),
		"at", contract.I64(env.Timestamp),
	)
	return sdk.FormatAmount(cost), nil
}

// Payload: multitoken|token
func setCollaborators(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleMultiToken, RoleToken)
}
