// Package safevote is the only way into staking. It checks the voting window, the ticket,
// the one-vote rule and the minimum stake, pays the nft creator and records the cast.
package safevote

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/contract/curation"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/contract/staking"
	"okinoko_gallery/contract/token"
	"okinoko_gallery/sdk"
)

const (
	RoleStaking = "staking"
	RoleToken   = "token"
	RoleGallery = "gallery"
	RoleLibrary = "library"
)

const (
	CodeWindow       uint16 = 601
	CodeNoTicket     uint16 = 602
	CodeAlreadyVoted uint16 = 603
	CodeLowBid       uint16 = 604
	CodeNotAccepted  uint16 = 605
	CodeNotVoter     uint16 = 606
	CodeUnknownCast  uint16 = 607
)

// Galleries is what voting needs from the gallery contract.
type Galleries interface {
	Get(id uint64) (*gallery.Gallery, error)
	HasTicket(id uint64, user sdk.Address) (bool, error)
}

// Ledger is the staking contract.
type Ledger interface {
	Stake(user sdk.Address, g, nft uint64, bid *sdk.Amount) (uint64, error)
	UpdateBid(user sdk.Address, g, nft, cast uint64, bid *sdk.Amount) error
	Cast(g, nft, cast uint64) (*staking.Cast, error)
	HasVoted(g uint64, user sdk.Address) (bool, error)
}

// Payments moves bids to creators.
type Payments interface {
	TransferFrom(from, to sdk.Address, value *sdk.Amount) error
}

// Library resolves accepted nfts to their creators.
type Library interface {
	Accepted(g, nft uint64) (*curation.Submission, error)
}

type deps struct {
	gals   Galleries
	ledger Ledger
	pay    Payments
	lib    Library
}

func resolve(h sdk.Host) (*deps, error) {
	st := h.State()
	roles := []string{RoleGallery, RoleStaking, RoleToken, RoleLibrary}
	addrs := make(map[string]sdk.Address, len(roles))
	for _, role := range roles {
		addr, err := contract.Collaborator(st, role)
		if err != nil {
			return nil, err
		}
		addrs[role] = addr
	}
	return &deps{
		gals:   gallery.NewClient(h, addrs[RoleGallery]),
		ledger: staking.NewClient(h, addrs[RoleStaking]),
		pay:    token.NewClient(h, addrs[RoleToken]),
		lib:    curation.NewClient(h, addrs[RoleLibrary]),
	}, nil
}

// New returns the safe vote entry points.
func New() contract.Router {
	return contract.Router{
		"cast_vote":         castVote,
		"increase_cast":     increaseCast,
		"set_collaborators": setCollaborators,
	}
}

func openWindow(d *deps, g uint64, now int64) (*gallery.Gallery, error) {
	info, err := d.gals.Get(g)
	if err != nil {
		return nil, err
	}
	if !info.InSession(now) {
		return nil, contract.InvalidState(CodeWindow, "voting for gallery %d runs %d..%d, now %d", g, info.VotingStart, info.VotingEnd, now)
	}
	return info, nil
}

func creatorOf(d *deps, g, nft uint64) (sdk.Address, error) {
	sub, err := d.lib.Accepted(g, nft)
	if err != nil {
		return sdk.ZeroAddress, err
	}
	if sub.Owner.IsZero() {
		return sdk.ZeroAddress, contract.InvalidState(CodeNotAccepted, "nft %d is not accepted in gallery %d", nft, g)
	}
	return sub.Owner, nil
}

// castVote stakes bid on an accepted nft and pays it to the creator.
// Staking is written before the transfer, the token contract never sees a half voted state.
// Payload: gallery|nft|bid
// Result: cast id
func castVote(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "gallery|nft|bid")
	if err != nil {
		return "", err
	}
	g, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.ID(1, "nft")
	if err != nil {
		return "", err
	}
	bid, err := args.Amount(2, "bid")
	if err != nil {
		return "", err
	}
	d, err := resolve(h)
	if err != nil {
		return "", err
	}
	env := h.Env()
	voter := env.Caller

	info, err := openWindow(d, g, env.Timestamp)
	if err != nil {
		return "", err
	}
	ticket, err := d.gals.HasTicket(g, voter)
	if err != nil {
		return "", err
	}
	if !ticket {
		return "", contract.Unauthorized(CodeNoTicket, "%s holds no ticket for gallery %d", voter, g)
	}
	voted, err := d.ledger.HasVoted(g, voter)
	if err != nil {
		return "", err
	}
	if voted {
		return "", contract.AlreadyDone(CodeAlreadyVoted, "%s already voted in gallery %d", voter, g)
	}
	if bid.IsZero() || bid.Lt(info.MinStake) {
		return "", contract.InsufficientValue(CodeLowBid, "bid %s below minimum stake %s", bid.Dec(), info.MinStake.Dec())
	}
	creator, err := creatorOf(d, g, nft)
	if err != nil {
		return "", err
	}

	cast, err := d.ledger.Stake(voter, g, nft, bid)
	if err != nil {
		return "", err
	}
	if err := d.pay.TransferFrom(voter, creator, bid); err != nil {
		return "", err
	}
	emitVotePaidEvent(h, g, nft, cast, voter, creator, bid)
	return contract.U64(cast), nil
}

// increaseCast raises an own cast. Only the difference to the old bid moves.
// Payload: gallery|nft|cast|bid
func increaseCast(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 4, "gallery|nft|cast|bid")
	if err != nil {
		return "", err
	}
	g, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.ID(1, "nft")
	if err != nil {
		return "", err
	}
	id, err := args.ID(2, "cast")
	if err != nil {
		return "", err
	}
	bid, err := args.Amount(3, "bid")
	if err != nil {
		return "", err
	}
	d, err := resolve(h)
	if err != nil {
		return "", err
	}
	env := h.Env()
	voter := env.Caller

	if _, err := openWindow(d, g, env.Timestamp); err != nil {
		return "", err
	}
	c, err := d.ledger.Cast(g, nft, id)
	if err != nil {
		return "", err
	}
	if c.Voter.IsZero() {
		return "", contract.InvalidState(CodeUnknownCast, "cast %d does not exist for %d/%d", id, g, nft)
	}
	if c.Voter != voter {
		return "", contract.Unauthorized(CodeNotVoter, "cast %d belongs to %s", id, c.Voter)
	}
	if !bid.Gt(c.Bid) {
		return "", contract.InsufficientValue(CodeLowBid, "new bid %s must exceed %s", bid.Dec(), c.Bid.Dec())
	}
	creator, err := creatorOf(d, g, nft)
	if err != nil {
		return "", err
	}

	if err := d.ledger.UpdateBid(voter, g, nft, id, bid); err != nil {
		return "", err
	}
	diff := new(sdk.Amount).Sub(bid, c.Bid)
	if err := d.pay.TransferFrom(voter, creator, diff); err != nil {
		return "", err
	}
	emitVotePaidEvent(h, g, nft, id, voter, creator, diff)
	return sdk.FormatAmount(diff), nil
}

// Payload: staking|token|gallery|library
func setCollaborators(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleStaking, RoleToken, RoleGallery, RoleLibrary)
}
