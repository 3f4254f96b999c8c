// Package minter pays out the top of each leaderboard once voting is over: rank 0 gets
// three pieces, rank 1 two, rank 2 one. A claim also opens the stored nft data.
package minter

import (
	"strconv"

	"okinoko_gallery/contract"
	"okinoko_gallery/contract/curation"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/contract/multitoken"
	"okinoko_gallery/contract/staking"
	"okinoko_gallery/contract/storage"
	"okinoko_gallery/sdk"
)

const (
	RoleStaking    = "staking"
	RoleGallery    = "gallery"
	RoleLibrary    = "library"
	RoleMultiToken = "multitoken"
	RoleStorage    = "storage"
)

const (
	CodeVotingOpen  uint16 = 701
	CodeClaimed     uint16 = 702
	CodeNoTier      uint16 = 703
	CodeNotAccepted uint16 = 704
	CodeCorrupt     uint16 = 705
)

// tiers maps leaderboard rank to reward pieces.
var tiers = [...]uint64{3, 2, 1}

// RewardFor returns the pieces for a rank, false when the rank earns nothing.
func RewardFor(rank uint64) (uint64, bool) {
	if rank >= uint64(len(tiers)) {
		return 0, false
	}
	return tiers[rank], true
}

type Galleries interface {
	Get(id uint64) (*gallery.Gallery, error)
}

type Ranking interface {
	Position(g, nft uint64, user sdk.Address) (uint64, error)
}

type Library interface {
	Accepted(g, nft uint64) (*curation.Submission, error)
}

type Pieces interface {
	Mint(to sdk.Address, id uint64, amount *sdk.Amount) error
	SetData(id, g, nft, meta uint64) error
}

type Opener interface {
	Open(id uint64) error
}

type deps struct {
	gals   Galleries
	rank   Ranking
	lib    Library
	pieces Pieces
	store  Opener
}

func resolve(h sdk.Host) (*deps, error) {
	st := h.State()
	roles := []string{RoleStaking, RoleGallery, RoleLibrary, RoleMultiToken, RoleStorage}
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
		rank:   staking.NewClient(h, addrs[RoleStaking]),
		lib:    curation.NewClient(h, addrs[RoleLibrary]),
		pieces: multitoken.NewClient(h, addrs[RoleMultiToken]),
		store:  storage.NewClient(h, addrs[RoleStorage]),
	}, nil
}

// New returns the minter entry points.
func New() contract.Router {
	return contract.Router{
		"claim":             claim,
		"has_claimed":       hasClaimed,
		"set_collaborators": setCollaborators,
	}
}

// kClaimed flags a claim by user+gallery.
const kClaimed byte = 0x01

func claimedKey(user sdk.Address, g uint64) string {
	return contract.KeyAddrU64(kClaimed, user, g)
}

// claim mints the caller's reward for one nft of a finished gallery. The claim flag is
// written before any outgoing call.
// Payload: gallery|nft
// Result: pieces minted
func claim(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "gallery|nft")
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
	d, err := resolve(h)
	if err != nil {
		return "", err
	}
	env := h.Env()
	user := env.Caller

	info, err := d.gals.Get(g)
	if err != nil {
		return "", err
	}
	if env.Timestamp <= info.VotingEnd {
		return "", contract.InvalidState(CodeVotingOpen, "voting for gallery %d ends at %d", g, info.VotingEnd)
	}
	st := h.State()
	if contract.GetFlag(st, claimedKey(user, g)) {
		return "", contract.AlreadyDone(CodeClaimed, "%s already claimed in gallery %d", user, g)
	}
	rank, err := d.rank.Position(g, nft, user)
	if err != nil {
		return "", err
	}
	pieces, ok := RewardFor(rank)
	if !ok {
		return "", contract.InvalidState(CodeNoTier, "rank %d of %s earns no reward", rank, user)
	}
	sub, err := d.lib.Accepted(g, nft)
	if err != nil {
		return "", err
	}
	if sub.Owner.IsZero() {
		return "", contract.InvalidState(CodeNotAccepted, "nft %d is not accepted in gallery %d", nft, g)
	}
	dataID, err := strconv.ParseUint(sub.DataRef, 10, 64)
	if err != nil || dataID == 0 {
		return "", contract.InvalidState(CodeCorrupt, "nft %d has no storage item (%q)", nft, sub.DataRef)
	}

	contract.SetFlag(st, claimedKey(user, g))
	if err := d.store.Open(dataID); err != nil {
		return "", err
	}
	if err := d.pieces.SetData(dataID, g, nft, dataID); err != nil {
		return "", err
	}
	if err := d.pieces.Mint(user, dataID, sdk.NewAmount(pieces)); err != nil {
		return "", err
	}
	emitClaimedEvent(h, g, nft, user, dataID, rank, pieces)
	return contract.U64(pieces), nil
}

// Payload: gallery|user
func hasClaimed(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "gallery|user")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	user, err := args.Address(1, "user")
	if err != nil {
		return "", err
	}
	return contract.FormatBool(contract.GetFlag(h.State(), claimedKey(user, g))), nil
}

// Payload: staking|gallery|library|multitoken|storage
func setCollaborators(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleStaking, RoleGallery, RoleLibrary, RoleMultiToken, RoleStorage)
}
