// Package staking records bids (casts) per gallery nft and keeps the top-ranked ones on a
// bounded leaderboard. It trusts its controller (the safe vote contract) for every check
// around tickets, windows and payments; it only guards one vote per user per gallery.
package staking

import (
	"strings"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// RoleController is the contract allowed to stake and update bids.
const RoleController = "controller"

const (
	CodeAlreadyVoted uint16 = 501
	CodeUnknownCast  uint16 = 502
	CodeNotVoter     uint16 = 503
	CodeLowBid       uint16 = 504
	CodeRange        uint16 = 505
	CodeCorrupt      uint16 = 506
)

// New returns the staking entry points.
func New() contract.Router {
	return contract.Router{
		"stake":           stake,
		"update_bid":      updateBid,
		"get_cast":        getCast,
		"get_leaderboard": getLeaderboard,
		"get_position":    getPosition,
		"has_voted":       hasVoted,
		"get_totals":      getTotals,
		"set_controller":  setController,
	}
}

// stake creates a cast for user and ranks it.
// Payload: user|gallery|nft|bid
// Result: cast id
func stake(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleController); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 4, "user|gallery|nft|bid")
	if err != nil {
		return "", err
	}
	user, err := args.Address(0, "user")
	if err != nil {
		return "", err
	}
	g, err := args.ID(1, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.ID(2, "nft")
	if err != nil {
		return "", err
	}
	bid, err := args.Amount(3, "bid")
	if err != nil {
		return "", err
	}
	if bid.IsZero() {
		return "", contract.InsufficientValue(CodeLowBid, "bid must be positive")
	}
	st := h.State()
	if contract.GetFlag(st, votedKey(g, user)) {
		return "", contract.AlreadyDone(CodeAlreadyVoted, "%s already voted in gallery %d", user, g)
	}
	board, err := loadBoard(st, g, nft)
	if err != nil {
		return "", err
	}

	id := contract.NextID(st, castLenKey(g, nft))
	saveCast(st, g, nft, id, &Cast{Bid: bid, Updated: h.Env().Timestamp, Voter: user})
	contract.NextID(st, nftVotesKey(g, nft))
	contract.NextID(st, galleryVotesKey(g))
	contract.SetFlag(st, votedKey(g, user))
	rank := board.Upsert(id, bid)
	if rank >= 0 {
		saveBoard(st, g, nft, board)
	}
	emitStakedEvent(h, g, nft, id, user, bid, rank)
	return contract.U64(id), nil
}

// updateBid raises an existing cast. Bids never go down, the controller already makes
// sure of that but a lower bid here would break the leaderboard, so it is checked again.
// Payload: user|gallery|nft|cast|bid
// Result: new rank, -1 if unranked
func updateBid(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleController); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 5, "user|gallery|nft|cast|bid")
	if err != nil {
		return "", err
	}
	user, err := args.Address(0, "user")
	if err != nil {
		return "", err
	}
	g, err := args.ID(1, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.ID(2, "nft")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(3, "cast")
	if err != nil {
		return "", err
	}
	bid, err := args.Amount(4, "bid")
	if err != nil {
		return "", err
	}
	st := h.State()
	if id == 0 || id > contract.GetCount(st, castLenKey(g, nft)) {
		return "", contract.InvalidState(CodeUnknownCast, "cast %d does not exist for %d/%d", id, g, nft)
	}
	c, err := loadCast(st, g, nft, id)
	if err != nil {
		return "", err
	}
	if c.Voter != user {
		return "", contract.Unauthorized(CodeNotVoter, "cast %d belongs to %s", id, c.Voter)
	}
	if bid.Lt(c.Bid) {
		return "", contract.InsufficientValue(CodeLowBid, "bid %s is below the current %s", bid.Dec(), c.Bid.Dec())
	}
	board, err := loadBoard(st, g, nft)
	if err != nil {
		return "", err
	}

	c.Bid = bid
	c.Updated = h.Env().Timestamp
	saveCast(st, g, nft, id, c)
	rank := board.Upsert(id, bid)
	if rank >= 0 {
		saveBoard(st, g, nft, board)
	}
	emitBidUpdatedEvent(h, g, nft, id, user, bid, rank)
	return contract.I64(int64(rank)), nil
}

// getCast returns bid|updated_at|voter, the empty cast (0|0|) for unknown ids.
// Payload: gallery|nft|cast
func getCast(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "gallery|nft|cast")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.Uint(1, "nft")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(2, "cast")
	if err != nil {
		return "", err
	}
	c, err := loadCast(h.State(), g, nft, id)
	if err != nil {
		return "", err
	}
	return formatCast(c), nil
}

func formatCast(c *Cast) string {
	return contract.Join(sdk.FormatAmount(c.Bid), contract.I64(c.Updated), c.Voter.String())
}

// getLeaderboard returns ranks start..end-1 as ';' separated cast,bid,updated_at,voter
// entries. Unfilled ranks come back as the empty cast.
// Payload: gallery|nft|start|end
func getLeaderboard(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 4, "gallery|nft|start|end")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.Uint(1, "nft")
	if err != nil {
		return "", err
	}
	start, err := args.Uint(2, "start")
	if err != nil {
		return "", err
	}
	end, err := args.Uint(3, "end")
	if err != nil {
		return "", err
	}
	if end > Capacity {
		return "", contract.Exhausted(CodeRange, "end %d exceeds capacity %d", end, Capacity)
	}
	if start > end {
		return "", contract.InvalidInput(CodeRange, "start %d after end %d", start, end)
	}
	st := h.State()
	board, err := loadBoard(st, g, nft)
	if err != nil {
		return "", err
	}
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		e := board.At(int(i))
		c := &Cast{Bid: sdk.NewAmount(0)}
		if e.Cast != 0 {
			if c, err = loadCast(st, g, nft, e.Cast); err != nil {
				return "", err
			}
		}
		out = append(out, strings.Join([]string{
			contract.U64(e.Cast),
			sdk.FormatAmount(c.Bid),
			contract.I64(c.Updated),
			c.Voter.String(),
		}, ","))
	}
	return strings.Join(out, ";"), nil
}

// getPosition returns the user's rank for an nft, PositionNone when not ranked.
// Payload: gallery|nft|user
func getPosition(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "gallery|nft|user")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.Uint(1, "nft")
	if err != nil {
		return "", err
	}
	user, err := args.Address(2, "user")
	if err != nil {
		return "", err
	}
	pos, err := position(h.State(), g, nft, user)
	if err != nil {
		return "", err
	}
	return contract.U64(pos), nil
}

func position(st sdk.State, g, nft uint64, user sdk.Address) (uint64, error) {
	board, err := loadBoard(st, g, nft)
	if err != nil {
		return 0, err
	}
	for i, e := range board.entries {
		c, err := loadCast(st, g, nft, e.Cast)
		if err != nil {
			return 0, err
		}
		if c.Voter == user {
			return uint64(i), nil
		}
	}
	return PositionNone, nil
}

// Payload: gallery|user
func hasVoted(h sdk.Host, payload string) (string, error) {
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
	return contract.FormatBool(contract.GetFlag(h.State(), votedKey(g, user))), nil
}

// getTotals returns casts|nft_votes|gallery_votes.
// Payload: gallery|nft
func getTotals(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "gallery|nft")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	nft, err := args.Uint(1, "nft")
	if err != nil {
		return "", err
	}
	st := h.State()
	return contract.Join(
		contract.U64(contract.GetCount(st, castLenKey(g, nft))),
		contract.U64(contract.GetCount(st, nftVotesKey(g, nft))),
		contract.U64(contract.GetCount(st, galleryVotesKey(g))),
	), nil
}

// Payload: controller
func setController(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleController)
}
