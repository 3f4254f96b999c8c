package staking

import (
	"strconv"
	"strings"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Client calls a deployed staking contract.
type Client struct {
	h    sdk.Host
	addr sdk.Address
}

func NewClient(h sdk.Host, addr sdk.Address) *Client {
	return &Client{h: h, addr: addr}
}

func (c *Client) call(method string, fields ...string) (string, error) {
	return contract.Call(c.h, c.addr, method, fields...)
}

// Stake creates a cast and returns its id.
func (c *Client) Stake(user sdk.Address, g, nft uint64, bid *sdk.Amount) (uint64, error) {
	ret, err := c.call("stake", user.String(), contract.U64(g), contract.U64(nft), sdk.FormatAmount(bid))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(ret, 10, 64)
	if err != nil {
		return 0, contract.InvalidState(CodeCorrupt, "bad cast id %q", ret)
	}
	return id, nil
}

func (c *Client) UpdateBid(user sdk.Address, g, nft, cast uint64, bid *sdk.Amount) error {
	_, err := c.call("update_bid", user.String(), contract.U64(g), contract.U64(nft), contract.U64(cast), sdk.FormatAmount(bid))
	return err
}

// Cast reads a cast, the empty cast when unknown.
func (c *Client) Cast(g, nft, cast uint64) (*Cast, error) {
	ret, err := c.call("get_cast", contract.U64(g), contract.U64(nft), contract.U64(cast))
	if err != nil {
		return nil, err
	}
	return ParseCast(ret)
}

// Position returns the user's rank, PositionNone when unranked.
func (c *Client) Position(g, nft uint64, user sdk.Address) (uint64, error) {
	ret, err := c.call("get_position", contract.U64(g), contract.U64(nft), user.String())
	if err != nil {
		return 0, err
	}
	pos, err := strconv.ParseUint(ret, 10, 64)
	if err != nil {
		return 0, contract.InvalidState(CodeCorrupt, "bad position %q", ret)
	}
	return pos, nil
}

func (c *Client) HasVoted(g uint64, user sdk.Address) (bool, error) {
	ret, err := c.call("has_voted", contract.U64(g), user.String())
	if err != nil {
		return false, err
	}
	return contract.ParseBool(ret), nil
}

// ParseCast decodes bid|updated_at|voter.
func ParseCast(ret string) (*Cast, error) {
	parts := strings.SplitN(ret, "|", 3)
	if len(parts) != 3 {
		return nil, contract.InvalidState(CodeCorrupt, "bad cast record %q", ret)
	}
	bid, err := sdk.ParseAmount(parts[0])
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "bad cast bid %q", parts[0])
	}
	updated, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "bad cast time %q", parts[1])
	}
	return &Cast{Bid: bid, Updated: updated, Voter: sdk.Address(parts[2])}, nil
}
