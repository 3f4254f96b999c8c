package gallery

import (
	"strconv"
	"strings"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Client is the typed view other contracts use to talk to a deployed gallery contract.
type Client struct {
	h    sdk.Host
	addr sdk.Address
}

// NewClient binds a client to the gallery contract at addr.
func NewClient(h sdk.Host, addr sdk.Address) *Client {
	return &Client{h: h, addr: addr}
}

func (c *Client) call(method string, fields ...string) (string, error) {
	return contract.Call(c.h, c.addr, method, fields...)
}

// Get loads a gallery, fails with InvalidState when it does not exist.
func (c *Client) Get(id uint64) (*Gallery, error) {
	ret, err := c.call("get_gallery", contract.U64(id))
	if err != nil {
		return nil, err
	}
	return ParseGallery(id, ret)
}

// HasTicket is the admission check.
func (c *Client) HasTicket(id uint64, user sdk.Address) (bool, error) {
	ret, err := c.call("get_user_status", contract.U64(id), user.String())
	if err != nil {
		return false, err
	}
	return contract.ParseBool(ret), nil
}

// LastIndex returns the highest allocated gallery id.
func (c *Client) LastIndex() (uint64, error) {
	ret, err := c.call("get_last_index")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(ret, 10, 64)
	if err != nil {
		return 0, contract.InvalidState(CodeCorrupt, "bad last index %q", ret)
	}
	return n, nil
}

// Admit hands out a ticket, only works when the caller is the configured ticketing contract.
func (c *Client) Admit(id uint64, user sdk.Address) error {
	_, err := c.call("buy_ticket", contract.U64(id), user.String())
	return err
}

// ParseGallery decodes the get_gallery result.
// Format: owner|name|metadata|attendees|created_at|price|voting_end|voting_start|min_stake
func ParseGallery(id uint64, ret string) (*Gallery, error) {
	parts := strings.Split(ret, "|")
	if len(parts) != 9 {
		return nil, contract.InvalidState(CodeCorrupt, "bad gallery record %q", ret)
	}
	bad := func() (*Gallery, error) {
		return nil, contract.InvalidState(CodeCorrupt, "bad gallery record %q", ret)
	}
	g := &Gallery{ID: id, Owner: sdk.Address(parts[0]), Name: parts[1], Metadata: parts[2]}
	var err error
	if g.Attendees, err = strconv.ParseUint(parts[3], 10, 64); err != nil {
		return bad()
	}
	if g.CreatedAt, err = strconv.ParseInt(parts[4], 10, 64); err != nil {
		return bad()
	}
	if g.Price, err = sdk.ParseAmount(parts[5]); err != nil {
		return bad()
	}
	if g.VotingEnd, err = strconv.ParseInt(parts[6], 10, 64); err != nil {
		return bad()
	}
	if g.VotingStart, err = strconv.ParseInt(parts[7], 10, 64); err != nil {
		return bad()
	}
	if g.MinStake, err = sdk.ParseAmount(parts[8]); err != nil {
		return bad()
	}
	return g, nil
}
