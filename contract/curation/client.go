package curation

import (
	"strconv"
	"strings"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Client calls a deployed curation contract.
type Client struct {
	h    sdk.Host
	addr sdk.Address
}

// NewClient binds a client to the curation contract at addr.
func NewClient(h sdk.Host, addr sdk.Address) *Client {
	return &Client{h: h, addr: addr}
}

func (c *Client) call(method string, fields ...string) (string, error) {
	return contract.Call(c.h, c.addr, method, fields...)
}

// Submit registers a candidate on behalf of user and returns the submission id.
func (c *Client) Submit(g uint64, user sdk.Address, dataRef string) (uint64, error) {
	ret, err := c.call("submit_nft", contract.U64(g), user.String(), dataRef)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(ret, 10, 64)
	if err != nil {
		return 0, contract.InvalidState(CodeCorrupt, "bad submission id %q", ret)
	}
	return id, nil
}

// Accepted resolves an accepted rank to its submission, the zero record if unknown.
func (c *Client) Accepted(g, nft uint64) (*Submission, error) {
	ret, err := c.call("get_nft", contract.U64(g), contract.U64(nft), "false")
	if err != nil {
		return nil, err
	}
	return ParseSubmission(ret)
}

// ParseSubmission decodes owner|status|data_ref.
func ParseSubmission(ret string) (*Submission, error) {
	parts := strings.SplitN(ret, "|", 3)
	if len(parts) != 3 {
		return nil, contract.InvalidState(CodeCorrupt, "bad submission record %q", ret)
	}
	status, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "bad submission status %q", parts[1])
	}
	return &Submission{Owner: sdk.Address(parts[0]), Status: Status(status), DataRef: parts[2]}, nil
}
