package multitoken

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Client calls a deployed multi token contract.
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

// Mint issues pieces, the calling contract must be the minter.
func (c *Client) Mint(to sdk.Address, id uint64, amount *sdk.Amount) error {
	_, err := c.call("mint", to.String(), contract.U64(id), sdk.FormatAmount(amount))
	return err
}

// SetData records where id came from.
func (c *Client) SetData(id, g, nft, meta uint64) error {
	_, err := c.call("set_data", contract.U64(id), contract.U64(g), contract.U64(nft), contract.U64(meta))
	return err
}

func (c *Client) BalanceOf(account sdk.Address, id uint64) (*sdk.Amount, error) {
	ret, err := c.call("balance_of", account.String(), contract.U64(id))
	if err != nil {
		return nil, err
	}
	v, err := sdk.ParseAmount(ret)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "bad balance %q", ret)
	}
	return v, nil
}

func (c *Client) IsApprovedForAll(account, operator sdk.Address) (bool, error) {
	ret, err := c.call("is_approved_for_all", account.String(), operator.String())
	if err != nil {
		return false, err
	}
	return contract.ParseBool(ret), nil
}

// SafeTransferFrom moves pieces, the calling contract must be an approved operator of from.
func (c *Client) SafeTransferFrom(from, to sdk.Address, id uint64, amount *sdk.Amount) error {
	_, err := c.call("safe_transfer_from", from.String(), to.String(), contract.U64(id), sdk.FormatAmount(amount))
	return err
}
