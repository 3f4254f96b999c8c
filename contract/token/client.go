package token

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Client calls a deployed token contract.
type Client struct {
	h    sdk.Host
	addr sdk.Address
}

// NewClient binds a client to the token at addr.
func NewClient(h sdk.Host, addr sdk.Address) *Client {
	return &Client{h: h, addr: addr}
}

func (c *Client) call(method string, fields ...string) (string, error) {
	return contract.Call(c.h, c.addr, method, fields...)
}

// TransferFrom moves value using the allowance granted to the calling contract.
func (c *Client) TransferFrom(from, to sdk.Address, value *sdk.Amount) error {
	_, err := c.call("transfer_from", from.String(), to.String(), sdk.FormatAmount(value))
	return err
}

// MintTo issues new tokens, the calling contract must be a registered minter.
func (c *Client) MintTo(to sdk.Address, value *sdk.Amount) error {
	_, err := c.call("mint_to", to.String(), sdk.FormatAmount(value))
	return err
}

// BalanceOf reads a balance.
func (c *Client) BalanceOf(account sdk.Address) (*sdk.Amount, error) {
	ret, err := c.call("balance_of", account.String())
	if err != nil {
		return nil, err
	}
	v, err := sdk.ParseAmount(ret)
	if err != nil {
		return nil, contract.AsError(err)
	}
	return v, nil
}
