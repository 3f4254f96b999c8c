package storage

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Client calls a deployed storage contract.
type Client struct {
	h    sdk.Host
	addr sdk.Address
}

// NewClient binds a client to the storage contract at addr.
func NewClient(h sdk.Host, addr sdk.Address) *Client {
	return &Client{h: h, addr: addr}
}

// Open marks an item public, the calling contract must be the configured minter.
func (c *Client) Open(id uint64) error {
	_, err := c.h.Call(c.addr, "system_mint", contract.U64(id))
	if err != nil {
		return contract.AsError(err)
	}
	return nil
}
