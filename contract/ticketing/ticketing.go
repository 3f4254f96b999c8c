// Package ticketing sells gallery admissions: checks, records the ticket in the
// gallery contract and only then moves the price to the gallery owner.
package ticketing

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/contract/token"
	"okinoko_gallery/sdk"
)

const (
	RoleGallery = "gallery"
	RoleToken   = "token"
)

const (
	CodeHasTicket uint16 = 201
)

// Galleries is what ticketing needs from the gallery contract.
type Galleries interface {
	Get(id uint64) (*gallery.Gallery, error)
	HasTicket(id uint64, user sdk.Address) (bool, error)
	Admit(id uint64, user sdk.Address) error
}

// Payments moves the ticket price.
type Payments interface {
	TransferFrom(from, to sdk.Address, value *sdk.Amount) error
}

// New returns the ticketing entry points.
func New() contract.Router {
	return contract.Router{
		"buy_ticket":        buyTicket,
		"set_collaborators": setCollaborators,
	}
}

func galleries(h sdk.Host) (Galleries, error) {
	addr, err := contract.Collaborator(h.State(), RoleGallery)
	if err != nil {
		return nil, err
	}
	return gallery.NewClient(h, addr), nil
}

func payments(h sdk.Host) (Payments, error) {
	addr, err := contract.Collaborator(h.State(), RoleToken)
	if err != nil {
		return nil, err
	}
	return token.NewClient(h, addr), nil
}

// buyTicket admits the caller to a gallery. The buyer must have approved this contract
// for at least the ticket price on the token contract.
// Payload: gallery
func buyTicket(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "gallery")
	if err != nil {
		return "", err
	}
	id, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	gals, err := galleries(h)
	if err != nil {
		return "", err
	}
	pay, err := payments(h)
	if err != nil {
		return "", err
	}
	buyer := h.Env().Caller
	g, err := gals.Get(id)
	if err != nil {
		return "", err
	}
	has, err := gals.HasTicket(id, buyer)
	if err != nil {
		return "", err
	}
	if has {
		return "", contract.AlreadyDone(CodeHasTicket, "%s already holds a ticket for gallery %d", buyer, id)
	}

	if err := gals.Admit(id, buyer); err != nil {
		return "", err
	}
	if !g.Price.IsZero() {
		if err := pay.TransferFrom(buyer, g.Owner, g.Price); err != nil {
			return "", err
		}
	}
	emitBoughtTicketEvent(h, id, buyer, g.Price)
	emitSoldTicketEvent(h, id, g.Owner, g.Price)
	return "ok", nil
}

// Payload: gallery|token
func setCollaborators(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleGallery, RoleToken)
}
