// Package storage keeps the raw nft payloads. Items stay sealed to ticket holders until
// the minter opens them after a successful claim.
package storage

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/contract/curation"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/sdk"
)

const (
	RoleLibrary = "library"
	RoleGallery = "gallery"
	RoleMinter  = "minter"
)

const (
	CodeMissing uint16 = 401
	CodeSealed  uint16 = 402
	CodeCorrupt uint16 = 403
)

// Library is the curation side of a submission.
type Library interface {
	Submit(g uint64, user sdk.Address, dataRef string) (uint64, error)
}

// TicketChecker answers the ticket question for sealed items.
type TicketChecker interface {
	HasTicket(id uint64, user sdk.Address) (bool, error)
}

// New returns the storage entry points.
func New() contract.Router {
	return contract.Router{
		"submit_nft":        submitNft,
		"get_nft_data":      getNftData,
		"system_mint":       systemMint,
		"get_len":           getLen,
		"set_collaborators": setCollaborators,
	}
}

func library(h sdk.Host) (Library, error) {
	addr, err := contract.Collaborator(h.State(), RoleLibrary)
	if err != nil {
		return nil, err
	}
	return curation.NewClient(h, addr), nil
}

func tickets(h sdk.Host) (TicketChecker, error) {
	addr, err := contract.Collaborator(h.State(), RoleGallery)
	if err != nil {
		return nil, err
	}
	return gallery.NewClient(h, addr), nil
}

// submitNft stores the payload and registers it with the library. The library does the
// ticket and window checks, its failure rolls the whole submission back.
// Payload: gallery|data
// Result: storage_id|submission_id
func submitNft(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "gallery|data")
	if err != nil {
		return "", err
	}
	g, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	data, err := args.Text(1, "data")
	if err != nil {
		return "", err
	}
	lib, err := library(h)
	if err != nil {
		return "", err
	}
	st := h.State()
	owner := h.Env().Caller
	id := contract.NextID(st, contract.Key(kLen))
	saveItem(st, &Item{ID: id, Owner: owner, Gallery: g, Data: data})
	submission, err := lib.Submit(g, owner, contract.U64(id))
	if err != nil {
		return "", err
	}
	emitStoredEvent(h, id, g, owner)
	return contract.Join(contract.U64(id), contract.U64(submission)), nil
}

// getNftData reveals an item to the minter, to ticket holders of its gallery, or to
// anyone once opened.
// Payload: id
// Result: owner|data|gallery|open
func getNftData(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "id")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(0, "id")
	if err != nil {
		return "", err
	}
	st := h.State()
	it, err := loadItem(st, id)
	if err != nil {
		return "", err
	}
	if !it.Open {
		caller := h.Env().Caller
		minter, err := contract.Collaborator(st, RoleMinter)
		isMinter := err == nil && caller == minter
		if !isMinter {
			checker, err := tickets(h)
			if err != nil {
				return "", err
			}
			ok, err := checker.HasTicket(it.Gallery, caller)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", contract.Unauthorized(CodeSealed, "item %d is sealed", id)
			}
		}
	}
	return contract.Join(it.Owner.String(), it.Data, contract.U64(it.Gallery), contract.FormatBool(it.Open)), nil
}

// systemMint opens an item, minter only. Opening twice is a no-op and returns 0.
// Payload: id
func systemMint(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleMinter); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 1, "id")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(0, "id")
	if err != nil {
		return "", err
	}
	st := h.State()
	it, err := loadItem(st, id)
	if err != nil {
		return "", err
	}
	if it.Open {
		return "0", nil
	}
	it.Open = true
	saveItem(st, it)
	emitOpenedEvent(h, id)
	return "1", nil
}

func getLen(h sdk.Host, _ string) (string, error) {
	return contract.U64(contract.GetCount(h.State(), contract.Key(kLen))), nil
}

// Payload: library|gallery|minter
func setCollaborators(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleLibrary, RoleGallery, RoleMinter)
}
