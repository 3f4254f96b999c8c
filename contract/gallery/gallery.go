// Package gallery owns gallery metadata, the ticket ledger and the voting windows.
package gallery

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// RoleTicketing is the only contract allowed to admit users.
const RoleTicketing = "ticketing"

const (
	CodeInvalidParams uint16 = 101
	CodeNotFound      uint16 = 102
	CodeHasTicket     uint16 = 103
	CodeBadList       uint16 = 104
	CodeListIndex     uint16 = 105
	CodeCorrupt       uint16 = 106
)

// New returns the gallery entry points.
func New() contract.Router {
	return contract.Router{
		"create_gallery":  createGallery,
		"buy_ticket":      buyTicket,
		"set_ticketing":   setTicketing,
		"get_gallery":     getGallery,
		"get_user_status": getUserStatus,
		"get_last_index":  getLastIndex,
		"in_session":      inSession,
		"get_min_stake":   getMinStake,
		"get_uc":          getUserGallery,
		"get_len_uc":      getUserGalleryLen,
	}
}

// createGallery opens a new exhibition. The creator gets a ticket for free.
// Payload: name|metadata|price|voting_start|voting_end|min_stake
func createGallery(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 6, "name|metadata|price|voting_start|voting_end|min_stake")
	if err != nil {
		return "", err
	}
	name, err := args.Text(0, "name")
	if err != nil {
		return "", err
	}
	meta, err := args.Text(1, "metadata")
	if err != nil {
		return "", err
	}
	price, err := args.Amount(2, "price")
	if err != nil {
		return "", err
	}
	start, err := args.Int(3, "voting start")
	if err != nil {
		return "", err
	}
	end, err := args.Int(4, "voting end")
	if err != nil {
		return "", err
	}
	minStake, err := args.Amount(5, "min stake")
	if err != nil {
		return "", err
	}
	env := h.Env()
	now := env.Timestamp
	if start < now || end < now || start >= end {
		return "", contract.InvalidInput(CodeInvalidParams, "voting window %d..%d invalid at %d", start, end, now)
	}

	st := h.State()
	id := contract.NextID(st, contract.Key(kLastIndex))
	g := &Gallery{
		ID:          id,
		Owner:       env.Caller,
		Name:        name,
		Metadata:    meta,
		Price:       price,
		CreatedAt:   now,
		VotingStart: start,
		VotingEnd:   end,
		MinStake:    minStake,
	}
	saveGallery(st, g)
	pushList(st, ListCreated, g.Owner, id)
	contract.SetFlag(st, ticketKey(id, g.Owner))
	emitGalleryCreatedEvent(h, g)
	return contract.U64(id), nil
}

// buyTicket records an admission, only the ticketing contract gets here.
// Payload: gallery|user
func buyTicket(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleTicketing); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 2, "gallery|user")
	if err != nil {
		return "", err
	}
	id, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	user, err := args.Address(1, "user")
	if err != nil {
		return "", err
	}
	st := h.State()
	g, err := loadGallery(st, id)
	if err != nil {
		return "", err
	}
	if hasTicket(st, id, user) {
		return "", contract.AlreadyDone(CodeHasTicket, "%s already holds a ticket for gallery %d", user, id)
	}
	g.Attendees++
	saveGallery(st, g)
	pushList(st, ListJoined, user, id)
	contract.SetFlag(st, ticketKey(id, user))
	emitJoinedEvent(h, id, user)
	return "ok", nil
}

// setTicketing wires the admission contract.
// Payload: address
func setTicketing(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleTicketing)
}

// getGallery returns owner|name|metadata|attendees|created_at|price|voting_end|voting_start|min_stake
func getGallery(h sdk.Host, payload string) (string, error) {
	g, err := galleryFromPayload(h, payload)
	if err != nil {
		return "", err
	}
	return formatGallery(g), nil
}

func formatGallery(g *Gallery) string {
	return contract.Join(
		g.Owner.String(),
		g.Name,
		g.Metadata,
		contract.U64(g.Attendees),
		contract.I64(g.CreatedAt),
		sdk.FormatAmount(g.Price),
		contract.I64(g.VotingEnd),
		contract.I64(g.VotingStart),
		sdk.FormatAmount(g.MinStake),
	)
}

// getUserStatus is the ticket check.
// Payload: gallery|user
func getUserStatus(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "gallery|user")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	user, err := args.Address(1, "user")
	if err != nil {
		return "", err
	}
	return contract.FormatBool(hasTicket(h.State(), id, user)), nil
}

func getLastIndex(h sdk.Host, _ string) (string, error) {
	return contract.U64(lastIndex(h.State())), nil
}

// inSession reports if voting is open for the gallery at the block time.
// Payload: gallery
func inSession(h sdk.Host, payload string) (string, error) {
	g, err := galleryFromPayload(h, payload)
	if err != nil {
		return "", err
	}
	return contract.FormatBool(g.InSession(h.Env().Timestamp)), nil
}

// Payload: gallery
func getMinStake(h sdk.Host, payload string) (string, error) {
	g, err := galleryFromPayload(h, payload)
	if err != nil {
		return "", err
	}
	return sdk.FormatAmount(g.MinStake), nil
}

// getUserGallery reads one entry of a user list, 0 = created, 1 = joined.
// Payload: index|user|list
func getUserGallery(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "index|user|list")
	if err != nil {
		return "", err
	}
	index, err := args.Uint(0, "index")
	if err != nil {
		return "", err
	}
	user, err := args.Address(1, "user")
	if err != nil {
		return "", err
	}
	list, err := parseList(args, 2)
	if err != nil {
		return "", err
	}
	st := h.State()
	entryKey, lenKey := listKeys(list, user, index)
	if index >= contract.GetCount(st, lenKey) {
		return "", contract.Exhausted(CodeListIndex, "index %d out of range", index)
	}
	return contract.U64(contract.GetCount(st, entryKey)), nil
}

// Payload: user|list
func getUserGalleryLen(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 2, "user|list")
	if err != nil {
		return "", err
	}
	user, err := args.Address(0, "user")
	if err != nil {
		return "", err
	}
	list, err := parseList(args, 1)
	if err != nil {
		return "", err
	}
	_, lenKey := listKeys(list, user, 0)
	return contract.U64(contract.GetCount(h.State(), lenKey)), nil
}

func parseList(args contract.Args, i int) (List, error) {
	switch args.String(i) {
	case "0":
		return ListCreated, nil
	case "1":
		return ListJoined, nil
	default:
		return 0, contract.InvalidInput(CodeBadList, "list must be 0 (created) or 1 (joined)")
	}
}

func galleryFromPayload(h sdk.Host, payload string) (*Gallery, error) {
	args, err := contract.ParseArgs(payload, 1, "gallery")
	if err != nil {
		return nil, err
	}
	id, err := args.Uint(0, "gallery")
	if err != nil {
		return nil, err
	}
	return loadGallery(h.State(), id)
}
