// Package curation is the nft library: ticket holders submit during the submission
// window and the gallery owner accepts or rejects each submission exactly once.
package curation

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/sdk"
)

const (
	RoleGallery = "gallery"
	RoleStorage = "storage"
)

const (
	CodeNoTicket       uint16 = 301
	CodeWindowClosed   uint16 = 302
	CodeNotOwner       uint16 = 303
	CodeBadStatus      uint16 = 304
	CodeMissing        uint16 = 305
	CodeAlreadyCurated uint16 = 306
	CodeCorrupt        uint16 = 307
)

// Galleries is what curation needs from the gallery contract.
type Galleries interface {
	Get(id uint64) (*gallery.Gallery, error)
	HasTicket(id uint64, user sdk.Address) (bool, error)
}

// New returns the curation entry points.
func New() contract.Router {
	return contract.Router{
		"submit_nft":           submitNft,
		"set_nft_state":        setNftState,
		"get_nft":              getNft,
		"nft_list_len":         nftListLen,
		"get_system_total_nft": getSystemTotal,
		"set_collaborators":    setCollaborators,
	}
}

func galleries(h sdk.Host) (Galleries, error) {
	addr, err := contract.Collaborator(h.State(), RoleGallery)
	if err != nil {
		return nil, err
	}
	return gallery.NewClient(h, addr), nil
}

// submitNft registers a raw candidate for user. Only the storage contract calls this,
// the user must hold a ticket and voting must not have started yet.
// Payload: gallery|user|data_ref
func submitNft(h sdk.Host, payload string) (string, error) {
	if err := contract.RequireCaller(h, RoleStorage); err != nil {
		return "", err
	}
	args, err := contract.ParseArgs(payload, 3, "gallery|user|data_ref")
	if err != nil {
		return "", err
	}
	g, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	user, err := args.Address(1, "user")
	if err != nil {
		return "", err
	}
	dataRef, err := args.Text(2, "data ref")
	if err != nil {
		return "", err
	}
	gals, err := galleries(h)
	if err != nil {
		return "", err
	}
	info, err := gals.Get(g)
	if err != nil {
		return "", err
	}
	ticket, err := gals.HasTicket(g, user)
	if err != nil {
		return "", err
	}
	if !ticket {
		return "", contract.Unauthorized(CodeNoTicket, "%s holds no ticket for gallery %d", user, g)
	}
	if now := h.Env().Timestamp; now >= info.VotingStart {
		return "", contract.InvalidState(CodeWindowClosed, "submissions for gallery %d closed at %d", g, info.VotingStart)
	}

	st := h.State()
	id := contract.NextID(st, availableKey(g))
	saveSubmission(st, g, id, &Submission{Owner: user, Status: StatusPending, DataRef: dataRef})
	emitSubmittedEvent(h, g, id, user, dataRef)
	return contract.U64(id), nil
}

// setNftState is the owner's one shot decision on a pending submission.
// Accepted submissions get the next accepted rank, rejected ones get nothing.
// Payload: gallery|submission|state (1 accept, 2 reject)
func setNftState(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "gallery|submission|state")
	if err != nil {
		return "", err
	}
	g, err := args.ID(0, "gallery")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(1, "submission")
	if err != nil {
		return "", err
	}
	raw, err := args.Uint(2, "state")
	if err != nil {
		return "", err
	}
	gals, err := galleries(h)
	if err != nil {
		return "", err
	}
	info, err := gals.Get(g)
	if err != nil {
		return "", err
	}
	env := h.Env()
	if env.Caller != info.Owner {
		return "", contract.Unauthorized(CodeNotOwner, "only the owner of gallery %d curates", g)
	}
	state := Status(raw)
	if raw > 255 || (state != StatusAccepted && state != StatusRejected) {
		return "", contract.InvalidInput(CodeBadStatus, "state must be 1 (accept) or 2 (reject)")
	}
	st := h.State()
	if id == 0 || id > contract.GetCount(st, availableKey(g)) {
		return "", contract.InvalidState(CodeMissing, "submission %d does not exist in gallery %d", id, g)
	}
	if env.Timestamp >= info.VotingStart {
		return "", contract.InvalidState(CodeWindowClosed, "curation for gallery %d closed at %d", g, info.VotingStart)
	}
	sub, err := loadSubmission(st, g, id)
	if err != nil {
		return "", err
	}
	if sub.Status != StatusPending {
		return "", contract.AlreadyDone(CodeAlreadyCurated, "submission %d already %s", id, sub.Status)
	}

	sub.Status = state
	saveSubmission(st, g, id, sub)
	if state == StatusRejected {
		emitRejectedEvent(h, g, id, sub.Owner)
		return "0", nil
	}
	acceptedID := contract.NextID(st, acceptedLenKey(g))
	contract.SetCount(st, acceptedKey(g, acceptedID), id)
	contract.NextID(st, contract.Key(kSystemTotal))
	emitAcceptedEvent(h, g, id, acceptedID, sub.Owner)
	return contract.U64(acceptedID), nil
}

// getNft reads a submission. raw=true addresses the submission id and is reserved for
// the gallery owner, raw=false addresses the accepted rank. Unknown ids come back as
// the empty record (zero owner).
// Payload: gallery|id|raw
// Result: owner|status|data_ref
func getNft(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "gallery|id|raw")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	id, err := args.Uint(1, "id")
	if err != nil {
		return "", err
	}
	st := h.State()
	if args.Bool(2) {
		gals, err := galleries(h)
		if err != nil {
			return "", err
		}
		info, err := gals.Get(g)
		if err != nil {
			return "", err
		}
		if h.Env().Caller != info.Owner {
			return "", contract.Unauthorized(CodeNotOwner, "raw submissions of gallery %d are owner only", g)
		}
	} else {
		id = contract.GetCount(st, acceptedKey(g, id))
	}
	sub, err := loadSubmission(st, g, id)
	if err != nil {
		return "", err
	}
	return formatSubmission(sub), nil
}

func formatSubmission(s *Submission) string {
	return contract.Join(s.Owner.String(), contract.U64(uint64(s.Status)), s.DataRef)
}

// nftListLen returns available|accepted for a gallery.
// Payload: gallery
func nftListLen(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "gallery")
	if err != nil {
		return "", err
	}
	g, err := args.Uint(0, "gallery")
	if err != nil {
		return "", err
	}
	st := h.State()
	return contract.Join(
		contract.U64(contract.GetCount(st, availableKey(g))),
		contract.U64(contract.GetCount(st, acceptedLenKey(g))),
	), nil
}

func getSystemTotal(h sdk.Host, _ string) (string, error) {
	return contract.U64(contract.GetCount(h.State(), contract.Key(kSystemTotal))), nil
}

// Payload: gallery|storage
func setCollaborators(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleGallery, RoleStorage)
}
