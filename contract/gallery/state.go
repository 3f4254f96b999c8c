package gallery

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	// kGallery stores encoded Gallery records by id.
	kGallery byte = 0x01
	// kTicket flags a ticket of a user for a gallery.
	kTicket byte = 0x02
	// kCreated lists galleries a user created, indexed from 0.
	kCreated byte = 0x03
	// kCreatedLen is the length of the kCreated list per user.
	kCreatedLen byte = 0x04
	// kJoined lists galleries a user bought a ticket for, indexed from 0.
	kJoined byte = 0x05
	// kJoinedLen is the length of the kJoined list per user.
	kJoinedLen byte = 0x06
	// kLastIndex is the gallery id counter.
	kLastIndex byte = 0x07
)

// List selects one of the two per-user gallery lists.
type List uint8

const (
	ListCreated List = 0
	ListJoined  List = 1
)

// Gallery is the exhibition record. Voting window and price never change after creation.
type Gallery struct {
	ID          uint64
	Owner       sdk.Address
	Name        string
	Metadata    string
	Price       *sdk.Amount
	Attendees   uint64
	CreatedAt   int64
	VotingStart int64
	VotingEnd   int64
	MinStake    *sdk.Amount
}

// InSession reports if voting is open right now, both ends exclusive.
func (g *Gallery) InSession(now int64) bool {
	return g.VotingStart < now && now < g.VotingEnd
}

func galleryKey(id uint64) string {
	return contract.KeyU64(kGallery, id)
}

func ticketKey(id uint64, user sdk.Address) string {
	return contract.KeyU64Addr(kTicket, id, user)
}

func listKeys(list List, user sdk.Address, index uint64) (entry string, length string) {
	if list == ListCreated {
		return contract.KeyAddrU64(kCreated, user, index), contract.KeyAddr(kCreatedLen, user)
	}
	return contract.KeyAddrU64(kJoined, user, index), contract.KeyAddr(kJoinedLen, user)
}

func lastIndex(st sdk.State) uint64 {
	return contract.GetCount(st, contract.Key(kLastIndex))
}

// encodeGallery packs the record, field order is the storage layout.
func encodeGallery(g *Gallery) string {
	w := contract.NewWriter()
	w.WriteAddress(g.Owner)
	w.WriteString(g.Name)
	w.WriteString(g.Metadata)
	w.WriteAmount(g.Price)
	w.WriteVarUint(g.Attendees)
	w.WriteInt64(g.CreatedAt)
	w.WriteInt64(g.VotingStart)
	w.WriteInt64(g.VotingEnd)
	w.WriteAmount(g.MinStake)
	return w.String()
}

func decodeGallery(id uint64, data string) (*Gallery, error) {
	r := contract.NewStringReader(data)
	g := &Gallery{ID: id}
	var err error
	if g.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	if g.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if g.Metadata, err = r.ReadString(); err != nil {
		return nil, err
	}
	if g.Price, err = r.ReadAmount(); err != nil {
		return nil, err
	}
	if g.Attendees, err = r.ReadVarUint(); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = r.ReadInt64(); err != nil {
		return nil, err
	}
	if g.VotingStart, err = r.ReadInt64(); err != nil {
		return nil, err
	}
	if g.VotingEnd, err = r.ReadInt64(); err != nil {
		return nil, err
	}
	if g.MinStake, err = r.ReadAmount(); err != nil {
		return nil, err
	}
	return g, nil
}

// loadGallery fetches a gallery, InvalidState if the id was never allocated.
func loadGallery(st sdk.State, id uint64) (*Gallery, error) {
	if id == 0 || id > lastIndex(st) {
		return nil, contract.InvalidState(CodeNotFound, "gallery %d does not exist", id)
	}
	ptr := st.Get(galleryKey(id))
	if ptr == nil {
		return nil, contract.InvalidState(CodeNotFound, "gallery %d does not exist", id)
	}
	g, err := decodeGallery(id, *ptr)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "gallery %d unreadable: %v", id, err)
	}
	return g, nil
}

func saveGallery(st sdk.State, g *Gallery) {
	st.Set(galleryKey(g.ID), encodeGallery(g))
}

func hasTicket(st sdk.State, id uint64, user sdk.Address) bool {
	return contract.GetFlag(st, ticketKey(id, user))
}

// pushList appends a gallery id to one of the user lists.
func pushList(st sdk.State, list List, user sdk.Address, galleryID uint64) {
	_, lenKey := listKeys(list, user, 0)
	n := contract.GetCount(st, lenKey)
	entryKey, _ := listKeys(list, user, n)
	contract.SetCount(st, entryKey, galleryID)
	contract.SetCount(st, lenKey, n+1)
}
