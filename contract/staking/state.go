package staking

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	// kCast stores casts by gallery+nft+cast id.
	kCast byte = 0x01
	// kCastLen is the cast id counter per gallery+nft.
	kCastLen byte = 0x02
	// kNftVotes counts votes per gallery+nft.
	kNftVotes byte = 0x03
	// kGalleryVotes counts votes per gallery.
	kGalleryVotes byte = 0x04
	// kVoted flags that a user staked in a gallery.
	kVoted byte = 0x05
	// kBoard stores the encoded leaderboard per gallery+nft.
	kBoard byte = 0x06
)

// Cast is one stake. The voter never changes once written.
type Cast struct {
	Bid     *sdk.Amount
	Updated int64
	Voter   sdk.Address
}

func castKey(g, nft, id uint64) string { return contract.KeyU64U64U64(kCast, g, nft, id) }
func castLenKey(g, nft uint64) string { return contract.KeyU64U64(kCastLen, g, nft) }
func nftVotesKey(g, nft uint64) string { return contract.KeyU64U64(kNftVotes, g, nft) }
func galleryVotesKey(g uint64) string { return contract.KeyU64(kGalleryVotes, g) }
func votedKey(g uint64, user sdk.Address) string { return contract.KeyU64Addr(kVoted, g, user) }
func boardKey(g, nft uint64) string { return contract.KeyU64U64(kBoard, g, nft) }

func encodeCast(c *Cast) string {
	w := contract.NewWriter()
	w.WriteAmount(c.Bid)
	w.WriteInt64(c.Updated)
	w.WriteAddress(c.Voter)
	return w.String()
}

func decodeCast(data string) (*Cast, error) {
	r := contract.NewStringReader(data)
	c := &Cast{}
	var err error
	if c.Bid, err = r.ReadAmount(); err != nil {
		return nil, err
	}
	if c.Updated, err = r.ReadInt64(); err != nil {
		return nil, err
	}
	if c.Voter, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadCast returns the empty cast for unknown ids.
func loadCast(st sdk.State, g, nft, id uint64) (*Cast, error) {
	ptr := st.Get(castKey(g, nft, id))
	if ptr == nil {
		return &Cast{Bid: sdk.NewAmount(0)}, nil
	}
	c, err := decodeCast(*ptr)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "cast %d/%d/%d unreadable: %v", g, nft, id, err)
	}
	return c, nil
}

func saveCast(st sdk.State, g, nft, id uint64, c *Cast) {
	st.Set(castKey(g, nft, id), encodeCast(c))
}

func loadBoard(st sdk.State, g, nft uint64) (*Leaderboard, error) {
	ptr := st.Get(boardKey(g, nft))
	if ptr == nil {
		return &Leaderboard{}, nil
	}
	b, err := decodeLeaderboard(*ptr)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "leaderboard %d/%d unreadable: %v", g, nft, err)
	}
	return b, nil
}

func saveBoard(st sdk.State, g, nft uint64, b *Leaderboard) {
	st.Set(boardKey(g, nft), encodeLeaderboard(b))
}
