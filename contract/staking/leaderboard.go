package staking

import (
	"sort"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// Capacity is the number of ranked slots kept per (gallery, nft).
const Capacity = 30

// PositionNone is what get_position answers for voters outside the board. Valid ranks
// are 0..Capacity-1, so anything >= Capacity is "not ranked".
const PositionNone = Capacity + 3

// Entry is one ranked cast. Cast 0 never exists, cast ids start at 1.
type Entry struct {
	Cast uint64
	Bid  *sdk.Amount
}

// Leaderboard keeps casts ordered by descending bid, at most Capacity of them.
// Equal bids keep the order they arrived in.
type Leaderboard struct {
	entries []Entry
}

// Len is the number of filled slots.
func (b *Leaderboard) Len() int { return len(b.entries) }

// At returns slot i, the empty entry when i is past the filled slots.
func (b *Leaderboard) At(i int) Entry {
	if i < 0 || i >= len(b.entries) {
		return Entry{Bid: sdk.NewAmount(0)}
	}
	return b.entries[i]
}

// Entries returns a copy of the filled slots.
func (b *Leaderboard) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Rank finds the slot of a cast, -1 when it is not on the board.
func (b *Leaderboard) Rank(cast uint64) int {
	for i, e := range b.entries {
		if e.Cast == cast {
			return i
		}
	}
	return -1
}

// Upsert places cast with bid. A cast already on the board keeps the higher of its old
// and new bid and is moved to its new slot. Binary search finds the first slot holding a
// strictly smaller bid, so ties stay behind earlier casts. Returns the rank, or -1 when
// the bid does not make the top Capacity (the board is left untouched then).
func (b *Leaderboard) Upsert(cast uint64, bid *sdk.Amount) int {
	bid = new(sdk.Amount).Set(bid)
	if i := b.Rank(cast); i >= 0 {
		if b.entries[i].Bid.Gt(bid) {
			bid.Set(b.entries[i].Bid)
		}
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
	}
	pos := sort.Search(len(b.entries), func(j int) bool {
		return b.entries[j].Bid.Lt(bid)
	})
	if pos >= Capacity {
		return -1
	}
	b.entries = append(b.entries, Entry{})
	copy(b.entries[pos+1:], b.entries[pos:])
	b.entries[pos] = Entry{Cast: cast, Bid: bid}
	if len(b.entries) > Capacity {
		b.entries = b.entries[:Capacity]
	}
	return pos
}

// Sorted reports the ordering invariant, used by tests and as a decode sanity check.
func (b *Leaderboard) Sorted() bool {
	if len(b.entries) > Capacity {
		return false
	}
	for i := 1; i < len(b.entries); i++ {
		if b.entries[i-1].Bid.Lt(b.entries[i].Bid) {
			return false
		}
	}
	return true
}

func encodeLeaderboard(b *Leaderboard) string {
	w := contract.NewWriter()
	w.WriteVarUint(uint64(len(b.entries)))
	for _, e := range b.entries {
		w.WriteVarUint(e.Cast)
		w.WriteAmount(e.Bid)
	}
	return w.String()
}

func decodeLeaderboard(data string) (*Leaderboard, error) {
	r := contract.NewStringReader(data)
	n, err := r.ReadVarUint()
	if err != nil {
		return nil, err
	}
	if n > Capacity {
		return nil, contract.Exhausted(CodeCorrupt, "leaderboard holds %d entries", n)
	}
	b := &Leaderboard{entries: make([]Entry, 0, n)}
	for i := uint64(0); i < n; i++ {
		cast, err := r.ReadVarUint()
		if err != nil {
			return nil, err
		}
		bid, err := r.ReadAmount()
		if err != nil {
			return nil, err
		}
		b.entries = append(b.entries, Entry{Cast: cast, Bid: bid})
	}
	return b, nil
}
