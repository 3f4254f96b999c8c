package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"okinoko_gallery/contract"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

// Fund mints value tokens to user through the faucet.
func Fund(t testing.TB, ct *ContractTest, user sdk.Address, value string) {
	t.Helper()
	CallContract(t, ct, suite.Token, "mint", value, user, true)
}

// Approve lets spender pull value tokens from user.
func Approve(t testing.TB, ct *ContractTest, user, spender sdk.Address, value string) {
	t.Helper()
	CallContract(t, ct, suite.Token, "approve", contract.Join(spender.String(), value), user, true)
}

// Balance reads the token balance of user.
func Balance(t testing.TB, ct *ContractTest, user sdk.Address) string {
	t.Helper()
	return Query(t, ct, suite.Token, "balance_of", user.String(), user)
}

// GalleryFields builds a create_gallery payload.
func GalleryFields(name, price string, start, end int64, minStake string) string {
	return contract.Join(name, "ipfs://"+name, price, contract.I64(start), contract.I64(end), minStake)
}

// CreateGallery opens a gallery with voting from +24h to +48h and returns its id.
func CreateGallery(t testing.TB, ct *ContractTest, owner sdk.Address, price, minStake string) uint64 {
	t.Helper()
	r := CallContract(t, ct, suite.Gallery, "create_gallery", GalleryFields("expo", price, Hours(24), Hours(48), minStake), owner, true)
	return ParseID(t, r.Result, "gallery")
}

// BuyTicket funds, approves and buys an admission for user.
func BuyTicket(t testing.TB, ct *ContractTest, user sdk.Address, g uint64, price string) {
	t.Helper()
	if price != "0" {
		Fund(t, ct, user, price)
		Approve(t, ct, user, suite.Ticketing, price)
	}
	CallContract(t, ct, suite.Ticketing, "buy_ticket", contract.U64(g), user, true)
}

// SubmitNft stores data for user and returns storage id and submission id.
func SubmitNft(t testing.TB, ct *ContractTest, user sdk.Address, g uint64, data string) (uint64, uint64) {
	t.Helper()
	r := CallContract(t, ct, suite.Storage, "submit_nft", contract.Join(contract.U64(g), data), user, true)
	storageID, submission, ok := strings.Cut(r.Result, "|")
	require.True(t, ok, "bad submit result %q", r.Result)
	return ParseID(t, storageID, "storage"), ParseID(t, submission, "submission")
}

// Accept curates a submission in and returns its accepted rank.
func Accept(t testing.TB, ct *ContractTest, owner sdk.Address, g, submission uint64) uint64 {
	t.Helper()
	r := CallContract(t, ct, suite.Curation, "set_nft_state", contract.Join(contract.U64(g), contract.U64(submission), "1"), owner, true)
	return ParseID(t, r.Result, "accepted")
}

// CastVote funds and approves the bid, then votes during the window (+30h).
func CastVote(t testing.TB, ct *ContractTest, voter sdk.Address, g, nft uint64, bid string) uint64 {
	t.Helper()
	Fund(t, ct, voter, bid)
	Approve(t, ct, voter, suite.SafeVote, bid)
	r := CallContractAt(t, ct, suite.SafeVote, "cast_vote", contract.Join(contract.U64(g), contract.U64(nft), bid), voter, true, Hours(30))
	return ParseID(t, r.Result, "cast")
}

// Exhibit runs a gallery up to the voting window: owner creates it with price 0 and
// min stake 1, creator buys in, submits and gets accepted rank 1.
func Exhibit(t testing.TB, ct *ContractTest, owner, creator sdk.Address) (g, storageID uint64) {
	t.Helper()
	g = CreateGallery(t, ct, owner, "0", "1")
	if creator != owner {
		BuyTicket(t, ct, creator, g, "0")
	}
	storageID, submission := SubmitNft(t, ct, creator, g, "pixels")
	require.Equal(t, uint64(1), Accept(t, ct, owner, g, submission))
	return g, storageID
}
