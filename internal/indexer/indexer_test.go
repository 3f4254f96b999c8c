package indexer_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"okinoko_gallery/chain"
	"okinoko_gallery/contract"
	"okinoko_gallery/internal/event"
	"okinoko_gallery/internal/harness"
	"okinoko_gallery/internal/indexer"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	owner   = sdk.Address("hive:curator")
	creator = sdk.Address("hive:painter")
	alice   = sdk.Address("hive:alice")
	bob     = sdk.Address("hive:bob")
)

func openIndex(t *testing.T) *indexer.Indexer {
	t.Helper()
	ix, err := indexer.Open("sqlite", filepath.Join(t.TempDir(), "index.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, ix.Close()) })
	return ix
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := indexer.Open("postgres", "", zap.NewNop())
	require.ErrorIs(t, err, indexer.ErrUnknownDriver)
}

func TestIndexesCommittedEvents(t *testing.T) {
	ix := openIndex(t)
	bus := event.NewEventBus(nil, zap.NewNop())
	defer bus.Stop()
	ix.Attach(bus)

	ct := harness.SetupContractTest(t, chain.WithEventBus(bus))
	g, _ := harness.Exhibit(t, ct, owner, creator)
	harness.BuyTicket(t, ct, alice, g, "0")
	harness.BuyTicket(t, ct, bob, g, "0")
	aliceCast := harness.CastVote(t, ct, alice, g, 1, "50")
	harness.CastVote(t, ct, bob, g, 1, "80")

	harness.Fund(t, ct, alice, "50")
	harness.Approve(t, ct, alice, suite.SafeVote, "50")
	harness.CallContractAt(t, ct, suite.SafeVote, "increase_cast",
		contract.Join(contract.U64(g), "1", contract.U64(aliceCast), "100"), alice, true, harness.Hours(31))

	// a failed call leaves nothing behind
	harness.CallContract(t, ct, suite.Gallery, "create_gallery", "broken", owner, false)
	ix.Detach()

	created, err := ix.Events("ng", 0)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, suite.Gallery.String(), created[0].Contract)

	galleries, err := ix.Galleries()
	require.NoError(t, err)
	require.Len(t, galleries, 1)
	assert.Equal(t, g, galleries[0].GalleryID)
	assert.Equal(t, owner.String(), galleries[0].Owner)
	assert.Equal(t, "expo", galleries[0].Name)
	assert.Equal(t, harness.Hours(24), galleries[0].VotingStart)
	assert.Equal(t, uint64(3), galleries[0].Attendees)

	casts, err := ix.Casts(g, 1)
	require.NoError(t, err)
	require.Len(t, casts, 2)
	assert.Equal(t, alice.String(), casts[0].Voter)
	assert.Equal(t, "100", casts[0].Bid)
	assert.Equal(t, 0, casts[0].BoardRank)
	assert.Equal(t, "80", casts[1].Bid)

	updates, err := ix.Events("cu", 0)
	require.NoError(t, err)
	assert.Len(t, updates, 1)

	latest, err := ix.Events("", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.GreaterOrEqual(t, latest[0].Height, latest[1].Height)
}

func TestHandleSkipsUnparsedLines(t *testing.T) {
	ix := openIndex(t)
	require.NoError(t, ix.Handle(event.LogEvent{TxId: "x", Line: ""}))
	require.Error(t, ix.Handle(event.LogEvent{TxId: "x", Line: "cs|g:1|nft:bad|cast:1"}))

	all, err := ix.Events("", 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
