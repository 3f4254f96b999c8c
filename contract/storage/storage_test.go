package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gallery/contract"
	"okinoko_gallery/contract/storage"
	"okinoko_gallery/internal/harness"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

const (
	owner   sdk.Address = "hive:curator"
	creator sdk.Address = "hive:painter"
	alice   sdk.Address = "hive:alice"
)

func TestSealedUntilMinted(t *testing.T) {
	ct := harness.SetupContractTest(t)
	g := harness.CreateGallery(t, ct, owner, "0", "1")
	harness.BuyTicket(t, ct, creator, g, "0")
	id, sub := harness.SubmitNft(t, ct, creator, g, "pixels")
	assert.Equal(t, uint64(1), sub)
	sid := contract.U64(id)

	want := contract.Join(creator.String(), "pixels", contract.U64(g), "false")
	assert.Equal(t, want, harness.Query(t, ct, suite.Storage, "get_nft_data", sid, creator))
	assert.Equal(t, want, harness.Query(t, ct, suite.Storage, "get_nft_data", sid, owner))

	r := harness.CallContract(t, ct, suite.Storage, "get_nft_data", sid, alice, false)
	harness.ExpectError(t, r, contract.KindUnauthorized, storage.CodeSealed)

	r = harness.CallContract(t, ct, suite.Storage, "get_nft_data", "5", alice, false)
	harness.ExpectError(t, r, contract.KindInvalidState, storage.CodeMissing)

	r = harness.CallContract(t, ct, suite.Storage, "system_mint", sid, owner, false)
	harness.ExpectError(t, r, contract.KindUnauthorized, contract.CodeNotAdmin)
}

func TestSubmitRegistersWithLibrary(t *testing.T) {
	ct := harness.SetupContractTest(t)
	g := harness.CreateGallery(t, ct, owner, "0", "1")
	harness.BuyTicket(t, ct, creator, g, "0")
	harness.SubmitNft(t, ct, creator, g, "one")
	id, sub := harness.SubmitNft(t, ct, creator, g, "two")
	assert.Equal(t, uint64(2), id)
	assert.Equal(t, uint64(2), sub)

	gs := contract.U64(g)
	assert.Equal(t, "2|0", harness.Query(t, ct, suite.Curation, "nft_list_len", gs, alice))
	// raw submissions are for the owner
	assert.Equal(t, "hive:painter|0|2", harness.Query(t, ct, suite.Curation, "get_nft", contract.Join(gs, "2", "true"), owner))
	r := harness.CallContract(t, ct, suite.Curation, "get_nft", contract.Join(gs, "2", "true"), creator, false)
	harness.ExpectError(t, r, contract.KindUnauthorized, 303)

	r = harness.CallContract(t, ct, suite.Storage, "submit_nft", contract.Join("7", "x"), creator, false)
	harness.ExpectError(t, r, contract.KindInvalidState, 102)
	assert.Equal(t, "2", harness.Query(t, ct, suite.Storage, "get_len", "", alice))

	// a trailing field is an error, not a silently shorter data string
	r = harness.CallContract(t, ct, suite.Storage, "submit_nft", contract.Join(gs, "ipfs://Qm", "abc"), creator, false)
	harness.ExpectError(t, r, contract.KindInvalidInput, contract.CodeBadPayload)
	r = harness.CallContract(t, ct, suite.Storage, "submit_nft", contract.Join(gs, "ipfs://Qm;abc"), creator, false)
	harness.ExpectError(t, r, contract.KindInvalidInput, contract.CodeBadPayload)
	assert.Equal(t, "2", harness.Query(t, ct, suite.Storage, "get_len", "", alice))
	assert.Equal(t, "2|0", harness.Query(t, ct, suite.Curation, "nft_list_len", gs, alice))

	// only storage may register submissions directly
	r = harness.CallContract(t, ct, suite.Curation, "submit_nft", contract.Join(gs, creator.String(), "9"), creator, false)
	harness.ExpectError(t, r, contract.KindUnauthorized, contract.CodeNotAdmin)
}

func TestSealedWithoutMinter(t *testing.T) {
	const (
		lib sdk.Address = "contract:library"
		gal sdk.Address = "contract:gallery"
	)
	h := sdk.NewMockHost("contract:storage", creator, 1_000)
	contract.SetCollaborator(h.Store, storage.RoleLibrary, lib)
	h.Handle(lib, "submit_nft", func(string) (string, error) { return "1", nil })
	r := storage.New()
	ret, err := r.Dispatch(h, "submit_nft", "1|pixels")
	require.NoError(t, err)
	assert.Equal(t, "1|1", ret)

	// no minter configured: an empty caller must not count as the minter
	h.As(sdk.ZeroAddress)
	_, err = r.Dispatch(h, "get_nft_data", "1")
	assert.Equal(t, contract.KindInvalidState, contract.KindOf(err))
	assert.Equal(t, contract.CodeNotConfigured, contract.AsError(err).Code)

	contract.SetCollaborator(h.Store, storage.RoleGallery, gal)
	h.Handle(gal, "get_user_status", func(string) (string, error) { return "false", nil })
	_, err = r.Dispatch(h, "get_nft_data", "1")
	var cerr *contract.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, storage.CodeSealed, cerr.Code)

	h.As(creator)
	h.Handle(gal, "get_user_status", func(string) (string, error) { return "true", nil })
	ret, err = r.Dispatch(h, "get_nft_data", "1")
	require.NoError(t, err)
	assert.Equal(t, "hive:painter|pixels|1|false", ret)
}
