package curation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gallery/contract"
	"okinoko_gallery/contract/curation"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/internal/harness"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

const (
	owner   sdk.Address = "hive:curator"
	creator sdk.Address = "hive:painter"
	alice   sdk.Address = "hive:alice"
)

func TestRejectedTakesNoAcceptedSlot(t *testing.T) {
	ct := harness.SetupContractTest(t)
	g := harness.CreateGallery(t, ct, owner, "0", "1")
	gs := contract.U64(g)
	harness.BuyTicket(t, ct, creator, g, "0")
	_, first := harness.SubmitNft(t, ct, creator, g, "one")
	_, second := harness.SubmitNft(t, ct, creator, g, "two")

	r := harness.CallContract(t, ct, suite.Curation, "set_nft_state", contract.Join(gs, contract.U64(first), "2"), owner, true)
	assert.Equal(t, "0", r.Result)
	assert.Equal(t, []string{"rn"}, harness.Tags(r))
	assert.Equal(t, "0", harness.Query(t, ct, suite.Curation, "get_system_total_nft", "", alice))
	assert.Equal(t, "2|0", harness.Query(t, ct, suite.Curation, "nft_list_len", gs, alice))

	assert.Equal(t, uint64(1), harness.Accept(t, ct, owner, g, second))
	assert.Equal(t, "1", harness.Query(t, ct, suite.Curation, "get_system_total_nft", "", alice))
	assert.Equal(t, "2|1", harness.Query(t, ct, suite.Curation, "nft_list_len", gs, alice))

	// accepted rank 1 is the second submission
	assert.Equal(t, "hive:painter|1|2", harness.Query(t, ct, suite.Curation, "get_nft", contract.Join(gs, "1", "false"), alice))
	assert.Equal(t, "hive:painter|2|1", harness.Query(t, ct, suite.Curation, "get_nft", contract.Join(gs, contract.U64(first), "true"), owner))
	// an unfilled rank is the empty record
	assert.Equal(t, "|0|", harness.Query(t, ct, suite.Curation, "get_nft", contract.Join(gs, "2", "false"), alice))
}

func TestCurationChecks(t *testing.T) {
	ct := harness.SetupContractTest(t)
	g := harness.CreateGallery(t, ct, owner, "0", "1")
	gs := contract.U64(g)
	harness.BuyTicket(t, ct, creator, g, "0")
	_, rejected := harness.SubmitNft(t, ct, creator, g, "one")
	_, pending := harness.SubmitNft(t, ct, creator, g, "two")
	harness.CallContract(t, ct, suite.Curation, "set_nft_state", contract.Join(gs, contract.U64(rejected), "2"), owner, true)

	curate := func(sub, state string, by sdk.Address, ts int64) *contract.Error {
		r := harness.CallContractAt(t, ct, suite.Curation, "set_nft_state", contract.Join(gs, sub, state), by, false, ts)
		return r.Err
	}
	now := harness.Timestamp(harness.DefaultTimestamp)
	p := contract.U64(pending)
	for _, tc := range []struct {
		name string
		err  *contract.Error
		kind contract.Kind
		code uint16
	}{
		{"not the owner", curate(p, "1", creator, now), contract.KindUnauthorized, curation.CodeNotOwner},
		{"state zero", curate(p, "0", owner, now), contract.KindInvalidInput, curation.CodeBadStatus},
		{"state three", curate(p, "3", owner, now), contract.KindInvalidInput, curation.CodeBadStatus},
		{"submission zero", curate("0", "1", owner, now), contract.KindInvalidState, curation.CodeMissing},
		{"submission past counter", curate("3", "1", owner, now), contract.KindInvalidState, curation.CodeMissing},
		{"voting started", curate(p, "1", owner, harness.Hours(24)), contract.KindInvalidState, curation.CodeWindowClosed},
		{"voting over", curate(p, "1", owner, harness.Hours(50)), contract.KindInvalidState, curation.CodeWindowClosed},
		{"already rejected", curate(contract.U64(rejected), "1", owner, now), contract.KindAlreadyDone, curation.CodeAlreadyCurated},
		{"unknown gallery", func() *contract.Error {
			r := harness.CallContract(t, ct, suite.Curation, "set_nft_state", contract.Join("9", p, "1"), owner, false)
			return r.Err
		}(), contract.KindInvalidState, gallery.CodeNotFound},
		{"extra field", func() *contract.Error {
			r := harness.CallContract(t, ct, suite.Curation, "set_nft_state", contract.Join(gs, p, "1", "x"), owner, false)
			return r.Err
		}(), contract.KindInvalidInput, contract.CodeBadPayload},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.kind, tc.err.Kind, tc.err.Error())
			assert.Equal(t, tc.code, tc.err.Code, tc.err.Error())
		})
	}

	// the failures left the pending submission untouched
	assert.Equal(t, "hive:painter|0|2", harness.Query(t, ct, suite.Curation, "get_nft", contract.Join(gs, p, "true"), owner))
	assert.Equal(t, "2|0", harness.Query(t, ct, suite.Curation, "nft_list_len", gs, alice))
	assert.Equal(t, "0", harness.Query(t, ct, suite.Curation, "get_system_total_nft", "", alice))
}
