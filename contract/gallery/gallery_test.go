package gallery_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"okinoko_gallery/contract"
	"okinoko_gallery/contract/gallery"
	"okinoko_gallery/internal/harness"
	"okinoko_gallery/internal/suite"
	"okinoko_gallery/sdk"
)

const (
	owner sdk.Address = "hive:curator"
	alice sdk.Address = "hive:alice"
)

func TestCreateGallery(t *testing.T) {
	ct := harness.SetupContractTest(t)
	now := harness.Timestamp(harness.DefaultTimestamp)
	for _, tc := range []struct {
		name       string
		start, end int64
	}{
		{"start in the past", now - 1, now + 10},
		{"end in the past", now + 1, now - 1},
		{"start equals end", now + 10, now + 10},
		{"start after end", now + 20, now + 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := harness.CallContract(t, ct, suite.Gallery, "create_gallery", harness.GalleryFields("x", "1", tc.start, tc.end, "0"), owner, false)
			harness.ExpectError(t, r, contract.KindInvalidInput, gallery.CodeInvalidParams)
		})
	}
	r := harness.CallContract(t, ct, suite.Gallery, "create_gallery", "|meta|1|1|2|0", owner, false)
	harness.ExpectError(t, r, contract.KindInvalidInput, contract.CodeBadPayload)
	r = harness.CallContract(t, ct, suite.Gallery, "create_gallery", harness.GalleryFields("x", "1", now+10, now+20, "0")+"|garbage", owner, false)
	harness.ExpectError(t, r, contract.KindInvalidInput, contract.CodeBadPayload)
	assert.Equal(t, "0", harness.Query(t, ct, suite.Gallery, "get_last_index", "", owner))

	g := harness.CreateGallery(t, ct, owner, "15", "5")
	assert.Equal(t, uint64(1), g)
	assert.Equal(t, fmt.Sprintf("hive:curator|expo|ipfs://expo|0|%d|15|%d|%d|5", now, harness.Hours(48), harness.Hours(24)),
		harness.Query(t, ct, suite.Gallery, "get_gallery", "1", alice))
	assert.Equal(t, "true", harness.Query(t, ct, suite.Gallery, "get_user_status", "1|hive:curator", alice))
	assert.Equal(t, "5", harness.Query(t, ct, suite.Gallery, "get_min_stake", "1", alice))
	assert.Equal(t, "1", harness.Query(t, ct, suite.Gallery, "get_len_uc", "hive:curator|0", alice))
	assert.Equal(t, "1", harness.Query(t, ct, suite.Gallery, "get_uc", "0|hive:curator|0", alice))

	r = harness.CallContract(t, ct, suite.Gallery, "get_gallery", "2", alice, false)
	harness.ExpectError(t, r, contract.KindInvalidState, gallery.CodeNotFound)
}

func TestAdmissionOnlyThroughTicketing(t *testing.T) {
	ct := harness.SetupContractTest(t)
	g := harness.CreateGallery(t, ct, owner, "0", "1")
	r := harness.CallContract(t, ct, suite.Gallery, "buy_ticket", contract.Join(contract.U64(g), alice.String()), alice, false)
	harness.ExpectError(t, r, contract.KindUnauthorized, contract.CodeNotAdmin)

	harness.BuyTicket(t, ct, alice, g, "0")
	assert.Equal(t, "true", harness.Query(t, ct, suite.Gallery, "get_user_status", contract.Join(contract.U64(g), alice.String()), alice))
	assert.Equal(t, "1", harness.Query(t, ct, suite.Gallery, "get_len_uc", "hive:alice|1", alice))
	assert.Equal(t, "0", harness.Query(t, ct, suite.Gallery, "get_len_uc", "hive:alice|0", alice))

	r = harness.CallContract(t, ct, suite.Gallery, "get_uc", "1|hive:alice|1", alice, false)
	harness.ExpectError(t, r, contract.KindExhausted, gallery.CodeListIndex)
	r = harness.CallContract(t, ct, suite.Gallery, "get_len_uc", "hive:alice|7", alice, false)
	harness.ExpectError(t, r, contract.KindInvalidInput, gallery.CodeBadList)
}

func TestInSession(t *testing.T) {
	ct := harness.SetupContractTest(t)
	g := contract.U64(harness.CreateGallery(t, ct, owner, "0", "1"))
	assert.Equal(t, "false", harness.QueryAt(t, ct, suite.Gallery, "in_session", g, alice, harness.Hours(24)))
	assert.Equal(t, "true", harness.QueryAt(t, ct, suite.Gallery, "in_session", g, alice, harness.Hours(25)))
	assert.Equal(t, "false", harness.QueryAt(t, ct, suite.Gallery, "in_session", g, alice, harness.Hours(48)))
}

func TestParseGallery(t *testing.T) {
	g, err := gallery.ParseGallery(3, "hive:a|n|m|2|10|5|30|20|1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), g.ID)
	assert.Equal(t, sdk.Address("hive:a"), g.Owner)
	assert.Equal(t, int64(20), g.VotingStart)
	assert.Equal(t, int64(30), g.VotingEnd)
	assert.True(t, g.InSession(25))

	_, err = gallery.ParseGallery(3, "hive:a|n|m")
	assert.Equal(t, contract.KindInvalidState, contract.KindOf(err))
}
