package staking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	admin      sdk.Address = "hive:tibfox"
	controller sdk.Address = "contract:safevote"
)

func setup(t *testing.T) (*sdk.MockHost, contract.Router) {
	h := sdk.NewMockHost("contract:staking", admin, 1_000)
	r := New()
	_, err := r.Dispatch(h, "set_controller", controller.String())
	require.NoError(t, err)
	h.As(controller)
	return h, r
}

func call(t *testing.T, h *sdk.MockHost, r contract.Router, method, payload string, expectedResult bool) string {
	ret, err := r.Dispatch(h, method, payload)
	if expectedResult {
		require.NoError(t, err, method)
	} else {
		require.Error(t, err, method)
	}
	return ret
}

func TestStakeOnlyController(t *testing.T) {
	h, r := setup(t)
	h.As("hive:alice")
	_, err := r.Dispatch(h, "stake", "hive:alice|1|1|50")
	assert.Equal(t, contract.KindUnauthorized, contract.KindOf(err))
}

func TestStakeAllocatesCasts(t *testing.T) {
	h, r := setup(t)
	assert.Equal(t, "1", call(t, h, r, "stake", "hive:alice|1|1|50", true))
	assert.Equal(t, "2", call(t, h, r, "stake", "hive:bob|1|1|80", true))
	assert.Equal(t, "1", call(t, h, r, "stake", "hive:carol|1|2|10", true))

	assert.Equal(t, "50|1000|hive:alice", call(t, h, r, "get_cast", "1|1|1", true))
	assert.Equal(t, "0|0|", call(t, h, r, "get_cast", "1|1|9", true))
	assert.Equal(t, "2|2|3", call(t, h, r, "get_totals", "1|1", true))
	assert.Equal(t, "true", call(t, h, r, "has_voted", "1|hive:alice", true))
	assert.Equal(t, "false", call(t, h, r, "has_voted", "2|hive:alice", true))

	require.NotEmpty(t, h.Logs)
	ev, ok := contract.ParseEvent(h.Logs[len(h.Logs)-1])
	require.True(t, ok)
	assert.Equal(t, "cs", ev.Tag)
	assert.Equal(t, "hive:carol", ev.Fields["by"])
}

func TestStakeOncePerGallery(t *testing.T) {
	h, r := setup(t)
	call(t, h, r, "stake", "hive:alice|1|1|50", true)
	_, err := r.Dispatch(h, "stake", "hive:alice|1|2|70")
	assert.Equal(t, contract.KindAlreadyDone, contract.KindOf(err))
	// other galleries are fine
	call(t, h, r, "stake", "hive:alice|2|1|70", true)
}

func TestStakeRejectsZeroBid(t *testing.T) {
	h, r := setup(t)
	_, err := r.Dispatch(h, "stake", "hive:alice|1|1|0")
	assert.Equal(t, contract.KindInsufficientValue, contract.KindOf(err))
	assert.Equal(t, "false", call(t, h, r, "has_voted", "1|hive:alice", true))
}

func TestLeaderboardScenario(t *testing.T) {
	h, r := setup(t)
	call(t, h, r, "stake", "hive:alice|1|1|50", true)
	call(t, h, r, "stake", "hive:bob|1|1|80", true)
	assert.Equal(t, "2,80,1000,hive:bob;1,50,1000,hive:alice", call(t, h, r, "get_leaderboard", "1|1|0|2", true))

	call(t, h, r, "stake", "hive:carol|1|1|120", true)
	board := call(t, h, r, "get_leaderboard", "1|1|0|4", true)
	assert.Equal(t, "3,120,1000,hive:carol;2,80,1000,hive:bob;1,50,1000,hive:alice;0,0,0,", board)
	// reading twice changes nothing
	assert.Equal(t, board, call(t, h, r, "get_leaderboard", "1|1|0|4", true))

	assert.Equal(t, "0", call(t, h, r, "get_position", "1|1|hive:carol", true))
	assert.Equal(t, "2", call(t, h, r, "get_position", "1|1|hive:alice", true))
	assert.Equal(t, "33", call(t, h, r, "get_position", "1|1|hive:nobody", true))
	assert.Equal(t, "", call(t, h, r, "get_leaderboard", "1|1|2|2", true))
}

func TestLeaderboardBounds(t *testing.T) {
	h, r := setup(t)
	_, err := r.Dispatch(h, "get_leaderboard", "1|1|0|31")
	assert.Equal(t, contract.KindExhausted, contract.KindOf(err))
	_, err = r.Dispatch(h, "get_leaderboard", "1|1|5|2")
	assert.Equal(t, contract.KindInvalidInput, contract.KindOf(err))

	rows := strings.Split(call(t, h, r, "get_leaderboard", "1|1|0|30", true), ";")
	assert.Len(t, rows, Capacity)
}

func TestUpdateBid(t *testing.T) {
	h, r := setup(t)
	call(t, h, r, "stake", "hive:alice|1|1|50", true)
	call(t, h, r, "stake", "hive:bob|1|1|80", true)

	h.At(1_500)
	assert.Equal(t, "0", call(t, h, r, "update_bid", "hive:alice|1|1|1|100", true))
	assert.Equal(t, "100|1500|hive:alice", call(t, h, r, "get_cast", "1|1|1", true))
	assert.Equal(t, "0", call(t, h, r, "get_position", "1|1|hive:alice", true))
	assert.Equal(t, "2|2|2", call(t, h, r, "get_totals", "1|1", true))

	_, err := r.Dispatch(h, "update_bid", "hive:bob|1|1|1|200")
	assert.Equal(t, contract.KindUnauthorized, contract.KindOf(err))

	_, err = r.Dispatch(h, "update_bid", "hive:alice|1|1|1|60")
	assert.Equal(t, contract.KindInsufficientValue, contract.KindOf(err))
	assert.Equal(t, "100|1500|hive:alice", call(t, h, r, "get_cast", "1|1|1", true))

	_, err = r.Dispatch(h, "update_bid", "hive:alice|1|1|7|200")
	assert.Equal(t, contract.KindInvalidState, contract.KindOf(err))

	h.As("hive:alice")
	_, err = r.Dispatch(h, "update_bid", "hive:alice|1|1|1|300")
	assert.Equal(t, contract.KindUnauthorized, contract.KindOf(err))
}

func TestLeaderboardStaysSortedUnderChurn(t *testing.T) {
	h, r := setup(t)
	users := 45
	for i := 1; i <= users; i++ {
		bid := uint64((i*37)%101 + 1)
		call(t, h, r, "stake", "hive:u"+contract.U64(uint64(i))+"|1|1|"+contract.U64(bid), true)
	}
	for i := 1; i <= users; i += 3 {
		c, err := loadCast(h.Store, 1, 1, uint64(i))
		require.NoError(t, err)
		bid := new(sdk.Amount).AddUint64(c.Bid, uint64(i))
		call(t, h, r, "update_bid", c.Voter.String()+"|1|1|"+contract.U64(uint64(i))+"|"+bid.Dec(), true)

		b, err := loadBoard(h.Store, 1, 1)
		require.NoError(t, err)
		require.True(t, b.Sorted())
		require.LessOrEqual(t, b.Len(), Capacity)
	}
}
