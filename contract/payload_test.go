package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_gallery/sdk"
)

func TestParseArgs(t *testing.T) {
	a, err := ParseArgs(`"1| hive:alice |500"`, 3, "gallery|user|bid")
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
	id, err := a.ID(0, "gallery")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	user, err := a.Address(1, "user")
	require.NoError(t, err)
	assert.Equal(t, sdk.Address("hive:alice"), user)
	bid, err := a.Amount(2, "bid")
	require.NoError(t, err)
	assert.Equal(t, "500", bid.Dec())
	assert.Equal(t, "", a.String(7))

	_, err = ParseArgs("1", 2, "gallery|nft")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = ParseArgs("", 1, "gallery")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	// a trailing field is never silently cut off
	_, err = ParseArgs("1|ipfs://Qm|abc", 2, "gallery|data")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = ParseArgs("1|2|", 2, "gallery|nft")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestTextRejectsSeparators(t *testing.T) {
	a := Args{parts: []string{"a|b", "a;b", "ok"}}
	_, err := a.Text(0, "name")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, err = a.Text(1, "name")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	s, err := a.Text(2, "name")
	require.NoError(t, err)
	assert.Equal(t, "ok", s)
}

func TestArgsValidation(t *testing.T) {
	a, err := ParseArgs("0|x|-1|nope|a;b|"+strings.Repeat("z", MaxTextLength+1), 6, "")
	require.NoError(t, err)
	_, err = a.ID(0, "id")
	assert.Error(t, err)
	v, err := a.Uint(0, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	_, err = a.Address(1, "user")
	assert.Error(t, err)
	n, err := a.Int(2, "ts")
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), n)
	_, err = a.Amount(1, "bid")
	assert.Error(t, err)
	assert.False(t, a.Bool(3))
	_, err = a.Text(4, "name")
	assert.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, a.List(4))
	_, err = a.Text(5, "name")
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1|hive:alice|500", Join("1", "hive:alice", "500"))
	assert.Equal(t, "18446744073709551615", U64(^uint64(0)))
	assert.Equal(t, "-5", I64(-5))
	assert.True(t, ParseBool(FormatBool(true)))
	assert.True(t, ParseBool(" YES "))
	assert.Nil(t, SplitList(" "))
	assert.Equal(t, "a b", UnwrapPayload(`  'a b' `))
}
