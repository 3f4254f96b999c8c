package contract

import (
	"strconv"

	"okinoko_gallery/sdk"
)

// GetCount reads the string counter under the key and defaults to zero, nothing magical here.
func GetCount(st sdk.State, key string) uint64 {
	ptr := st.Get(key)
	if ptr == nil || *ptr == "" {
		return 0
	}
	n, _ := strconv.ParseUint(*ptr, 10, 64)
	return n
}

// SetCount stores uint64 counters back as decimal strings for the host kv.
func SetCount(st sdk.State, key string, n uint64) {
	st.Set(key, strconv.FormatUint(n, 10))
}

// NextID bumps the counter and hands out the new value, so the first id is 1 and
// 0 stays free as the "nothing here" marker.
func NextID(st sdk.State, key string) uint64 {
	n := GetCount(st, key) + 1
	SetCount(st, key, n)
	return n
}

// GetAmount reads a decimal amount slot, missing slots are zero.
func GetAmount(st sdk.State, key string) *sdk.Amount {
	ptr := st.Get(key)
	if ptr == nil || *ptr == "" {
		return sdk.NewAmount(0)
	}
	v, err := sdk.ParseAmount(*ptr)
	if err != nil {
		return sdk.NewAmount(0)
	}
	return v
}

// SetAmount stores the amount, zero balances are deleted to keep the store lean.
func SetAmount(st sdk.State, key string, v *sdk.Amount) {
	if v == nil || v.IsZero() {
		st.Delete(key)
		return
	}
	st.Set(key, v.Dec())
}

// GetFlag reads a "1" flag.
func GetFlag(st sdk.State, key string) bool {
	ptr := st.Get(key)
	return ptr != nil && *ptr == "1"
}

// SetFlag stores a one way flag, there is no unset on purpose.
func SetFlag(st sdk.State, key string) {
	st.Set(key, "1")
}

// GetAddress reads an address slot, missing slots are the zero address.
func GetAddress(st sdk.State, key string) sdk.Address {
	ptr := st.Get(key)
	if ptr == nil {
		return sdk.ZeroAddress
	}
	return sdk.Address(*ptr)
}

// SetAddress stores an address slot.
func SetAddress(st sdk.State, key string, addr sdk.Address) {
	st.Set(key, addr.String())
}
