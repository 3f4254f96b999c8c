package sdk

// Env is the per-call snapshot a contract sees. Sender is whoever signed the tx,
// Caller is the direct caller which is a contract address for cross contract calls.
type Env struct {
	Sender      Address
	Caller      Address
	Self        Address
	Timestamp   int64
	TxId        string
	BlockHeight uint64
}

// State is the contract scoped kv store. Keys never leak into other contracts.
type State interface {
	Set(key, value string)
	Get(key string) *string
	Delete(key string)
}

// Host is everything a contract can touch while it runs.
// Example payload: h.Call(sdk.Address("contract:gallery"), "get_gallery", "1")
type Host interface {
	// Env returns the frame env, same value for the whole call.
	Env() Env
	// State returns the kv store of the executing contract.
	State() State
	// Log appends an event line, only published when the tx commits.
	Log(line string)
	// Call runs a synchronous call into another contract and returns its result string.
	Call(contract Address, method string, payload string) (string, error)
}

// StateSetObject stores a key/value string pair into contract kv storage.
// Example payload: sdk.StateSetObject(h, "count", "5")
func StateSetObject(h Host, key string, value string) {
	h.State().Set(key, value)
}

// StateGetObject fetches a key and returns nil when missing.
// Example payload: sdk.StateGetObject(h, "count")
func StateGetObject(h Host, key string) *string {
	return h.State().Get(key)
}

// StateDeleteObject removes the key entirely, handy for cleanup.
// Example payload: sdk.StateDeleteObject(h, "count")
func StateDeleteObject(h Host, key string) {
	h.State().Delete(key)
}
