package contract

import "okinoko_gallery/sdk"

// SetIfChanged skips the write when the slot already holds value, so re-running the
// wiring leaves state and logs untouched. Reports whether it wrote.
func SetIfChanged(st sdk.State, key, value string) bool {
	if existing := st.Get(key); existing != nil && *existing == value {
		return false
	}
	st.Set(key, value)
	return true
}
