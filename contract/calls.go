package contract

import (
	"okinoko_gallery/sdk"
)

// Call invokes method on the contract at addr with the joined fields. Failures keep
// their typed error, untyped ones come back as InvalidState.
// Example payload: contract.Call(h, galleryAddr, "get_gallery", "1")
func Call(h sdk.Host, addr sdk.Address, method string, fields ...string) (string, error) {
	ret, err := h.Call(addr, method, Join(fields...))
	if err != nil {
		return "", AsError(err)
	}
	return ret, nil
}
