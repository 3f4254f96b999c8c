package storage

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

func emitStoredEvent(h sdk.Host, id, g uint64, owner sdk.Address) {
	contract.Emit(h, "sd", "id", contract.U64(id), "g", contract.U64(g), "by", owner.String())
}

// emitOpenedEvent marks the moment an item becomes public.
func emitOpenedEvent(h sdk.Host, id uint64) {
	contract.Emit(h, "op", "id", contract.U64(id))
}
