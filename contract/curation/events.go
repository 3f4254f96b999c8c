package curation

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// emitSubmittedEvent pings curators that a new candidate is waiting.
func emitSubmittedEvent(h sdk.Host, g, id uint64, owner sdk.Address, dataRef string) {
	contract.Emit(h, "sn", "g", contract.U64(g), "id", contract.U64(id), "by", owner.String(), "data", dataRef)
}

// emitAcceptedEvent carries the accepted rank, that is the nft id voters use.
func emitAcceptedEvent(h sdk.Host, g, id, acceptedID uint64, creator sdk.Address) {
	contract.Emit(h, "an", "g", contract.U64(g), "id", contract.U64(id), "aid", contract.U64(acceptedID), "by", creator.String())
}

func emitRejectedEvent(h sdk.Host, g, id uint64, creator sdk.Address) {
	contract.Emit(h, "rn", "g", contract.U64(g), "id", contract.U64(id), "by", creator.String())
}
