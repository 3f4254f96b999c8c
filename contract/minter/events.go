package minter

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

func emitClaimedEvent(h sdk.Host, g, nft uint64, by sdk.Address, id, rank, pieces uint64) {
	contract.Emit(h, "cl",
		"g", contract.U64(g),
		"nft", contract.U64(nft),
		"by", by.String(),
		"id", contract.U64(id),
		"rank", contract.U64(rank),
		"amount", contract.U64(pieces),
	)
}
