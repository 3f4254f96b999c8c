package safevote

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// "vp" is a vote payment: value moved from the voter to the nft creator.
func emitVotePaidEvent(h sdk.Host, g, nft, cast uint64, from, to sdk.Address, value *sdk.Amount) {
	contract.Emit(h, "vp",
		"g", contract.U64(g),
		"nft", contract.U64(nft),
		"cast", contract.U64(cast),
		"from", from.String(),
		"to", to.String(),
		"value", sdk.FormatAmount(value),
	)
}
