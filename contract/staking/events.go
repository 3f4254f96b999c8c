package staking

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

func emitStakedEvent(h sdk.Host, g, nft, cast uint64, by sdk.Address, bid *sdk.Amount, rank int) {
	contract.Emit(h, "cs",
		"g", contract.U64(g),
		"nft", contract.U64(nft),
		"cast", contract.U64(cast),
		"by", by.String(),
		"bid", sdk.FormatAmount(bid),
		"rank", contract.I64(int64(rank)),
	)
}

func emitBidUpdatedEvent(h sdk.Host, g, nft, cast uint64, by sdk.Address, bid *sdk.Amount, rank int) {
	contract.Emit(h, "cu",
		"g", contract.U64(g),
		"nft", contract.U64(nft),
		"cast", contract.U64(cast),
		"by", by.String(),
		"bid", sdk.FormatAmount(bid),
		"rank", contract.I64(int64(rank)),
	)
}
