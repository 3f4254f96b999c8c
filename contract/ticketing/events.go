package ticketing

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

func emitBoughtTicketEvent(h sdk.Host, id uint64, buyer sdk.Address, price *sdk.Amount) {
	contract.Emit(h, "bt", "id", contract.U64(id), "by", buyer.String(), "price", sdk.FormatAmount(price))
}

func emitSoldTicketEvent(h sdk.Host, id uint64, owner sdk.Address, price *sdk.Amount) {
	contract.Emit(h, "sl", "id", contract.U64(id), "to", owner.String(), "price", sdk.FormatAmount(price))
}
