package token

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// emitTransferEvent logs every balance move, mints have an empty from and burns an empty to.
func emitTransferEvent(h sdk.Host, from, to sdk.Address, value *sdk.Amount) {
	contract.Emit(h, "tr", "from", from.String(), "to", to.String(), "v", sdk.FormatAmount(value))
}

func emitApprovalEvent(h sdk.Host, owner, spender sdk.Address, value *sdk.Amount) {
	contract.Emit(h, "ap", "owner", owner.String(), "spender", spender.String(), "v", sdk.FormatAmount(value))
}
