package multitoken

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// tag is "ts" for single transfers and "tb" for batches. Mints come from the zero address.
func emitTransferEvent(h sdk.Host, tag string, operator, from, to sdk.Address, ids, amounts string) {
	contract.Emit(h, tag,
		"op", operator.String(),
		"from", from.String(),
		"to", to.String(),
		"id", ids,
		"amount", amounts,
		"at", contract.I64(h.Env().Timestamp),
	)
}

func emitApprovalEvent(h sdk.Host, owner, operator sdk.Address, approved bool) {
	contract.Emit(h, "aa",
		"owner", owner.String(),
		"op", operator.String(),
		"approved", contract.FormatBool(approved),
	)
}
