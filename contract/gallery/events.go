package gallery

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

// emitGalleryCreatedEvent gives explorers a neat ping without scanning full storage diffs.
func emitGalleryCreatedEvent(h sdk.Host, g *Gallery) {
	contract.Emit(h, "ng",
		"id", contract.U64(g.ID),
		"by", g.Owner.String(),
		"price", sdk.FormatAmount(g.Price),
		"start", contract.I64(g.VotingStart),
		"end", contract.I64(g.VotingEnd),
		"name", g.Name,
	)
}

// emitJoinedEvent writes a tiny "jg" log so watchers know someone fresh just got a ticket.
func emitJoinedEvent(h sdk.Host, id uint64, user sdk.Address) {
	contract.Emit(h, "jg", "id", contract.U64(id), "by", user.String())
}
