package cli

import (
	"io"
	"sort"

	"github.com/CosmWasm/tinyjson/jwriter"

	"okinoko_gallery/chain"
	"okinoko_gallery/internal/indexer"
	"okinoko_gallery/sdk"
)

// jsonLine writes one JSON document per line.
func jsonLine(out io.Writer, fill func(w *jwriter.Writer)) error {
	w := &jwriter.Writer{}
	fill(w)
	w.RawByte('\n')
	if w.Error != nil {
		return w.Error
	}
	_, err := w.DumpTo(out)
	return err
}

func field(w *jwriter.Writer, first bool, name string) {
	if !first {
		w.RawByte(',')
	}
	w.String(name)
	w.RawByte(':')
}

func writeReceipt(w *jwriter.Writer, r *chain.Receipt) {
	w.RawByte('{')
	field(w, true, "tx_id")
	w.String(r.TxId)
	field(w, false, "height")
	w.Uint64(r.Height)
	field(w, false, "success")
	w.Bool(r.Success)
	field(w, false, "result")
	w.String(r.Result)
	if r.Err != nil {
		field(w, false, "error")
		w.String(r.Err.Payload())
	}
	field(w, false, "logs")
	w.RawByte('[')
	for i, l := range r.Logs {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawByte('{')
		field(w, true, "contract")
		w.String(l.Contract.String())
		field(w, false, "line")
		w.String(l.Line)
		w.RawByte('}')
	}
	w.RawByte(']')
	field(w, false, "depth")
	w.Int(r.Depth)
	field(w, false, "duration_us")
	w.Int64(r.Duration.Microseconds())
	w.RawByte('}')
}

func writeDeployments(w *jwriter.Writer, deployments map[sdk.Address]string, methods func(sdk.Address) []string) {
	addrs := make([]string, 0, len(deployments))
	for addr := range deployments {
		addrs = append(addrs, addr.String())
	}
	sort.Strings(addrs)
	w.RawByte('[')
	for i, addr := range addrs {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawByte('{')
		field(w, true, "address")
		w.String(addr)
		field(w, false, "kind")
		w.String(deployments[sdk.Address(addr)])
		field(w, false, "methods")
		w.RawByte('[')
		for j, m := range methods(sdk.Address(addr)) {
			if j > 0 {
				w.RawByte(',')
			}
			w.String(m)
		}
		w.RawByte(']')
		w.RawByte('}')
	}
	w.RawByte(']')
}

func writeEvent(w *jwriter.Writer, e *indexer.EventRecord) {
	w.RawByte('{')
	field(w, true, "id")
	w.String(e.ID)
	field(w, false, "tx_id")
	w.String(e.TxId)
	field(w, false, "height")
	w.Uint64(e.Height)
	field(w, false, "contract")
	w.String(e.Contract)
	field(w, false, "tag")
	w.String(e.Tag)
	field(w, false, "line")
	w.String(e.Line)
	w.RawByte('}')
}

func writeGallery(w *jwriter.Writer, g *indexer.GalleryRecord) {
	w.RawByte('{')
	field(w, true, "gallery")
	w.Uint64(g.GalleryID)
	field(w, false, "owner")
	w.String(g.Owner)
	field(w, false, "name")
	w.String(g.Name)
	field(w, false, "price")
	w.String(g.Price)
	field(w, false, "voting_start")
	w.Int64(g.VotingStart)
	field(w, false, "voting_end")
	w.Int64(g.VotingEnd)
	field(w, false, "attendees")
	w.Uint64(g.Attendees)
	w.RawByte('}')
}

func writeCast(w *jwriter.Writer, c *indexer.CastRecord) {
	w.RawByte('{')
	field(w, true, "gallery")
	w.Uint64(c.GalleryID)
	field(w, false, "nft")
	w.Uint64(c.Nft)
	field(w, false, "cast")
	w.Uint64(c.CastID)
	field(w, false, "voter")
	w.String(c.Voter)
	field(w, false, "bid")
	w.String(c.Bid)
	field(w, false, "rank")
	w.Int(c.BoardRank)
	w.RawByte('}')
}
