package chain

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
)

// TxID hashes the tx fields with the nonce. Fields are length prefixed so "ab"+"c" and
// "a"+"bc" never collide.
func TxID(tx Tx, nonce uint64) string {
	h := blake3.New()
	var buf [8]byte
	field := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(s))
	}
	field(tx.Sender.String())
	field(tx.Contract.String())
	field(tx.Method)
	field(tx.Payload)
	binary.LittleEndian.PutUint64(buf[:], uint64(tx.Timestamp))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], nonce)
	_, _ = h.Write(buf[:])
	return base58.Encode(h.Sum(nil))
}
