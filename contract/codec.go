package contract

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"

	"okinoko_gallery/sdk"
)

var errUnexpectedEOF = errors.New("unexpected EOF")

// Writer builds the compact binary records we keep in state.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter spins up a fresh writer so we dont leak old bytes between encodes.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer, tiny helper but keeps code tidy.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// String returns the buffer as a state value.
func (w *Writer) String() string { return w.buf.String() }

// WriteBool squashes bools into a single byte flag for deterministic payloads.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteByte writes a raw byte, used for small enums like submission status.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteUint64 writes big endian numbers so tooling can read them without guessing.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteInt64 reuses the uint routine since casting keeps the sign bits intact.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteVarUint uses varints to keep counts and lens compact.
func (w *Writer) WriteVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// WriteString prefixes its length then dumps UTF-8 directly.
func (w *Writer) WriteString(s string) {
	w.WriteVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

// WriteAddress writes the literal address string.
func (w *Writer) WriteAddress(a sdk.Address) {
	w.WriteString(a.String())
}

// WriteAmount stores the minimal big endian bytes of the amount behind a length byte.
func (w *Writer) WriteAmount(v *sdk.Amount) {
	if v == nil {
		w.buf.WriteByte(0)
		return
	}
	b := v.Bytes()
	w.buf.WriteByte(byte(len(b)))
	w.buf.Write(b)
}

// Reader walks a record produced by Writer.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps raw bytes so we can peek sequentially w/out copying.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewStringReader is NewReader for state values.
func NewStringReader(s string) *Reader {
	return &Reader{data: []byte(s)}
}

// ReadByte grabs the next byte and bumps the cursor.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool restores bools stored via WriteBool above.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

// ReadUint64 decodes big endian integers for ids and timestamps.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

// ReadInt64 simply casts the unsigned read, matching the writer logic.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadVarUint undoes the compact varint encoding for lengths/counts.
func (r *Reader) ReadVarUint() (uint64, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

// ReadString reads the varint length then slices out the utf8 chunk.
func (r *Reader) ReadString() (string, error) {
	l, err := r.ReadVarUint()
	if err != nil {
		return "", err
	}
	if l > uint64(len(r.data)-r.pos) {
		return "", errUnexpectedEOF
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

// ReadAddress is ReadString with the address wrapper.
func (r *Reader) ReadAddress() (sdk.Address, error) {
	s, err := r.ReadString()
	if err != nil {
		return sdk.ZeroAddress, err
	}
	return sdk.Address(s), nil
}

// ReadAmount rebuilds an amount written by WriteAmount.
func (r *Reader) ReadAmount() (*sdk.Amount, error) {
	l, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if l > 32 || r.pos+int(l) > len(r.data) {
		return nil, errUnexpectedEOF
	}
	v := new(uint256.Int).SetBytes(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return v, nil
}
