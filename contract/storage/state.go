package storage

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	// kItem stores encoded items by storage id.
	kItem byte = 0x01
	// kLen is the storage id counter.
	kLen byte = 0x02
)

// Item is the raw nft payload kept until the minter opens it.
type Item struct {
	ID      uint64
	Owner   sdk.Address
	Gallery uint64
	Data    string
	Open    bool
}

func itemKey(id uint64) string { return contract.KeyU64(kItem, id) }

func encodeItem(it *Item) string {
	w := contract.NewWriter()
	w.WriteAddress(it.Owner)
	w.WriteVarUint(it.Gallery)
	w.WriteString(it.Data)
	w.WriteBool(it.Open)
	return w.String()
}

func decodeItem(id uint64, data string) (*Item, error) {
	r := contract.NewStringReader(data)
	it := &Item{ID: id}
	var err error
	if it.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	if it.Gallery, err = r.ReadVarUint(); err != nil {
		return nil, err
	}
	if it.Data, err = r.ReadString(); err != nil {
		return nil, err
	}
	if it.Open, err = r.ReadBool(); err != nil {
		return nil, err
	}
	return it, nil
}

func loadItem(st sdk.State, id uint64) (*Item, error) {
	ptr := st.Get(itemKey(id))
	if id == 0 || ptr == nil {
		return nil, contract.InvalidState(CodeMissing, "storage item %d does not exist", id)
	}
	it, err := decodeItem(id, *ptr)
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "storage item %d unreadable: %v", id, err)
	}
	return it, nil
}

func saveItem(st sdk.State, it *Item) {
	st.Set(itemKey(it.ID), encodeItem(it))
}
