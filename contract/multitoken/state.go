package multitoken

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/sdk"
)

const (
	// kBalance is balance by owner+id.
	kBalance byte = 0x01
	// kApproval is the operator flag by owner+operator.
	kApproval byte = 0x02
	// kSupply is the total supply per id.
	kSupply byte = 0x03
	// kData is the provenance record per id.
	kData byte = 0x04
)

// Data links a minted id back to where it came from.
type Data struct {
	Gallery uint64
	Nft     uint64
	Meta    uint64
}

func balanceKey(owner sdk.Address, id uint64) string { return contract.KeyAddrU64(kBalance, owner, id) }
func approvalKey(owner, operator sdk.Address) string { return contract.KeyAddrAddr(kApproval, owner, operator) }
func supplyKey(id uint64) string { return contract.KeyU64(kSupply, id) }
func dataKey(id uint64) string { return contract.KeyU64(kData, id) }

func loadData(st sdk.State, id uint64) (*Data, error) {
	ptr := st.Get(dataKey(id))
	if ptr == nil {
		return &Data{}, nil
	}
	r := contract.NewStringReader(*ptr)
	d := &Data{}
	var err error
	if d.Gallery, err = r.ReadVarUint(); err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "data %d unreadable", id)
	}
	if d.Nft, err = r.ReadVarUint(); err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "data %d unreadable", id)
	}
	if d.Meta, err = r.ReadVarUint(); err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "data %d unreadable", id)
	}
	return d, nil
}

func saveData(st sdk.State, id uint64, d *Data) {
	w := contract.NewWriter()
	w.WriteVarUint(d.Gallery)
	w.WriteVarUint(d.Nft)
	w.WriteVarUint(d.Meta)
	st.Set(dataKey(id), w.String())
}
