// Package registration stores user profiles and drops welcome tokens on first signup.
// The drop shrinks with every registered user until it is too small to bother.
package registration

import (
	"okinoko_gallery/contract"
	"okinoko_gallery/contract/token"
	"okinoko_gallery/sdk"
)

const (
	// Airdrop is what the very first user receives.
	Airdrop uint64 = 200_000
	// AirdropStep is taken off the drop per registered user.
	AirdropStep uint64 = 32
	// AirdropFloor is the smallest drop still paid out.
	AirdropFloor uint64 = 53
)

// RoleToken is the token contract that pays the drop.
const RoleToken = "token"

const (
	CodeNotRegistered uint16 = 1001
	CodeCorrupt       uint16 = 1002
)

const (
	kProfile    byte = 0x01
	kRegistered byte = 0x02
)

// Profile is one registered user.
type Profile struct {
	Name        string
	Bio         string
	Meta        string
	JoinedAt    int64
	LastUpdated int64
}

type Minter interface {
	MintTo(to sdk.Address, value *sdk.Amount) error
}

// New returns the registration entry points.
func New() contract.Router {
	return contract.Router{
		"register_user":  registerUser,
		"get_user_info":  getUserInfo,
		"has_registered": hasRegistered,
		"get_registered": getRegistered,
		"set_token":      setToken,
	}
}

// AirdropFor is the drop for the user registering after n others, 0 below the floor.
func AirdropFor(n uint64) uint64 {
	if n >= Airdrop/AirdropStep {
		return 0
	}
	drop := Airdrop - AirdropStep*n
	if drop < AirdropFloor {
		return 0
	}
	return drop
}

func profileKey(user sdk.Address) string { return contract.KeyAddr(kProfile, user) }

func encodeProfile(p *Profile) string {
	w := contract.NewWriter()
	w.WriteString(p.Name)
	w.WriteString(p.Bio)
	w.WriteString(p.Meta)
	w.WriteInt64(p.JoinedAt)
	w.WriteInt64(p.LastUpdated)
	return w.String()
}

func loadProfile(st sdk.State, user sdk.Address) (*Profile, error) {
	ptr := st.Get(profileKey(user))
	if ptr == nil {
		return nil, nil
	}
	r := contract.NewStringReader(*ptr)
	p := &Profile{}
	var err error
	if p.Name, err = r.ReadString(); err == nil {
		if p.Bio, err = r.ReadString(); err == nil {
			if p.Meta, err = r.ReadString(); err == nil {
				if p.JoinedAt, err = r.ReadInt64(); err == nil {
					p.LastUpdated, err = r.ReadInt64()
				}
			}
		}
	}
	if err != nil {
		return nil, contract.InvalidState(CodeCorrupt, "profile of %s unreadable", user)
	}
	return p, nil
}

// registerUser creates or updates the caller's profile. Only the first registration
// gets the drop, minted after the profile is stored.
// Payload: name|bio|meta
// Result: tokens dropped
func registerUser(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 3, "name|bio|meta")
	if err != nil {
		return "", err
	}
	fields := make([]string, 3)
	for i, field := range []string{"name", "bio", "meta"} {
		if fields[i], err = args.Text(i, field); err != nil {
			return "", err
		}
	}
	env := h.Env()
	user := env.Caller
	st := h.State()
	existing, err := loadProfile(st, user)
	if err != nil {
		return "", err
	}
	p := &Profile{Name: fields[0], Bio: fields[1], Meta: fields[2], JoinedAt: env.Timestamp, LastUpdated: env.Timestamp}
	if existing != nil {
		p.JoinedAt = existing.JoinedAt
		st.Set(profileKey(user), encodeProfile(p))
		emitProfileEvent(h, "pu", user, 0)
		return "0", nil
	}

	n := contract.GetCount(st, contract.Key(kRegistered))
	drop := AirdropFor(n)
	var pay Minter
	if drop > 0 {
		addr, err := contract.Collaborator(st, RoleToken)
		if err != nil {
			return "", err
		}
		pay = token.NewClient(h, addr)
	}
	st.Set(profileKey(user), encodeProfile(p))
	contract.SetCount(st, contract.Key(kRegistered), n+1)
	if pay != nil {
		if err := pay.MintTo(user, sdk.NewAmount(drop)); err != nil {
			return "", err
		}
	}
	emitProfileEvent(h, "ur", user, drop)
	return contract.U64(drop), nil
}

// getUserInfo returns name|bio|meta|joined_at|last_updated.
// Payload: user
func getUserInfo(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "user")
	if err != nil {
		return "", err
	}
	user, err := args.Address(0, "user")
	if err != nil {
		return "", err
	}
	p, err := loadProfile(h.State(), user)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", contract.InvalidState(CodeNotRegistered, "%s is not registered", user)
	}
	return contract.Join(p.Name, p.Bio, p.Meta, contract.I64(p.JoinedAt), contract.I64(p.LastUpdated)), nil
}

// Payload: user
func hasRegistered(h sdk.Host, payload string) (string, error) {
	args, err := contract.ParseArgs(payload, 1, "user")
	if err != nil {
		return "", err
	}
	user, err := args.Address(0, "user")
	if err != nil {
		return "", err
	}
	return contract.FormatBool(h.State().Get(profileKey(user)) != nil), nil
}

func getRegistered(h sdk.Host, _ string) (string, error) {
	return contract.U64(contract.GetCount(h.State(), contract.Key(kRegistered))), nil
}

// Payload: token
func setToken(h sdk.Host, payload string) (string, error) {
	return contract.SetCollaborators(h, payload, RoleToken)
}

func emitProfileEvent(h sdk.Host, tag string, user sdk.Address, drop uint64) {
	contract.Emit(h, tag, "by", user.String(), "drop", contract.U64(drop))
}
