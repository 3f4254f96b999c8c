package contract

import (
	"strings"

	"okinoko_gallery/sdk"
)

// -----------------------------------------------------------------------------
// Admin lock
// -----------------------------------------------------------------------------

const (
	// kAdmin holds the encoded admin lock of the contract.
	kAdmin byte = 0xFE
	// kCollaborator holds the configured collaborator addresses, suffixed by role name.
	kCollaborator byte = 0xFD
)

// AdminState is the explicit two state lock: Uninitialized until the first privileged
// call, then Owner(address) forever.
type AdminState struct {
	Initialized bool
	Owner       sdk.Address
}

// encodeAdmin serializes the lock to a pipe-delimited string.
// Format: owner|<address>
func encodeAdmin(a AdminState) string {
	return "owner|" + a.Owner.String()
}

// decodeAdmin is the reverse, anything unreadable counts as uninitialized.
func decodeAdmin(data string) AdminState {
	tag, owner, ok := strings.Cut(data, "|")
	if !ok || tag != "owner" {
		return AdminState{}
	}
	return AdminState{Initialized: true, Owner: sdk.Address(owner)}
}

// LoadAdmin reads the lock.
func LoadAdmin(st sdk.State) AdminState {
	ptr := st.Get(Key(kAdmin))
	if ptr == nil || *ptr == "" {
		return AdminState{}
	}
	return decodeAdmin(*ptr)
}

// CheckAdmin locks the contract to the first caller, every later call must come from
// that same address. Runs at the top of every privileged config entry point.
func CheckAdmin(h sdk.Host) error {
	st := h.State()
	caller := h.Env().Caller
	admin := LoadAdmin(st)
	if !admin.Initialized {
		admin = AdminState{Initialized: true, Owner: caller}
		st.Set(Key(kAdmin), encodeAdmin(admin))
		emitAdminLockedEvent(h, caller)
		return nil
	}
	if admin.Owner != caller {
		return Unauthorized(CodeNotAdmin, "caller %s is not the admin", caller)
	}
	return nil
}

// emitAdminLockedEvent lets indexers know who owns the contract from now on.
func emitAdminLockedEvent(h sdk.Host, owner sdk.Address) {
	Emit(h, "al", "by", owner.String())
}

// -----------------------------------------------------------------------------
// Collaborators
// -----------------------------------------------------------------------------

func collaboratorKey(role string) string {
	return KeyAddr(kCollaborator, sdk.Address(role))
}

// SetCollaborator stores the address of a collaborator contract under a role name and
// reports whether it changed.
func SetCollaborator(st sdk.State, role string, addr sdk.Address) bool {
	return SetIfChanged(st, collaboratorKey(role), addr.String())
}

// Collaborator returns the configured address, InvalidState when the admin never set it.
func Collaborator(st sdk.State, role string) (sdk.Address, error) {
	addr := GetAddress(st, collaboratorKey(role))
	if addr.IsZero() {
		return sdk.ZeroAddress, InvalidState(CodeNotConfigured, "%s contract not configured", role)
	}
	return addr, nil
}

// RequireCaller only lets the configured collaborator through.
func RequireCaller(h sdk.Host, role string) error {
	addr, err := Collaborator(h.State(), role)
	if err != nil {
		return err
	}
	if h.Env().Caller != addr {
		return Unauthorized(CodeNotAdmin, "only the %s contract may call this", role)
	}
	return nil
}

// SetCollaborators is the shared admin setter: the payload lists addresses in roles order.
func SetCollaborators(h sdk.Host, payload string, roles ...string) (string, error) {
	if err := CheckAdmin(h); err != nil {
		return "", err
	}
	args, err := ParseArgs(payload, len(roles), strings.Join(roles, "|"))
	if err != nil {
		return "", err
	}
	addrs := make([]sdk.Address, len(roles))
	for i, role := range roles {
		addr, err := args.Address(i, role)
		if err != nil {
			return "", err
		}
		addrs[i] = addr
	}
	for i, role := range roles {
		if SetCollaborator(h.State(), role, addrs[i]) {
			Emit(h, "cc", "role", role, "addr", addrs[i].String())
		}
	}
	return "ok", nil
}
