package contract

import (
	"strconv"
	"strings"

	"okinoko_gallery/sdk"
)

// MaxTextLength caps names, bios and metadata refs.
const MaxTextLength = 512

// Args is a split pipe-delimited payload like "1|hive:alice|500".
type Args struct {
	parts []string
	usage string
}

// UnwrapPayload trims quotes and whitespace, an empty payload becomes "".
func UnwrapPayload(payload string) string {
	raw := strings.TrimSpace(payload)
	if len(raw) >= 2 {
		first := raw[0]
		last := raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			if unquoted, err := strconv.Unquote(raw); err == nil {
				return strings.TrimSpace(unquoted)
			}
			raw = strings.TrimSpace(raw[1 : len(raw)-1])
		}
	}
	return raw
}

// ParseArgs splits the payload and demands exactly want fields, extra fields are an
// error rather than dropped. usage ends up in the error so callers know the layout.
// Example payload: contract.ParseArgs("1|2", 2, "gallery|nft")
func ParseArgs(payload string, want int, usage string) (Args, error) {
	raw := UnwrapPayload(payload)
	var parts []string
	if raw != "" {
		parts = strings.Split(raw, "|")
	}
	if len(parts) != want {
		return Args{}, InvalidInput(CodeBadPayload, "payload requires %s, got %d fields", usage, len(parts))
	}
	return Args{parts: parts, usage: usage}, nil
}

// Len is the number of fields.
func (a Args) Len() int { return len(a.parts) }

// String returns the trimmed field, missing fields are "".
func (a Args) String(i int) string {
	if i < len(a.parts) {
		return strings.TrimSpace(a.parts[i])
	}
	return ""
}

// Text is String plus the non-empty and length rules for free text.
func (a Args) Text(i int, field string) (string, error) {
	s := a.String(i)
	if s == "" {
		return "", InvalidInput(CodeBadPayload, "%s must not be empty", field)
	}
	if len(s) > MaxTextLength {
		return "", InvalidInput(CodeBadPayload, "%s exceeds %d characters", field, MaxTextLength)
	}
	if strings.ContainsAny(s, "|;") {
		return "", InvalidInput(CodeBadPayload, "%s must not contain '|' or ';'", field)
	}
	return s, nil
}

// Uint parses a base-10 uint64 field.
func (a Args) Uint(i int, field string) (uint64, error) {
	n, err := strconv.ParseUint(a.String(i), 10, 64)
	if err != nil {
		return 0, InvalidInput(CodeBadPayload, "invalid %s", field)
	}
	return n, nil
}

// ID is Uint but rejects 0, the reserved empty id.
func (a Args) ID(i int, field string) (uint64, error) {
	n, err := a.Uint(i, field)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, InvalidInput(CodeBadPayload, "%s must be >= 1", field)
	}
	return n, nil
}

// Int parses a signed field, timestamps mostly.
func (a Args) Int(i int, field string) (int64, error) {
	n, err := strconv.ParseInt(a.String(i), 10, 64)
	if err != nil {
		return 0, InvalidInput(CodeBadPayload, "invalid %s", field)
	}
	return n, nil
}

// Amount parses a decimal amount field.
func (a Args) Amount(i int, field string) (*sdk.Amount, error) {
	v, err := sdk.ParseAmount(a.String(i))
	if err != nil {
		return nil, InvalidInput(CodeBadPayload, "invalid %s", field)
	}
	return v, nil
}

// Address parses an address field and runs the light validity check.
func (a Args) Address(i int, field string) (sdk.Address, error) {
	addr := sdk.Address(a.String(i))
	if !addr.IsValid() {
		return sdk.ZeroAddress, InvalidInput(CodeBadPayload, "invalid %s address", field)
	}
	return addr, nil
}

// Bool accepts a couple of truthy keywords, defaulting to false for unknown text.
func (a Args) Bool(i int) bool {
	return ParseBool(a.String(i))
}

// List splits a ';' separated field, empty entries are dropped.
func (a Args) List(i int) []string {
	return SplitList(a.String(i))
}

// ParseBool accepts a couple of truthy keywords.
func ParseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// SplitList splits on ';' and trims.
func SplitList(val string) []string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	raw := strings.Split(val, ";")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Join builds a result or call payload the same way ParseArgs reads it.
// Example payload: contract.Join("1", "hive:alice", "500")
func Join(fields ...string) string {
	return strings.Join(fields, "|")
}

// U64 formats an id for payloads.
func U64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// I64 formats a timestamp for payloads.
func I64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatBool renders a bool the way ParseBool reads it.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}
