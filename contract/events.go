package contract

import (
	"strings"

	"okinoko_gallery/sdk"
)

// Event is a parsed log line. Lines look like "ng|id:1|by:hive:alice", first chunk is
// the tag and every other chunk is key:value (the value may hold more ':').
type Event struct {
	Tag    string
	Fields map[string]string
}

// Emit writes a tag plus ordered key/value pairs as one log line.
// Example payload: contract.Emit(h, "ng", "id", "1", "by", "hive:alice")
func Emit(h sdk.Host, tag string, kv ...string) {
	var b strings.Builder
	b.WriteString(tag)
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte('|')
		b.WriteString(kv[i])
		b.WriteByte(':')
		b.WriteString(kv[i+1])
	}
	h.Log(b.String())
}

// ParseEvent splits a log line back into tag and fields. Chunks without ':' are skipped.
func ParseEvent(line string) (Event, bool) {
	parts := strings.Split(line, "|")
	if len(parts) == 0 || parts[0] == "" {
		return Event{}, false
	}
	ev := Event{Tag: parts[0], Fields: make(map[string]string, len(parts)-1)}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		ev.Fields[k] = v
	}
	return ev, true
}
