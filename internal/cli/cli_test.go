package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const galleryScript = `
steps:
  - sender: hive:curator
    contract: gallery
    method: create_gallery
    payload: expo|ipfs://expo|0|1756944000|1757030400|1
    at: 2025-09-03T00:00:00
    save: g
  - sender: hive:painter
    contract: ticketing
    method: buy_ticket
    payload: ${g}
    at: 2025-09-03T00:00:00
  - sender: hive:painter
    contract: storage
    method: submit_nft
    payload: ${g}|pixels
    at: 2025-09-03T00:00:00
  - sender: hive:curator
    contract: curation
    method: set_nft_state
    payload: ${g}|1|1
    at: 2025-09-03T00:00:00
  - sender: hive:curator
    contract: curation
    method: set_nft_state
    payload: ${g}|1|2
    at: 2025-09-03T00:00:00
    expect: fail
  - contract: curation
    method: nft_list_len
    payload: ${g}
    query: true
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GALLERY_DATA_DIR", dir)
	t.Setenv("GALLERY_LOG_CONSOLE", "false")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestDeployListsSuite(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "deploy")
	require.NoError(t, err)
	assert.Contains(t, out, `"address":"contract:gallery"`)
	assert.Contains(t, out, `"kind":"safevote"`)
	assert.Contains(t, out, `"cast_vote"`)

	// a second run reopens the same chain
	again, err := run(t, "deploy")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestScriptThenIndex(t *testing.T) {
	dir := setupEnv(t)
	scriptPath := filepath.Join(dir, "expo.yaml")
	require.NoError(t, os.WriteFile(scriptPath, []byte(galleryScript), 0o644))

	out, err := run(t, "script", scriptPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], `"result":"1"`)
	assert.Contains(t, lines[4], `"success":false`)
	assert.Contains(t, lines[4], `code:306`)
	assert.Contains(t, lines[5], `"result":"1|1"`)

	out, err = run(t, "query", "curation", "get_nft", "1|1|false")
	require.NoError(t, err)
	assert.Equal(t, "hive:painter|1|1\n", out)

	out, err = run(t, "events", "--tag", "an")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, `"tag":"an"`))

	out, err = run(t, "events", "galleries")
	require.NoError(t, err)
	assert.Contains(t, out, `"owner":"hive:curator"`)
	assert.Contains(t, out, `"attendees":1`)
}

func TestScriptStopsOnUnexpectedOutcome(t *testing.T) {
	dir := setupEnv(t)
	scriptPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`
steps:
  - sender: hive:mallory
    contract: token
    method: set_minter
    payload: hive:mallory|true
  - contract: token
    method: name
    query: true
`), 0o644))

	out, err := run(t, "script", scriptPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script step 1")
	assert.Equal(t, 1, strings.Count(out, `"tx_id"`))
}

func TestCallReportsContractError(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "call", "gallery", "get_gallery", "99", "--sender", "hive:alice")
	require.Error(t, err)
	assert.Contains(t, out, `"success":false`)
}

func TestLoadScriptValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - contract: token\n"), 0o644))
	_, err := loadScript(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - contract: token\n    method: name\n    expect: maybe\n"), 0o644))
	_, err = loadScript(path)
	require.Error(t, err)
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2025-09-03T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1756857600), ts)
	ts, err = parseTime("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
	ts, err = parseTime("")
	require.NoError(t, err)
	assert.Zero(t, ts)
	_, err = parseTime("tomorrow")
	require.Error(t, err)
}

func TestContractAddress(t *testing.T) {
	assert.Equal(t, "contract:gallery", contractAddress("gallery").String())
	assert.Equal(t, "contract:x", contractAddress("contract:x").String())
}
