package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migratedDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dest := filepath.Join(dir, "network.db")
	args := append([]string{"--source", legacyDB(t), "--dest", dest, "--audit-dest", dir}, fixtureDirArgs()...)
	_, err := executeMigrate(t, "text", args...)
	require.NoError(t, err)
	return dest
}

func TestDigest_AllTables(t *testing.T) {
	out, err := executeRoot(t, "digest", "--db", migratedDB(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "bus_base\t2\t"), lines[0])
}

func TestDigest_SameInputSameDigests(t *testing.T) {
	a, err := executeRoot(t, "--format", "json", "digest", "--db", migratedDB(t), "hwynet_arc", "hwyproj_coding")
	require.NoError(t, err)
	b, err := executeRoot(t, "--format", "json", "digest", "--db", migratedDB(t), "hwynet_arc", "hwyproj_coding")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var resp struct {
		Data []TableDigest `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(a), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "hwynet_arc", resp.Data[0].Table)
	assert.Equal(t, 8, resp.Data[0].Rows)
	assert.Equal(t, 7, resp.Data[1].Rows)
	assert.NotEmpty(t, resp.Data[0].Digest)
}

func TestDigest_UnknownTable(t *testing.T) {
	_, err := executeRoot(t, "digest", "--db", migratedDB(t), "no_such_table")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
