package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRoot mirrors the persistent flags the dcifs root command provides.
func newRoot() (*cobra.Command, *bytes.Buffer) {
	root := &cobra.Command{Use: "dcifs", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", "", "")
	root.PersistentFlags().StringP("output", "o", "table", "")
	root.AddCommand(Cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	return root, &out
}

func TestConfigInitValidateShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dcifs.yaml")

	root, out := newRoot()
	root.SetArgs([]string{"config", "init", "--config", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), path)

	root, out = newRoot()
	root.SetArgs([]string{"config", "validate", "--config", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Validation: OK")
	assert.Contains(t, out.String(), "displacement")

	root, out = newRoot()
	root.SetArgs([]string{"config", "show", "--config", path, "-o", "json"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"FindFirstCount": 1366`)
}

func TestConfigSchema(t *testing.T) {
	root, out := newRoot()
	root.SetArgs([]string{"config", "schema"})
	require.NoError(t, root.Execute())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "dcifs Configuration", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has no properties")
	assert.Contains(t, props, "client")
	assert.Contains(t, props, "cache")
}
