package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"pqgo/pkg/round5"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pqgo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, round5.ConstantTimeName, c.Round5.RingMultiplier)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[kyber]
mode = "Kyber1024"

[round5]
set = "R5ND_5KEMb"
ring_multiplier = "fast"

[log]
level = "debug"
json = true

[cache]
matrix_entries = 16
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Kyber1024", c.Kyber.Mode)
	require.Equal(t, "Dilithium2", c.Dilithium.Mode)
	require.Equal(t, "R5ND_5KEMb", c.Round5.Set)
	require.Equal(t, round5.FastName, c.Round5.RingMultiplier)
	require.True(t, c.Log.JSON)
	require.Equal(t, 16, c.Cache.MatrixEntries)
	require.Equal(t, "pqgo.db", c.Store.Path)
}

func TestValidateCollectsEveryError(t *testing.T) {
	c := Default()
	c.Kyber.Mode = "Kyber2048"
	c.Round5.RingMultiplier = "leaky"
	c.Log.Level = "loud"
	c.Cache.MatrixEntries = -1

	err := c.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, xerrors.As(err, &merr))
	require.Len(t, merr.Errors, 4)
	require.True(t, xerrors.Is(merr.Errors[1], round5.ErrUnknownMultiplier))
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "[round5]\nmultiplier = \"fast\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	c := Default()
	c.Dilithium.Mode = "Dilithium3"
	c.Metrics.Enabled = true
	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, c.Save(path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}
