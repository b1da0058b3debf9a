package crack

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/adapters/system/systemtest"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixtures(t *testing.T) (string, string) {
	dir := t.TempDir()
	capFile := filepath.Join(dir, "hs-01.cap")
	words := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(capFile, []byte{0}, 0o600))
	require.NoError(t, os.WriteFile(words, []byte("password\n"), 0o600))
	return capFile, words
}

func TestCrack_KeyFound(t *testing.T) {
	capFile, words := fixtures(t)
	runner := systemtest.NewFakeRunner().
		On("aircrack-ng -w", ports.Result{Stdout: "Aircrack-ng 1.7\n\n                        KEY FOUND! [ correct horse ]\n"}, nil)

	res, err := NewAircrack(runner, discard).Crack(context.Background(), capFile, words)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "correct horse", res.Key)
	assert.Equal(t, "aircrack-ng -w "+words+" "+capFile, runner.CommandLines()[0])
}

func TestCrack_NotFound(t *testing.T) {
	capFile, words := fixtures(t)
	runner := systemtest.NewFakeRunner().
		On("aircrack-ng", ports.Result{Stdout: "KEY NOT FOUND\n"}, nil)

	res, err := NewAircrack(runner, discard).Crack(context.Background(), capFile, words)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Key)
}

func TestCrack_MissingInputs(t *testing.T) {
	capFile, _ := fixtures(t)
	runner := systemtest.NewFakeRunner()

	_, err := NewAircrack(runner, discard).Crack(context.Background(), capFile, "/nonexistent/words.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, runner.Calls())
}

func TestCrack_ToolMissing(t *testing.T) {
	capFile, words := fixtures(t)
	runner := systemtest.NewFakeRunner().On("aircrack-ng", ports.Result{}, domain.ErrToolMissing)

	_, err := NewAircrack(runner, discard).Crack(context.Background(), capFile, words)
	assert.ErrorIs(t, err, domain.ErrToolMissing)
}
