package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	require.NoError(t, h.Load())
	assert.Equal(t, 0, h.Len())

	require.NoError(t, h.Add("doc_name", modeEval))
	require.NoError(t, h.Add("vars", modeCtrl))
	require.NoError(t, h.Add("  ", modeEval))
	require.NoError(t, h.Add("vars", modeCtrl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "E:doc_name\nC:vars\n", string(data))

	// A repeated entry moves to the end.
	require.NoError(t, h.Add("doc_name", modeEval))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "C:vars\nE:doc_name\n", string(data))

	loaded := NewHistory(path)
	require.NoError(t, loaded.Load())
	assert.Equal(t, h.Entries(), loaded.Entries())
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")
	require.NoError(t, h.Add("a", modeEval))

	e, err := h.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, HistoryEntry{Line: "a", Mode: modeEval}, e)

	_, err = h.Entry(1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = h.Entry(-1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeEntry(t *testing.T) {
	assert.Equal(t, HistoryEntry{Line: "x", Mode: modeCtrl}, decodeEntry("C:x"))
	assert.Equal(t, HistoryEntry{Line: "x", Mode: modeEval}, decodeEntry("E:x"))
	assert.Equal(t, HistoryEntry{Line: "x", Mode: modeEval}, decodeEntry("x"))
}
