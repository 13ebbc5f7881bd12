package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/scholar/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0600))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", minimalPDF("Transformers use attention [1].", "   ", "Results  improve."))
	writeFile(t, dir, "a.txt", []byte("Plain\n\nnotes [2]"))
	writeFile(t, dir, "ignored.docx", []byte("whatever"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0755))

	report, err := NewLoader(WithLogger(zaptest.NewLogger(t))).Load(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, report.Pages, 3)
	assert.Equal(t, 2, report.Files)
	assert.Empty(t, report.Skipped)

	assert.Equal(t, "a.txt", report.Pages[0].SourceID)
	assert.Equal(t, 1, report.Pages[0].PageNumber)
	assert.Equal(t, "Plain notes", report.Pages[0].Text)

	assert.Equal(t, "b.pdf", report.Pages[1].SourceID)
	assert.Equal(t, 1, report.Pages[1].PageNumber)
	assert.Contains(t, report.Pages[1].Text, "Transformers use attention")
	assert.NotContains(t, report.Pages[1].Text, "[1]")

	// the blank second page is dropped but numbering stays with the source
	assert.Equal(t, 3, report.Pages[2].PageNumber)
	assert.Contains(t, report.Pages[2].Text, "Results improve.")
}

func TestLoader_skipsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", []byte("%PDF-1.4 truncated garbage"))
	writeFile(t, dir, "good.md", []byte("still loaded"))

	report, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, report.Pages, 1)
	assert.Equal(t, "good.md", report.Pages[0].SourceID)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "broken.pdf"), report.Skipped[0].Path)
	assert.True(t, errors.Is(report.Skipped[0], errs.ErrLoad))
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", []byte("one"))
	writeFile(t, dir, "two.txt", []byte("two"))

	pages, err := NewLoader().LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "one", pages[0].Text)
	assert.Equal(t, "two", pages[1].Text)
}

func TestLoader_emptyDirectory(t *testing.T) {
	pages, err := NewLoader().LoadAll(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoader_missingDirectory(t *testing.T) {
	_, err := NewLoader().LoadAll(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoader_cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", []byte("one"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader().LoadAll(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
