package segmentation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool mimics transparent-background: it writes the expected file into --dest.
type fakeTool struct {
	calls [][]string
	err   error
}

func (f *fakeTool) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}

	var src, dest string
	reverse := false
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--source":
			src = args[i+1]
		case "--dest":
			dest = args[i+1]
		case "--reverse":
			reverse = true
		}
	}
	out := SubjectPath(src, dest)
	if reverse {
		out = BackgroundPath(src, dest)
	}
	return nil, os.WriteFile(out, []byte("png"), 0644)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("b", "object_output", "original_rgba.png"),
		SubjectPath("/x/original.png", filepath.Join("b", SubjectDir)))
	assert.Equal(t, filepath.Join("b", "background_output", "original_rgba_reverse.png"),
		BackgroundPath("/x/original.png", filepath.Join("b", BackgroundDir)))
}

func TestExtractSubject(t *testing.T) {
	dir := t.TempDir()
	tool := &fakeTool{}
	seg := NewCLISegmenter(tool, "transparent-background", 0.1)

	out, err := seg.ExtractSubject(context.Background(), filepath.Join(dir, "original.png"), filepath.Join(dir, SubjectDir))
	require.NoError(t, err)
	assert.FileExists(t, out)
	require.Len(t, tool.calls, 1)
	assert.NotContains(t, tool.calls[0], "--reverse")
}

func TestExtractBackground(t *testing.T) {
	dir := t.TempDir()
	tool := &fakeTool{}
	seg := NewCLISegmenter(tool, "transparent-background", 0.1)

	out, err := seg.ExtractBackground(context.Background(), filepath.Join(dir, "original.png"), filepath.Join(dir, BackgroundDir))
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.Contains(t, tool.calls[0], "--reverse")
	assert.Contains(t, tool.calls[0], "--threshold=0.1")
}

func TestExtract_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	seg := NewCLISegmenter(&fakeTool{err: errors.New("model missing")}, "transparent-background", 0.1)

	_, err := seg.ExtractSubject(context.Background(), filepath.Join(dir, "original.png"), filepath.Join(dir, SubjectDir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model missing")
}
