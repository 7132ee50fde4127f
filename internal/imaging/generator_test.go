package imaging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	name  string
	args  []string
	write bool
	err   error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	if r.err != nil {
		return nil, r.err
	}
	if r.write {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("png"), 0644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func testOptions() Options {
	return Options{Command: "sd-z", Width: 480, Height: 640, Steps: 8, CFGScale: 1, ExtraArgs: []string{"--diffusion-fa"}}
}

func TestArgs(t *testing.T) {
	g := NewCLIGenerator(nil, testOptions())

	args := g.Args("a fox", "/tmp/out.png")
	assert.Equal(t, []string{
		"--diffusion-fa",
		"-p", "a fox",
		"-H", "640",
		"-W", "480",
		"--steps", "8",
		"--cfg-scale", "1",
		"-o", "/tmp/out.png",
	}, args)
}

func TestGenerate_Success(t *testing.T) {
	runner := &recordingRunner{write: true}
	out := filepath.Join(t.TempDir(), "beat_0", "original.png")

	err := NewCLIGenerator(runner, testOptions()).Generate(context.Background(), "a fox", out)
	require.NoError(t, err)
	assert.Equal(t, "sd-z", runner.name)
	assert.FileExists(t, out)
}

func TestGenerate_ToolFailure(t *testing.T) {
	runner := &recordingRunner{err: errors.New("exit status 1")}
	out := filepath.Join(t.TempDir(), "original.png")

	err := NewCLIGenerator(runner, testOptions()).Generate(context.Background(), "a fox", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image generation failed")
}

func TestGenerate_MissingOutput(t *testing.T) {
	runner := &recordingRunner{}
	out := filepath.Join(t.TempDir(), "original.png")

	err := NewCLIGenerator(runner, testOptions()).Generate(context.Background(), "a fox", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not produce")
}
