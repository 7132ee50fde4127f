package beats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// partialPrefix marks tool output that has not been published yet.
const partialPrefix = ".partial-"

// publishFile lets produce write to a scratch path next to final and moves
// the result into place only when produce succeeds. A killed or failing
// tool therefore never leaves a file at final.
func publishFile(final string, produce func(tmp string) error) error {
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	// Keep the extension; image tools pick the format from it.
	tmp := filepath.Join(dir, partialPrefix+filepath.Base(final))
	_ = os.Remove(tmp)

	if err := produce(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to publish %s: %w", final, err)
	}
	return nil
}

// layerFunc is a segmentation pass writing into destDir and returning the
// produced file.
type layerFunc func(ctx context.Context, imagePath, destDir string) (string, error)

// publishLayer runs a segmentation pass into a scratch directory beside
// final's directory and moves the produced layer to final on success.
func publishLayer(ctx context.Context, final, source string, extract layerFunc) error {
	dir := filepath.Dir(final)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}
	scratch, err := os.MkdirTemp(parent, partialPrefix+filepath.Base(dir)+"-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	produced, err := extract(ctx, source, scratch)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.Rename(produced, final); err != nil {
		return fmt.Errorf("failed to publish %s: %w", final, err)
	}
	return nil
}
