package parallax

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/parallax-reel/internal/types"
)

// BeatSheet is the precomputed track of one beat placed on the global timeline.
type BeatSheet struct {
	BeatIndex  int               `json:"beatIndex"`
	StartFrame int               `json:"startFrame"`
	Frames     []FrameTransforms `json:"frames"`
}

// Sheet computes every beat's track of a reel document concurrently.
// The result follows timeline order.
func Sheet(ctx context.Context, doc *types.ReelDocument) ([]BeatSheet, error) {
	beats := make([]*types.BeatRecord, len(doc.Timeline))
	for i, entry := range doc.Timeline {
		b, ok := doc.BeatByIndex(entry.BeatIndex)
		if !ok {
			return nil, fmt.Errorf("timeline references unknown beat %d", entry.BeatIndex)
		}
		beats[i] = b
	}

	sheets := make([]BeatSheet, len(doc.Timeline))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, entry := range doc.Timeline {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sheets[i] = BeatSheet{
				BeatIndex:  entry.BeatIndex,
				StartFrame: entry.StartFrame,
				Frames:     Track(beats[i], entry.LengthFrames),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}
