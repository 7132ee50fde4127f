package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/parallax-reel/internal/parallax"
	"github.com/jonathan/parallax-reel/internal/timeline"
	"github.com/jonathan/parallax-reel/internal/types"
)

// TimelineResponse is the body of GET /timeline.
type TimelineResponse struct {
	FPS         int                   `json:"fps"`
	TotalFrames int                   `json:"totalFrames"`
	Timeline    []types.TimelineEntry `json:"timeline"`
}

// Layer is one image layer and its transform for a frame.
type Layer struct {
	Image        string             `json:"image"`
	Transform    parallax.Transform `json:"transform"`
	CSSTransform string             `json:"cssTransform"`
	CSSOrigin    string             `json:"cssOrigin"`
}

// FrameResponse describes what to draw for a single frame.
type FrameResponse struct {
	BeatIndex    int     `json:"beatIndex"`
	Frame        int     `json:"frame"`
	LocalFrame   int     `json:"localFrame"`
	LengthFrames int     `json:"lengthFrames"`
	Progress     float64 `json:"progress"`
	Audio        string  `json:"audio,omitempty"`
	Background   Layer   `json:"background"`
	Object       Layer   `json:"object"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReel(w http.ResponseWriter, r *http.Request) {
	doc, err := s.reel(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	doc, err := s.reel(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TimelineResponse{
		FPS:         doc.FPS,
		TotalFrames: doc.TotalFrames,
		Timeline:    doc.Timeline,
	})
}

func (s *Server) handleBeat(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := s.reel(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	beat, ok := doc.BeatByIndex(index)
	if !ok {
		s.fail(w, &ErrBeatNotFound{Index: index})
		return
	}
	s.jsonResponse(w, http.StatusOK, beat)
}

// handleBeatFrame returns the transforms for a frame counted from the start of a beat.
func (s *Server) handleBeatFrame(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		s.fail(w, err)
		return
	}
	local, err := pathInt(r, "frame")
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := s.reel(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	entry, ok := entryFor(doc, index)
	if !ok {
		s.fail(w, &ErrBeatNotFound{Index: index})
		return
	}
	if local < 0 || local >= entry.LengthFrames {
		s.fail(w, &ErrFrameOutOfRange{Frame: local, Total: entry.LengthFrames})
		return
	}
	s.writeFrame(w, doc, entry, local)
}

// handleFrame resolves a global frame to its beat and returns the transforms.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := pathInt(r, "frame")
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := s.reel(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	entry, local, ok := timeline.FromDocument(doc).EntryAt(frame)
	if !ok {
		s.fail(w, &ErrFrameOutOfRange{Frame: frame, Total: doc.TotalFrames})
		return
	}
	s.writeFrame(w, doc, entry, local)
}

func (s *Server) writeFrame(w http.ResponseWriter, doc *types.ReelDocument, entry types.TimelineEntry, local int) {
	beat, ok := doc.BeatByIndex(entry.BeatIndex)
	if !ok {
		s.fail(w, &ErrBeatNotFound{Index: entry.BeatIndex})
		return
	}
	ft := parallax.ComposeBeat(beat, local, entry.LengthFrames)
	s.jsonResponse(w, http.StatusOK, FrameResponse{
		BeatIndex:    entry.BeatIndex,
		Frame:        entry.StartFrame + local,
		LocalFrame:   local,
		LengthFrames: entry.LengthFrames,
		Progress:     ft.Progress,
		Audio:        beat.AudioPath,
		Background:   layer(beat.BackgroundImagePath, ft.Background),
		Object:       layer(beat.ObjectImagePath, ft.Object),
	})
}

func layer(image string, t parallax.Transform) Layer {
	transform, origin := t.CSS()
	return Layer{Image: image, Transform: t, CSSTransform: transform, CSSOrigin: origin}
}

func entryFor(doc *types.ReelDocument, index int) (types.TimelineEntry, bool) {
	for _, e := range doc.Timeline {
		if e.BeatIndex == index {
			return e, true
		}
	}
	return types.TimelineEntry{}, false
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, &ErrValidation{Field: name, Message: "must be an integer"}
	}
	return v, nil
}
