package types

// Stage identifies one unit of per-beat work
type Stage string

// Stage constants in execution order
const (
	StageImage        Stage = "image"
	StageSegmentation Stage = "segmentation"
	StagePivot        Stage = "pivot"
	StageNarration    Stage = "narration"
	StageDuration     Stage = "duration"
)

// AllStages lists every per-beat stage in execution order
var AllStages = []Stage{StageImage, StageSegmentation, StagePivot, StageNarration, StageDuration}

// StageStatus is the recorded progress of a stage
type StageStatus string

// StageStatus constants
const (
	StatusPending    StageStatus = "pending"
	StatusInProgress StageStatus = "in_progress"
	StatusDone       StageStatus = "done"
)

// Point is a pixel position inside an image
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is the pixel size of an image
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BeatRecord is the checkpointed result of processing a single beat.
type BeatRecord struct {
	Index               int                   `json:"index"`
	Kind                string                `json:"kind"`
	NarrationText       string                `json:"narrationText"`
	ImagePrompt         string                `json:"imagePrompt"`
	OriginalImagePath   string                `json:"originalImagePath"`
	ObjectImagePath     string                `json:"objectImagePath"`
	BackgroundImagePath string                `json:"backgroundImagePath"`
	Pivot               Point                 `json:"pivot"`
	Dimensions          Dimensions            `json:"dimensions"`
	AudioPath           string                `json:"audioPath,omitempty"`
	DurationSeconds     *float64              `json:"durationSeconds,omitempty"`
	Completed           bool                  `json:"completed"`
	Stages              map[Stage]StageStatus `json:"stages,omitempty"`
}

// Status returns the recorded status for a stage, pending when unknown.
// An in_progress status left behind by an interrupted run reads as pending.
func (b *BeatRecord) Status(stage Stage) StageStatus {
	if b.Stages == nil {
		return StatusPending
	}
	st, ok := b.Stages[stage]
	if !ok || st == StatusInProgress {
		return StatusPending
	}
	return st
}

// SetStage records the status of a stage.
func (b *BeatRecord) SetStage(stage Stage, status StageStatus) {
	if b.Stages == nil {
		b.Stages = make(map[Stage]StageStatus)
	}
	b.Stages[stage] = status
}

// HasDuration reports whether a positive duration has been measured.
func (b *BeatRecord) HasDuration() bool {
	return b.DurationSeconds != nil && *b.DurationSeconds > 0
}

// Duration returns the measured duration or zero.
func (b *BeatRecord) Duration() float64 {
	if b.DurationSeconds == nil {
		return 0
	}
	return *b.DurationSeconds
}
