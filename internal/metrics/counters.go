package metrics

// Counter identifies one of the fixed pipeline counters.
type Counter int

const (
	// FramesProcessed counts every frame pulled through the pipeline.
	FramesProcessed Counter = iota

	// MotionFrames counts frames where motion detection fired.
	MotionFrames

	// EventsCreated counts domain events emitted to subscribers.
	EventsCreated

	// EventsSuppressed counts events dropped by cooldown/suppression.
	EventsSuppressed

	numCounters
)

// String returns the wire/log name of the counter.
func (c Counter) String() string {
	switch c {
	case FramesProcessed:
		return "frames_processed"
	case MotionFrames:
		return "motion_frames"
	case EventsCreated:
		return "events_created"
	case EventsSuppressed:
		return "events_suppressed"
	}
	return "unknown"
}

// ParseCounter maps a string counter name to its Counter. Used at the
// boundary for legacy string-based callers; unknown names return false.
func ParseCounter(name string) (Counter, bool) {
	switch name {
	case "frames_processed":
		return FramesProcessed, true
	case "motion_frames":
		return MotionFrames, true
	case "events_created":
		return EventsCreated, true
	case "events_suppressed":
		return EventsSuppressed, true
	}
	return 0, false
}

// Stage identifies one of the fixed inference pipeline stages.
type Stage int

const (
	// StageDetect is the first, fast detection pass.
	StageDetect Stage = iota

	// StageClassify is the second, heavier classification pass.
	StageClassify

	numStages
)

// String returns the wire/log name of the stage.
func (s Stage) String() string {
	switch s {
	case StageDetect:
		return "detect"
	case StageClassify:
		return "classify"
	}
	return "unknown"
}

// ParseStage maps a string stage name to its Stage.
func ParseStage(name string) (Stage, bool) {
	switch name {
	case "detect":
		return StageDetect, true
	case "classify":
		return StageClassify, true
	}
	return 0, false
}
