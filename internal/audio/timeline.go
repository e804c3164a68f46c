package audio

import "time"

// Timeline is an immutable view of a decoded audio source: a window of
// length Duration() starting at Offset() into the file at Source().
//
// Slicing never touches the file. Only Codec.Export reads samples.
type Timeline struct {
	source string
	offset time.Duration
	length time.Duration
}

// NewTimeline returns a Timeline covering the first d of source.
// Negative durations are treated as zero.
func NewTimeline(source string, d time.Duration) Timeline {
	return Timeline{source: source, length: max(d, 0)}
}

// Source returns the path of the underlying audio file.
func (t Timeline) Source() string { return t.source }

// Offset returns where this view starts in the source.
func (t Timeline) Offset() time.Duration { return t.offset }

// Duration returns the length of this view.
func (t Timeline) Duration() time.Duration { return t.length }

// Slice returns the half-open window [start, end) of t, clamped to
// [0, t.Duration()]. An end before start yields an empty window at start.
// t itself is left unchanged.
func (t Timeline) Slice(start, end time.Duration) Timeline {
	start = min(max(start, 0), t.length)
	end = min(max(end, start), t.length)
	return Timeline{
		source: t.source,
		offset: t.offset + start,
		length: end - start,
	}
}
