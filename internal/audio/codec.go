package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-srtsplit/internal/ffmpeg"
)

// Duration patterns in ffmpeg's output. The machine-readable progress value
// (microseconds, from -progress) wins: it is where decoding actually ended.
// The Duration header and the stats line only carry centiseconds.
var (
	outTimeRe  = regexp.MustCompile(`out_time_us=(\d+)`)
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	progressRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// maxOutputLines bounds how much ffmpeg output is kept in errors.
const maxOutputLines = 12

// Codec loads audio files into timelines and exports timeline windows as
// 16-bit PCM WAV, shelling out to ffmpeg for both.
type Codec struct {
	ffmpegPath string
	cmd        commandRunner
	stat       fileStatter
	logger     *slog.Logger
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(r commandRunner) CodecOption {
	return func(c *Codec) { c.cmd = r }
}

// WithFileStatter sets a custom file statter (for testing).
func WithFileStatter(s fileStatter) CodecOption {
	return func(c *Codec) { c.stat = s }
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) CodecOption {
	return func(c *Codec) { c.logger = l }
}

// NewCodec creates a Codec that runs the ffmpeg binary at ffmpegPath.
func NewCodec(ffmpegPath string, opts ...CodecOption) (*Codec, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	c := &Codec{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		stat:       osFileStatter{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load probes path and returns a Timeline spanning the whole file.
// ffmpeg decodes the file once to a null sink, so a file it cannot decode
// fails here rather than on the first export.
func (c *Codec) Load(ctx context.Context, path string) (Timeline, error) {
	if _, err := c.stat.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Timeline{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Timeline{}, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}

	args := loadArgs(path)
	c.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	output, err := c.cmd.CombinedOutput(ctx, c.ffmpegPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return Timeline{}, ctx.Err()
		}
		return Timeline{}, fmt.Errorf("%w: %s: %v\nOutput: %s", ErrLoadFailed, path, err, lastLines(string(output), maxOutputLines))
	}

	d, err := parseDurationFromFFmpegOutput(string(output))
	if err != nil {
		return Timeline{}, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}
	return NewTimeline(path, d), nil
}

// Export writes the window covered by tl to dst as 16-bit PCM WAV.
// An existing dst is overwritten.
func (c *Codec) Export(ctx context.Context, tl Timeline, dst string) error {
	args := exportArgs(tl, dst)
	c.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	output, err := c.cmd.CombinedOutput(ctx, c.ffmpegPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrExportFailed, dst, err, lastLines(string(output), maxOutputLines))
	}
	return nil
}

// loadArgs decodes path to the null muxer, reporting progress on stdout.
func loadArgs(path string) []string {
	return []string{"-progress", "pipe:1", "-i", path, "-f", "null", "-"}
}

// exportArgs seeks on the input side and bounds the read by length, so
// ffmpeg decodes only the requested window.
func exportArgs(tl Timeline, dst string) []string {
	return []string{
		"-y",
		"-ss", formatFFmpegTime(tl.Offset()),
		"-i", tl.Source(),
		"-t", formatFFmpegTime(tl.Duration()),
		"-c:a", "pcm_s16le",
		dst,
	}
}

// parseDurationFromFFmpegOutput extracts the duration from ffmpeg output.
func parseDurationFromFFmpegOutput(output string) (time.Duration, error) {
	// Pattern: out_time_us=10005333, repeated per progress report.
	if all := outTimeRe.FindAllStringSubmatch(output, -1); len(all) > 0 {
		us, err := strconv.ParseInt(all[len(all)-1][1], 10, 64)
		if err == nil && us > 0 {
			return time.Duration(us) * time.Microsecond, nil
		}
	}

	// Pattern: Duration: 00:05:23.45
	if matches := durationRe.FindStringSubmatch(output); matches != nil {
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
	}

	// Fallback pattern: time=00:05:23.45 (from progress output).
	// The last one is the final position.
	allMatches := progressRe.FindAllStringSubmatch(output, -1)
	if len(allMatches) > 0 {
		matches := allMatches[len(allMatches)-1]
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
	}

	return 0, fmt.Errorf("could not parse duration from ffmpeg output")
}

// parseTimeComponents converts HH:MM:SS.ms strings to Duration.
func parseTimeComponents(hours, minutes, seconds, fractional string) (time.Duration, error) {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	// Normalize fractional part to milliseconds.
	// Input may be 1-6+ digits (e.g., ".4", ".45", ".456", ".456789").
	frac, _ := strconv.Atoi(fractional)
	ms := frac
	switch n := len(fractional); {
	case n == 1:
		ms = frac * 100
	case n == 2:
		ms = frac * 10
	case n > 3:
		for i := n; i > 3; i-- {
			ms /= 10
		}
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// formatFFmpegTime formats a duration as HH:MM:SS.mmm for ffmpeg arguments.
func formatFFmpegTime(d time.Duration) string {
	d = d.Round(time.Millisecond)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// lastLines returns the last n lines of s.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
