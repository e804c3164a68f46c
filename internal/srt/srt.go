// Package srt reads SubRip subtitle files into timed entries.
package srt

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-srtsplit/internal/format"
)

// speakerDelimiter separates a diarization label from the spoken text,
// as in "SPEAKER_00|Hello there".
const speakerDelimiter = "|"

// utf8BOM is stripped from the first line when present.
const utf8BOM = "\ufeff"

// Entry is one subtitle block. Entries are immutable once parsed.
type Entry struct {
	Index int           // Sequence number as written in the file.
	Start time.Duration // Start offset in the recording.
	End   time.Duration // End offset in the recording.
	Text  string        // Text lines joined with "\n".
}

// Speaker returns the diarization label: the text before the first '|',
// or the whole text when no delimiter is present.
func (e Entry) Speaker() string {
	label, _, _ := strings.Cut(e.Text, speakerDelimiter)
	return label
}

// String returns a compact representation for logging.
func (e Entry) String() string {
	return fmt.Sprintf("#%d %s-%s", e.Index, format.Timestamp(e.Start), format.Timestamp(e.End))
}

// timeLineRe matches "00:00:01,000 --> 00:00:02,500", tolerating '.' as the
// millisecond separator, short fractions, and trailing position data.
var timeLineRe = regexp.MustCompile(
	`^\s*(\d+):(\d{1,2}):(\d{1,2})[,.](\d{1,3})\s*-->\s*(\d+):(\d{1,2}):(\d{1,2})[,.](\d{1,3})`)

// Option configures how subtitle files are read.
type Option func(*reader)

type reader struct {
	logger *slog.Logger
}

// WithLogger sets the logger that reports skipped blocks.
func WithLogger(l *slog.Logger) Option {
	return func(r *reader) { r.logger = l }
}

func newReader(opts []Option) reader {
	r := reader{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Parse reads every entry from r.
func Parse(r io.Reader, opts ...Option) ([]Entry, error) {
	var entries []Entry
	for e, err := range newReader(opts).scan(r) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Entries returns a lazy sequence over the entries of the file at path.
// The file is opened on every iteration, so the sequence can be ranged over
// any number of times. Iteration stops after the first error.
func Entries(path string, opts ...Option) iter.Seq2[Entry, error] {
	rd := newReader(opts)
	return func(yield func(Entry, error) bool) {
		f, err := os.Open(path) // #nosec G304 -- subtitle path is chosen by the user
		if err != nil {
			yield(Entry{}, fmt.Errorf("%w: %v", ErrOpen, err))
			return
		}
		defer func() { _ = f.Close() }()

		for e, err := range rd.scan(f) {
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// scan yields entries from r as blocks are completed. A block that cannot
// be parsed is logged and skipped; ErrMalformed is yielded only when the
// input has blocks and none of them parses.
func (rd reader) scan(r io.Reader) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNum := 0

		next := func() (string, bool) {
			if !sc.Scan() {
				return "", false
			}
			lineNum++
			line := strings.TrimRight(sc.Text(), "\r")
			if lineNum == 1 {
				line = strings.TrimPrefix(line, utf8BOM)
			}
			return line, true
		}

		var (
			prevIndex int
			parsed    int
			firstErr  error
		)
		for {
			// First line of the block, skipping extra blank lines.
			line, ok := next()
			for ok && strings.TrimSpace(line) == "" {
				line, ok = next()
			}
			if !ok {
				break
			}
			first := lineNum
			block := []string{line}
			for {
				line, ok = next()
				if !ok || strings.TrimSpace(line) == "" {
					break
				}
				block = append(block, line)
			}

			e, err := parseBlock(block, first, prevIndex)
			if err != nil {
				rd.logger.Warn("skipping subtitle block", "line", first, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			prevIndex = e.Index
			parsed++
			if !yield(e, nil) {
				return
			}
		}

		if err := sc.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("%w: %v", ErrRead, err))
			return
		}
		if parsed == 0 && firstErr != nil {
			yield(Entry{}, firstErr)
		}
	}
}

// parseBlock turns the non-blank lines of one block into an entry. The
// sequence line is optional: a block that starts with its time line takes
// the number following prevIndex. lineNum is the file line of lines[0].
func parseBlock(lines []string, lineNum, prevIndex int) (Entry, error) {
	index := prevIndex + 1
	if !strings.Contains(lines[0], "-->") {
		n, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return Entry{}, fmt.Errorf("%w: line %d: invalid sequence number %q", ErrMalformed, lineNum, lines[0])
		}
		if len(lines) == 1 {
			return Entry{}, fmt.Errorf("%w: line %d: missing time line after %d", ErrMalformed, lineNum, n)
		}
		index = n
		lines = lines[1:]
		lineNum++
	}

	start, end, err := parseTimeLine(lines[0])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
	}
	return Entry{Index: index, Start: start, End: end, Text: strings.Join(lines[1:], "\n")}, nil
}

// parseTimeLine extracts start and end offsets from a time line.
func parseTimeLine(line string) (time.Duration, time.Duration, error) {
	m := timeLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time line %q", line)
	}
	start := timestamp(m[1], m[2], m[3], m[4])
	end := timestamp(m[5], m[6], m[7], m[8])
	return start, end, nil
}

// timestamp converts regexp captures to a duration. Fractions shorter than
// three digits are scaled, so ",5" means 500ms.
func timestamp(hours, minutes, seconds, millis string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)
	for i := len(millis); i < 3; i++ {
		ms *= 10
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}
