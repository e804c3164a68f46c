package cli

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
	"github.com/alnah/go-srtsplit/internal/frontend"
	"github.com/alnah/go-srtsplit/internal/segment"
)

// ---------------------------------------------------------------------------
// resolveSettings - precedence
// ---------------------------------------------------------------------------

func TestResolveSettings_Precedence(t *testing.T) {
	t.Parallel()

	flags := &SegmentOptions{
		padding:  paddingFlag{d: 100 * time.Millisecond},
		workers:  8,
		onError:  policyFlag{policy: segment.PolicySkipEntry},
		logLevel: "debug",
	}
	jobFile := frontend.JobFile{Padding: "200ms", Workers: 4, OnError: "skip-file"}
	cfg := config.Config{Padding: "300", Workers: "2", OnError: "abort", LogLevel: "warn", FFmpegPath: "/opt/ffmpeg"}

	tests := []struct {
		name    string
		changed []string
		jobFile frontend.JobFile
		cfg     config.Config
		want    Settings
	}{
		{
			name: "defaults",
			want: Settings{workers: 1, policy: segment.PolicyAbort, logLevel: slog.LevelInfo},
		},
		{
			name: "config",
			cfg:  cfg,
			want: Settings{ffmpegPath: "/opt/ffmpeg", padding: 300 * time.Millisecond, workers: 2, policy: segment.PolicyAbort, logLevel: slog.LevelWarn},
		},
		{
			name:    "job file over config",
			jobFile: jobFile,
			cfg:     cfg,
			want:    Settings{ffmpegPath: "/opt/ffmpeg", padding: 200 * time.Millisecond, workers: 4, policy: segment.PolicySkipFile, logLevel: slog.LevelWarn},
		},
		{
			name:    "flags over job file",
			changed: []string{flagPadding, flagWorkers, flagOnError, flagLogLevel},
			jobFile: jobFile,
			cfg:     cfg,
			want:    Settings{ffmpegPath: "/opt/ffmpeg", padding: 100 * time.Millisecond, workers: 8, policy: segment.PolicySkipEntry, logLevel: slog.LevelDebug},
		},
		{
			name:    "unchanged flags keep lower sources",
			changed: []string{flagWorkers},
			jobFile: jobFile,
			cfg:     cfg,
			want:    Settings{ffmpegPath: "/opt/ffmpeg", padding: 200 * time.Millisecond, workers: 8, policy: segment.PolicySkipFile, logLevel: slog.LevelWarn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveSettings(flags, changedFlags(tt.changed...), tt.jobFile, tt.cfg)
			if err != nil {
				t.Fatalf("ResolveSettings() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveSettings_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    SegmentOptions
		changed []string
		jobFile frontend.JobFile
		cfg     config.Config
		wantErr error
	}{
		{
			name:    "zero workers flag",
			opts:    SegmentOptions{workers: 0},
			changed: []string{flagWorkers},
			wantErr: ErrInvalidSetting,
		},
		{
			name:    "bad log level flag",
			opts:    SegmentOptions{logLevel: "loud"},
			changed: []string{flagLogLevel},
			wantErr: ErrInvalidSetting,
		},
		{
			name:    "bad job file policy",
			jobFile: frontend.JobFile{OnError: "retry"},
			wantErr: segment.ErrInvalidPolicy,
		},
		{
			name:    "bad configured padding",
			cfg:     config.Config{Padding: "soon"},
			wantErr: config.ErrInvalidValue,
		},
		{
			name:    "bad configured policy",
			cfg:     config.Config{OnError: "retry"},
			wantErr: segment.ErrInvalidPolicy,
		},
		{
			name:    "bad configured log level",
			cfg:     config.Config{LogLevel: "loud"},
			wantErr: config.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ResolveSettings(&tt.opts, changedFlags(tt.changed...), tt.jobFile, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResolveSettings() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveSettings_ConfigErrorNamesEnv(t *testing.T) {
	t.Parallel()

	_, err := ResolveSettings(&SegmentOptions{}, changedFlags(), frontend.JobFile{}, config.Config{Workers: "-3"})
	if err == nil || !strings.Contains(err.Error(), config.EnvWorkers) {
		t.Errorf("ResolveSettings() error = %v, want mention of %s", err, config.EnvWorkers)
	}
}

// ---------------------------------------------------------------------------
// Custom flag values
// ---------------------------------------------------------------------------

func TestPolicyFlag(t *testing.T) {
	t.Parallel()

	var f policyFlag
	if err := f.Set("SKIP-FILE"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if f.policy != segment.PolicySkipFile || f.String() != "skip-file" {
		t.Errorf("policyFlag = %v (%q), want skip-file", f.policy, f.String())
	}
	if err := f.Set("retry"); !errors.Is(err, segment.ErrInvalidPolicy) {
		t.Errorf("Set(retry) error = %v, want ErrInvalidPolicy", err)
	}
	if f.policy != segment.PolicySkipFile {
		t.Errorf("failed Set() changed the value to %v", f.policy)
	}
	if f.Type() != "policy" {
		t.Errorf("Type() = %q, want policy", f.Type())
	}
}

func TestPaddingFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "500ms", want: 500 * time.Millisecond},
		{in: "250", want: 250 * time.Millisecond},
		{in: "1.5s", want: 1500 * time.Millisecond},
		{in: "-1s", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			var f paddingFlag
			err := f.Set(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Set(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q) unexpected error: %v", tt.in, err)
			}
			if f.d != tt.want {
				t.Errorf("Set(%q) = %v, want %v", tt.in, f.d, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// printSummary
// ---------------------------------------------------------------------------

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	job := batch.Job{InputDir: "/in", SubtitlePath: "/in/talk.srt"}
	report := batch.Report{Files: []batch.FileReport{
		{Source: "/in/a.wav", Segments: []segment.Result{{Number: 1, Bytes: 2048}, {Number: 2, Bytes: 1024}}},
		{Source: "/in/b.mkv", Skipped: true, Err: errors.New("transcode failed")},
	}}

	var buf strings.Builder
	printSummary(&buf, job, report, 75*time.Second)
	got := buf.String()

	for _, want := range []string{
		"Done: 2 clips (3 KB) from 2 files in 01:15",
		"Skipped: 1 files",
		"/in/b.mkv: transcode failed",
		"Output: /in/output",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("printSummary() = %q, want containing %q", got, want)
		}
	}
}
