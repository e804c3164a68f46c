package cli

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/alnah/go-srtsplit/internal/audio"
	"github.com/alnah/go-srtsplit/internal/batch"
	"github.com/alnah/go-srtsplit/internal/config"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(ctx context.Context, configured string) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)

	mu           sync.Mutex
	resolveCalls []string // configured paths passed
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context, configured string) (string, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, configured)
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, configured)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockFFmpegResolver) ResolveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.resolveCalls)
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock PipelineFactory + Transcoder + Codec
// ---------------------------------------------------------------------------

type mockPipelineFactory struct {
	NewTranscoderErr error
	NewCodecErr      error

	transcoder *mockTranscoder
	codec      *mockCodec
}

func newMockPipelineFactory() *mockPipelineFactory {
	return &mockPipelineFactory{
		transcoder: &mockTranscoder{},
		codec:      &mockCodec{duration: 10 * time.Second},
	}
}

func (m *mockPipelineFactory) NewTranscoder(ffmpegPath string, logger *slog.Logger) (batch.Transcoder, error) {
	if m.NewTranscoderErr != nil {
		return nil, m.NewTranscoderErr
	}
	return m.transcoder, nil
}

func (m *mockPipelineFactory) NewCodec(ffmpegPath string, logger *slog.Logger) (Codec, error) {
	if m.NewCodecErr != nil {
		return nil, m.NewCodecErr
	}
	return m.codec, nil
}

// mockTranscoder writes an empty dst for every source.
type mockTranscoder struct {
	ToWAVFunc func(ctx context.Context, src, dst string) error

	mu    sync.Mutex
	calls []string // sources converted
}

func (m *mockTranscoder) ToWAV(ctx context.Context, src, dst string) error {
	m.mu.Lock()
	m.calls = append(m.calls, src)
	m.mu.Unlock()

	if m.ToWAVFunc != nil {
		return m.ToWAVFunc(ctx, src, dst)
	}
	return os.WriteFile(dst, nil, 0o644)
}

func (m *mockTranscoder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// mockCodec loads every file as a fixed-length timeline and writes a small
// payload for every export.
type mockCodec struct {
	duration time.Duration

	mu      sync.Mutex
	exports []audio.Timeline
}

func (m *mockCodec) Load(ctx context.Context, path string) (audio.Timeline, error) {
	return audio.NewTimeline(path, m.duration), nil
}

func (m *mockCodec) Export(ctx context.Context, tl audio.Timeline, dst string) error {
	m.mu.Lock()
	m.exports = append(m.exports, tl)
	m.mu.Unlock()
	return os.WriteFile(dst, []byte("RIFF"), 0o644)
}

func (m *mockCodec) Exports() []audio.Timeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.exports)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver   = (*mockFFmpegResolver)(nil)
	_ ConfigLoader     = (*mockConfigLoader)(nil)
	_ PipelineFactory  = (*mockPipelineFactory)(nil)
	_ batch.Transcoder = (*mockTranscoder)(nil)
	_ Codec            = (*mockCodec)(nil)
)
