package ffmpeg

// Notes:
// - White-box tests: mocks implement the unexported fileStatter/envProvider.
// - No test depends on a real ffmpeg installation.

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockFileStatter struct {
	existing map[string]bool
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.existing[name] {
		return mockFileInfo{name: name}, nil
	}
	return nil, os.ErrNotExist
}

type mockEnvProvider struct {
	vars     map[string]string
	lookPath func(file string) (string, error)
}

func (m *mockEnvProvider) Getenv(key string) string {
	return m.vars[key]
}

func (m *mockEnvProvider) LookPath(file string) (string, error) {
	if m.lookPath != nil {
		return m.lookPath(file)
	}
	return "", errors.New("not in PATH")
}

type mockFileInfo struct {
	name string
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return 0 }
func (m mockFileInfo) Mode() os.FileMode  { return 0755 }
func (m mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m mockFileInfo) IsDir() bool        { return false }
func (m mockFileInfo) Sys() any           { return nil }

// ---------------------------------------------------------------------------
// Resolver.Resolve - precedence
// ---------------------------------------------------------------------------

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	systemPath := func(file string) (string, error) {
		if file == "ffmpeg" {
			return "/usr/bin/ffmpeg", nil
		}
		return "", errors.New("not found")
	}

	tests := []struct {
		name       string
		configured string
		vars       map[string]string
		existing   map[string]bool
		lookPath   func(string) (string, error)
		want       string
		wantErr    bool
	}{
		{
			name:       "configured path wins over everything",
			configured: "/opt/ffmpeg",
			vars:       map[string]string{"FFMPEG_PATH": "/env/ffmpeg"},
			existing:   map[string]bool{"/opt/ffmpeg": true, "/env/ffmpeg": true},
			lookPath:   systemPath,
			want:       "/opt/ffmpeg",
		},
		{
			name:       "configured path missing is an error",
			configured: "/opt/missing",
			lookPath:   systemPath,
			wantErr:    true,
		},
		{
			name:     "FFMPEG_PATH set and exists",
			vars:     map[string]string{"FFMPEG_PATH": "/env/ffmpeg"},
			existing: map[string]bool{"/env/ffmpeg": true},
			lookPath: systemPath,
			want:     "/env/ffmpeg",
		},
		{
			name:     "FFMPEG_PATH set but missing does not fall back",
			vars:     map[string]string{"FFMPEG_PATH": "/env/missing"},
			lookPath: systemPath,
			wantErr:  true,
		},
		{
			name:     "system PATH",
			lookPath: systemPath,
			want:     "/usr/bin/ffmpeg",
		},
		{
			name:    "nothing found",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolver := NewResolver(
				WithConfiguredPath(tt.configured),
				WithFileStatter(&mockFileStatter{existing: tt.existing}),
				WithEnvProvider(&mockEnvProvider{vars: tt.vars, lookPath: tt.lookPath}),
			)

			got, err := resolver.Resolve(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Resolve() = %q, %v; want ErrNotFound", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverInstallInstructions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want string
	}{
		{goos: "darwin", want: "brew install ffmpeg"},
		{goos: "linux", want: "sudo apt install ffmpeg"},
		{goos: "windows", want: "winget install ffmpeg"},
		{goos: "plan9", want: "https://ffmpeg.org/download.html"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			resolver := NewResolver(
				WithPlatform(tt.goos),
				WithFileStatter(&mockFileStatter{}),
				WithEnvProvider(&mockEnvProvider{}),
			)
			_, err := resolver.Resolve(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Resolve() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// VersionChecker - FFmpeg version parsing
// ---------------------------------------------------------------------------

func TestVersionChecker_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		output      string
		runErr      error
		wantOK      bool
		wantWarning string
	}{
		{name: "version 6", output: "ffmpeg version 6.1.1 Copyright (c) 2000-2023", wantOK: true},
		{name: "minimum version 4", output: "ffmpeg version 4.4.1 Copyright", wantOK: true},
		{name: "git build prefix", output: "ffmpeg version n7.0-12-gabc Copyright", wantOK: true},
		{
			name:        "old version warns",
			output:      "ffmpeg version 3.4.8 Copyright",
			wantOK:      true,
			wantWarning: "Warning: ffmpeg version 3 detected, version 4+ recommended",
		},
		{name: "unparseable", output: "something unexpected", wantOK: false},
		{name: "empty output", output: "", wantOK: false},
		{name: "command failed", output: "", runErr: errors.New("exec failed"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr strings.Builder
			executor := NewExecutor(
				WithRunOutput(func(ctx context.Context, path string, args []string) (string, error) {
					return tt.output, tt.runErr
				}),
			)
			checker := NewVersionChecker(WithVersionExecutor(executor), WithVersionStderr(&stderr))

			got := checker.Check(context.Background(), "/usr/bin/ffmpeg")
			if got != tt.wantOK {
				t.Errorf("Check() = %v, want %v", got, tt.wantOK)
			}
			if tt.wantWarning == "" && stderr.Len() > 0 {
				t.Errorf("Check() warning = %q, want none", stderr.String())
			}
			if tt.wantWarning != "" && !strings.Contains(stderr.String(), tt.wantWarning) {
				t.Errorf("Check() warning = %q, want containing %q", stderr.String(), tt.wantWarning)
			}
		})
	}
}
