package version

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{name: "clean state", info: Info{GitVersion: "v1.0.0", GitTreeState: "clean"}, expected: "v1.0.0"},
		{name: "dirty state", info: Info{GitVersion: "v1.0.0", GitTreeState: "dirty"}, expected: "v1.0.0-dirty"},
		{name: "empty state", info: Info{GitVersion: "v1.0.0"}, expected: "v1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.expected {
				t.Errorf("Info.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInfo_JSON(t *testing.T) {
	info := Info{
		GitVersion: "v1.0.0",
		GitCommit:  "abc123",
		GoVersion:  "go1.24.0",
		Platform:   "linux/amd64",
	}

	compact, err := info.JSON(false)
	if err != nil {
		t.Fatalf("JSON(false) error = %v", err)
	}
	var parsed Info
	if err := json.Unmarshal([]byte(compact), &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if parsed != info {
		t.Errorf("round trip = %+v, want %+v", parsed, info)
	}

	indented, err := info.JSON(true)
	if err != nil {
		t.Fatalf("JSON(true) error = %v", err)
	}
	// 格式化输出应包含换行
	if !strings.Contains(indented, "\n") {
		t.Error("JSON(true) should return formatted JSON with newlines")
	}
}

func TestInfo_Text(t *testing.T) {
	info := Info{
		GitVersion:   "v1.0.0",
		GitCommit:    "abc123",
		GitTreeState: "clean",
		BuildDate:    "2024-01-01T00:00:00Z",
		GoVersion:    "go1.24.0",
		Platform:     "linux/amd64",
	}

	text := info.Text()
	for _, field := range []string{
		"gitVersion:", "v1.0.0",
		"gitCommit:", "abc123",
		"gitTreeState:", "clean",
		"buildDate:", "2024-01-01T00:00:00Z",
		"goVersion:", "go1.24.0",
		"platform:", "linux/amd64",
	} {
		if !strings.Contains(text, field) {
			t.Errorf("Text() missing field %q", field)
		}
	}

	// 空字段不应该出现
	if strings.Contains((Info{GitVersion: "v1.0.0"}).Text(), "gitTreeState:") {
		t.Error("Text() should not contain empty gitTreeState")
	}
}

func TestInfo_UserAgent(t *testing.T) {
	info := Info{GitVersion: "v1.2.0", Platform: "linux/amd64", GoVersion: "go1.24.0"}
	if got, want := info.UserAgent(), "apikit/v1.2.0 (linux/amd64; go1.24.0)"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
	if got := (Info{}).UserAgent(); !strings.HasPrefix(got, "apikit/dev ") {
		t.Errorf("UserAgent() without version = %q", got)
	}
}

func TestGet(t *testing.T) {
	info := Get()

	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if info.GitVersion == "" {
		t.Error("GitVersion should never be empty")
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform should contain '/', got %v", info.Platform)
	}
	if !strings.HasPrefix(UserAgent(), Product+"/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
