package viewstate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const stateRel = ".poolnav/view-state.json"

func TestCoversPath(t *testing.T) {
	tests := []struct {
		line    string
		matches bool
	}{
		{".poolnav", true},
		{".poolnav/", true},
		{".poolnav/*", true},
		{".poolnav/**", true},
		{"/.poolnav/", true},
		{".poolnav/view-state.json", true},
		{"/.poolnav/view-state.json", true},
		{"view-state.json", true},

		{"", false},
		{"/", false},
		{"!.poolnav/", false},
		{".poolnav2", false},
		{"poolnav/", false},
		{".poolnav/config.yaml", false},
		{"/view-state.json", false},
		{"node_modules/", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := coversPath(tt.line, stateRel); got != tt.matches {
				t.Errorf("coversPath(%q) = %v, want %v", tt.line, got, tt.matches)
			}
		})
	}
}

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"empty file", "", false},
		{"directory", "node_modules/\n.poolnav/\n*.log\n", true},
		{"exact file", ".poolnav/view-state.json\n", true},
		{"commented out", "# .poolnav/\n", false},
		{"other entries", ".poolnav/config.yaml\nbin/\n", false},
		{"with whitespace", "  .poolnav/  \n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".gitignore")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}
			got, err := isIgnored(path, stateRel)
			if err != nil {
				t.Fatalf("isIgnored() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("isIgnored() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsIgnoredFileNotExists(t *testing.T) {
	_, err := isIgnored(filepath.Join(t.TempDir(), ".gitignore"), stateRel)
	if !os.IsNotExist(err) {
		t.Errorf("expected IsNotExist error, got %v", err)
	}
}

func TestEnsureIgnored(t *testing.T) {
	t.Run("creates gitignore", func(t *testing.T) {
		dir := t.TempDir()
		if err := EnsureIgnored(dir, filepath.Join(dir, stateRel)); err != nil {
			t.Fatalf("EnsureIgnored() error = %v", err)
		}
		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatalf("failed to read .gitignore: %v", err)
		}
		if !strings.HasPrefix(string(content), gitignoreComment) {
			t.Errorf("expected the comment first, got:\n%s", content)
		}
		if !strings.Contains(string(content), stateRel+"\n") {
			t.Errorf("expected %s in .gitignore, got:\n%s", stateRel, content)
		}
	})

	t.Run("appends without trailing newline", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitignore")
		if err := os.WriteFile(path, []byte("bin/"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := EnsureIgnored(dir, filepath.Join(dir, stateRel)); err != nil {
			t.Fatalf("EnsureIgnored() error = %v", err)
		}
		content, _ := os.ReadFile(path)
		want := "bin/\n\n" + gitignoreComment + "\n" + stateRel + "\n"
		if string(content) != want {
			t.Errorf("got:\n%q\nwant:\n%q", content, want)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		state := filepath.Join(dir, stateRel)
		for i := 0; i < 3; i++ {
			if err := EnsureIgnored(dir, state); err != nil {
				t.Fatalf("EnsureIgnored() error = %v", err)
			}
		}
		content, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if n := strings.Count(string(content), stateRel); n != 1 {
			t.Errorf("expected one entry, got %d:\n%s", n, content)
		}
	})

	t.Run("respects an existing directory entry", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".gitignore")
		if err := os.WriteFile(path, []byte(".poolnav\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := EnsureIgnored(dir, filepath.Join(dir, stateRel)); err != nil {
			t.Fatalf("EnsureIgnored() error = %v", err)
		}
		content, _ := os.ReadFile(path)
		if string(content) != ".poolnav\n" {
			t.Errorf("file should be untouched, got:\n%s", content)
		}
	})

	t.Run("ignores paths outside the project", func(t *testing.T) {
		dir := t.TempDir()
		other := filepath.Join(t.TempDir(), "view-state.json")
		if err := EnsureIgnored(dir, other); err != nil {
			t.Fatalf("EnsureIgnored() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".gitignore")); !os.IsNotExist(err) {
			t.Error("no .gitignore should be written")
		}
	})
}
