package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	if err := os.MkdirAll(safeDir, 0o755); err != nil {
		t.Fatalf("mkdir safe: %v", err)
	}
	if err := os.MkdirAll(unsafeDir, 0o755); err != nil {
		t.Fatalf("mkdir unsafe: %v", err)
	}
	unsafeFile := filepath.Join(unsafeDir, "secret.txt")
	if err := os.WriteFile(unsafeFile, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write unsafe file: %v", err)
	}

	// A symlink inside the safe directory pointing outside it.
	symlinkPath := filepath.Join(safeDir, "escape")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{"path within directory", filepath.Join(tmpDir, "file.txt"), tmpDir, false},
		{"nested path", filepath.Join(tmpDir, "subdir", "file.txt"), tmpDir, false},
		{"dot-dot traversal", filepath.Join(tmpDir, "..", "file.txt"), tmpDir, true},
		{"relative traversal", "../../../etc/passwd", tmpDir, true},
		{"absolute path outside", "/etc/passwd", tmpDir, true},
		{"write through symlinked dir", filepath.Join(symlinkPath, "secret.txt"), safeDir, true},
		{"symlink itself", symlinkPath, safeDir, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory(%q, %q) error = %v, wantError %v",
					tt.filePath, tt.safeDir, err, tt.wantError)
			}
		})
	}
}

func TestValidateExportPath(t *testing.T) {
	if err := ValidateExportPath(filepath.Join(os.TempDir(), "report.html")); err != nil {
		t.Errorf("temp dir export rejected: %v", err)
	}
	if err := ValidateExportPath("report.html"); err != nil {
		t.Errorf("working dir export rejected: %v", err)
	}
	if err := ValidateExportPath("/etc/passwd"); err == nil {
		t.Error("expected rejection of absolute path outside allowed dirs")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unknown"},
		{"run-2026-01.html", "run-2026-01.html"},
		{"a b/c", "a_b_c"},
		{"../../etc", "etc"},
		{"///", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
