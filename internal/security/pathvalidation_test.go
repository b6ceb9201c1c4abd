package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	dir := t.TempDir()

	if err := ValidatePathWithinDirectory(filepath.Join(dir, "overlay.gif"), dir); err != nil {
		t.Errorf("direct child rejected: %v", err)
	}
	if err := ValidatePathWithinDirectory(filepath.Join(dir, "run", "hist.png"), dir); err != nil {
		t.Errorf("nested child rejected: %v", err)
	}
	if err := ValidatePathWithinDirectory(filepath.Join(dir, "..", "escape.gif"), dir); err == nil {
		t.Error("parent traversal accepted")
	}
	if err := ValidatePathWithinDirectory("/etc/passwd", dir); err == nil {
		t.Error("absolute path outside dir accepted")
	}
}

func TestValidatePathWithinDirectorySymlinkEscape(t *testing.T) {
	safe := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(safe, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := ValidatePathWithinDirectory(filepath.Join(link, "out.gif"), safe); err == nil {
		t.Error("symlink escape accepted")
	}
}

func TestValidateExportPath(t *testing.T) {
	if err := ValidateExportPath(filepath.Join(os.TempDir(), "overlay.gif")); err != nil {
		t.Errorf("temp dir export rejected: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateExportPath(filepath.Join(cwd, "hist.png")); err != nil {
		t.Errorf("working dir export rejected: %v", err)
	}
	if err := ValidateExportPath("/no/such/root/file.gif"); err == nil {
		t.Error("export outside allowed roots accepted")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "unknown"},
		{"run-42.gif", "run-42.gif"},
		{"a b/c", "a_b_c"},
		{"../../etc", "etc"},
		{"___", "unknown"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
