package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("G28\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
}

func TestDirListsPrintableFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.gcode", "a.GCO", "notes.txt", ".hidden.gcode")
	if err := os.Mkdir(filepath.Join(root, "sub.gcode"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	d := NewDir(root)
	files, err := d.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0] != "a.GCO" || files[1] != "b.gcode" {
		t.Fatalf("unexpected files %v", files)
	}
	sizes, err := d.Sizes()
	if err != nil || sizes["b.gcode"] != 4 {
		t.Fatalf("unexpected sizes %v %v", sizes, err)
	}
}

func TestDirNotMounted(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "missing"))
	if d.Mounted() {
		t.Fatalf("missing dir reported mounted")
	}
	if _, err := d.List(); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
}

func TestFind(t *testing.T) {
	files := []string{"benchy.gcode", "calibration-cube.gcode", "vase.gcode"}
	cases := map[string]string{
		"vase":        "vase.gcode",
		"BENCHY":      "benchy.gcode",
		"cal":         "calibration-cube.gcode",
		"calcube":     "calibration-cube.gcode",
		"vase.gcode ": "vase.gcode",
	}
	for q, want := range cases {
		got, ok := Find(files, q)
		if !ok || got != want {
			t.Fatalf("Find(%q) = %q, %v; want %q", q, got, ok, want)
		}
	}
	if _, ok := Find(files, "zzz"); ok {
		t.Fatalf("unexpected match")
	}
	if _, ok := Find(nil, "vase"); ok {
		t.Fatalf("empty list matched")
	}
}
