package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func makeZip(t *testing.T, names ...string) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte("content")); err != nil {
			t.Fatalf("write %s to zip: %v", name, err)
		}
	}
	w.Close()
	zipFile.Close()
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		"docs/readme.txt",
		"docs/guide.txt",
		"src/main.go",
		"config.yml",
	)

	cases := []struct {
		name   string
		prefix string
		want   int
	}{
		{"docs prefix", "docs/", 2},
		{"src prefix", "src/", 1},
		{"no match", "nonexistent/", 0},
		{"empty prefix visits all", "", 4},
		{"prefix is case sensitive", "Docs/", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, c.prefix, func(archive string, file *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Errorf("Walk() error = %v", err)
			}
			if len(visited) != c.want {
				t.Errorf("visited %d files, want %d: %v", len(visited), c.want, visited)
			}
		})
	}
}

func TestWalk_SkipsDirectories(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)

	dirHeader := &zip.FileHeader{Name: "mydir/"}
	dirHeader.SetMode(os.ModeDir | 0755)
	if _, err := w.CreateHeader(dirHeader); err != nil {
		t.Fatalf("create directory entry: %v", err)
	}
	fw, err := w.Create("mydir/file.txt")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	fw.Write([]byte("content"))
	w.Close()
	zipFile.Close()

	var visited []string
	err = Walk(zipPath, "mydir/", func(archive string, file *zip.File) error {
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
	if len(visited) != 1 || visited[0] != "mydir/file.txt" {
		t.Errorf("visited %v, want only mydir/file.txt", visited)
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	zipPath := makeZip(t, "files/a.txt", "files/b.txt", "files/c.txt")

	var visited int
	stopErr := errors.New("stop walking")
	err := Walk(zipPath, "files/", func(archive string, file *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if err != stopErr {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2", visited)
	}
}

func TestWalk_RejectsUnsafePaths(t *testing.T) {
	zipPath := makeZip(t, "../evil.txt")

	err := Walk(zipPath, "", func(archive string, file *zip.File) error {
		t.Errorf("walkFn must not be called for %s", file.Name)
		return nil
	})
	if err == nil {
		t.Error("expected error for path traversal entry")
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		err := Walk("/nonexistent/file.zip", "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("create invalid zip: %v", err)
		}
		err := Walk(invalidZip, "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("expected error for invalid zip file")
		}
	})
}

func TestIsSafePath(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"docs/readme.txt", true},
		{"file.txt", true},
		{"/etc/passwd", false},
		{`\windows\path`, false},
		{"../escape.txt", false},
		{"a/../../escape.txt", false},
		{"a/..b/fine.txt", true},
	}
	for _, c := range cases {
		if got := isSafePath(c.name); got != c.want {
			t.Errorf("isSafePath(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
