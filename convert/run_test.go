package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"rstc/config"
	"rstc/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeSampleDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create source directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(sampleDocJSON), 0644); err != nil {
		t.Fatalf("create sample document: %v", err)
	}
	return path
}

func TestProcess_NonExistentPath(t *testing.T) {
	ctx, env := setupTestEnv(t)

	err := process(ctx, "/nonexistent/path/file.json", t.TempDir(), env.Log)
	if err == nil {
		t.Fatal("expected error for non-existent path, got nil")
	}
	if !strings.Contains(err.Error(), "input source was not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	tmpDir := t.TempDir()
	if err := process(cancelCtx, tmpDir, tmpDir, env.Log); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)

	src := writeSampleDoc(t, t.TempDir(), "doc.json")
	dst := t.TempDir()

	if err := process(ctx, src, dst, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dst, "doc.rst"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(out), "Hello") {
		t.Errorf("output missing rendered body: %q", out)
	}
}

func TestProcess_Directory(t *testing.T) {
	ctx, env := setupTestEnv(t)

	srcDir := t.TempDir()
	writeSampleDoc(t, srcDir, "one.json")
	writeSampleDoc(t, srcDir, filepath.Join("nested", "two.json"))
	dst := t.TempDir()

	if err := process(ctx, srcDir, dst, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	for _, name := range []string{"one.rst", filepath.Join("nested", "two.rst")} {
		if _, err := os.Stat(filepath.Join(dst, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
}

func TestProcess_DirectoryNoDirs(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.NoDirs = true

	srcDir := t.TempDir()
	writeSampleDoc(t, srcDir, filepath.Join("nested", "two.json"))
	dst := t.TempDir()

	if err := process(ctx, srcDir, dst, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "two.rst")); err != nil {
		t.Errorf("expected flattened output: %v", err)
	}
}

func TestProcess_DirectoryWithTail(t *testing.T) {
	ctx, env := setupTestEnv(t)

	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("create directory: %v", err)
	}

	err := process(ctx, filepath.Join(subDir, "nonexistent.json"), tmpDir, env.Log)
	if err == nil {
		t.Fatal("expected error for directory with tail, got nil")
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)

	tmpDir := t.TempDir()
	dst := t.TempDir()

	zipPath := filepath.Join(tmpDir, "docs.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	f, err := w.CreateHeader(&zip.FileHeader{Name: "subdir/doc.json", Method: zip.Store})
	if err != nil {
		t.Fatalf("create file in zip: %v", err)
	}
	if _, err := f.Write([]byte(sampleDocJSON)); err != nil {
		t.Fatalf("write to zip: %v", err)
	}
	w.Close()
	zipFile.Close()

	t.Run("whole archive", func(t *testing.T) {
		if err := process(ctx, zipPath, dst, env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dst, "subdir", "doc.rst")); err != nil {
			t.Errorf("expected output from archive: %v", err)
		}
	})

	t.Run("path inside archive", func(t *testing.T) {
		dst := t.TempDir()
		err := process(ctx, zipPath+string(filepath.Separator)+"subdir", dst, env.Log)
		if err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dst, "subdir", "doc.rst")); err != nil {
			t.Errorf("expected output from archive path: %v", err)
		}
	})
}

func TestProcess_NonDocumentFile(t *testing.T) {
	ctx, env := setupTestEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(path, []byte("not a document"), 0644); err != nil {
		t.Fatalf("create test file: %v", err)
	}

	err := process(ctx, path, tmpDir, env.Log)
	if err == nil {
		t.Fatal("expected error for non-document file, got nil")
	}
	if !strings.Contains(err.Error(), "input was not recognized as pandoc AST document") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcess_EmptyDirectory(t *testing.T) {
	ctx, env := setupTestEnv(t)

	if err := process(ctx, t.TempDir(), t.TempDir(), env.Log); err != nil {
		t.Errorf("process() should handle empty directory, got %v", err)
	}
}

func TestProcessDocument_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dst := t.TempDir()

	run := func() error {
		return processDocument(ctx, bytes.NewReader([]byte(sampleDocJSON)), "doc.json", dst, env.Log)
	}

	if err := run(); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	if err := run(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected overwrite protection, got %v", err)
	}

	env.Overwrite = true
	if err := run(); err != nil {
		t.Errorf("overwrite enabled but conversion failed: %v", err)
	}
}

func TestProcessDocument_BadInput(t *testing.T) {
	ctx, env := setupTestEnv(t)

	err := processDocument(ctx, bytes.NewReader([]byte("not json")), "doc.json", t.TempDir(), env.Log)
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if !strings.Contains(err.Error(), "unable to parse") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcessDocument_CustomTemplate(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Template = ".. note:: generated\n\n{{ .Body }}\n"
	dst := t.TempDir()

	if err := processDocument(ctx, bytes.NewReader([]byte(sampleDocJSON)), "doc.json", dst, env.Log); err != nil {
		t.Fatalf("processDocument() error = %v", err)
	}
	out, err := os.ReadFile(filepath.Join(dst, "doc.rst"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(out), ".. note:: generated") {
		t.Errorf("custom template was not applied: %q", out)
	}
}
