package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-contentbody/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestDiscoverFiles - Single files and directory walks
// ---------------------------------------------------------------------------

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		input := filepath.Join(dir, "post.md")
		writeFile(t, input, "# hi")

		files, err := discoverFiles(input, "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		want := FileToRender{InputPath: input, OutputPath: filepath.Join(dir, "post.rendered.html"), Kind: fileutil.SourceMarkdown}
		if len(files) != 1 || files[0] != want {
			t.Errorf("discoverFiles() = %+v, want [%+v]", files, want)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		input := filepath.Join(t.TempDir(), "post.txt")
		writeFile(t, input, "x")

		_, err := discoverFiles(input, "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := discoverFiles(filepath.Join(t.TempDir(), "nope.html"), "")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.html"), "<p>a</p>")
		writeFile(t, filepath.Join(dir, "a.rendered.html"), "<p>old</p>")
		writeFile(t, filepath.Join(dir, "sub", "b.markdown"), "b")
		writeFile(t, filepath.Join(dir, "sub", "c.css"), "p{}")

		out := filepath.Join(t.TempDir(), "out")
		files, err := discoverFiles(dir, out)
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		want := []FileToRender{
			{InputPath: filepath.Join(dir, "a.html"), OutputPath: filepath.Join(out, "a.rendered.html"), Kind: fileutil.SourceHTML},
			{InputPath: filepath.Join(dir, "sub", "b.markdown"), OutputPath: filepath.Join(out, "sub", "b.rendered.html"), Kind: fileutil.SourceMarkdown},
		}
		if len(files) != len(want) {
			t.Fatalf("discoverFiles() = %+v, want %+v", files, want)
		}
		for i := range want {
			if files[i] != want[i] {
				t.Errorf("files[%d] = %+v, want %+v", i, files[i], want[i])
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveOutputPath - Output layout
// ---------------------------------------------------------------------------

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		input     string
		outputDir string
		baseDir   string
		want      string
	}{
		{"beside input", "docs/post.html", "", "", "docs/post.rendered.html"},
		{"markdown beside input", "docs/post.md", "", "", "docs/post.rendered.html"},
		{"into output dir", "docs/post.html", "out", "", "out/post.rendered.html"},
		{"keeps relative layout", "docs/a/b/post.htm", "out", "docs", "out/a/b/post.rendered.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := resolveOutputPath(filepath.FromSlash(tt.input), filepath.FromSlash(tt.outputDir), filepath.FromSlash(tt.baseDir))
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileToRender_ManifestPath(t *testing.T) {
	t.Parallel()
	f := FileToRender{OutputPath: filepath.Join("out", "post.rendered.html")}
	if got, want := f.ManifestPath(), filepath.Join("out", "post.slots.yaml"); got != want {
		t.Errorf("ManifestPath() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestValidateWorkers - Worker bounds
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n       int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{1, false},
		{8, false},
		{9, true},
	}
	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
	}
}
