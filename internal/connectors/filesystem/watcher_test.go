package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	connector := New("/tmp/notes")
	require.NotNil(t, connector)
	assert.Equal(t, "/tmp/notes", connector.Root())
	assert.Equal(t, DefaultDebounce, connector.debounce)

	connector = New("/tmp/notes", WithDebounce(10*time.Millisecond))
	assert.Equal(t, 10*time.Millisecond, connector.debounce)
}

func TestConnector_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "# B")
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "c.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "scan.png"), "png")
	writeFile(t, filepath.Join(dir, "notes.docx"), "docx")
	writeFile(t, filepath.Join(dir, ".hidden.md"), "secret")
	writeFile(t, filepath.Join(dir, ".git", "README.md"), "git")

	paths, err := New(dir).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "sub", "c.pdf"),
	}, paths)
}

func TestConnector_Scan_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}

func TestConnector_Watch(t *testing.T) {
	t.Run("emits created files once", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir, WithDebounce(150*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx)
		require.NoError(t, err)

		target := filepath.Join(dir, "chapter.md")
		writeFile(t, target, "# One")
		writeFile(t, target, "# One\n\nmore")

		select {
		case path := <-changes:
			assert.Equal(t, target, path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change")
		}

		select {
		case path := <-changes:
			t.Fatalf("unexpected second change for %s", path)
		case <-time.After(400 * time.Millisecond):
		}
	})

	t.Run("ignores images and hidden files", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir, WithDebounce(10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, filepath.Join(dir, "scan.jpg"), "jpg")
		writeFile(t, filepath.Join(dir, ".draft.md"), "draft")
		target := filepath.Join(dir, "kept.txt")
		writeFile(t, target, "kept")

		select {
		case path := <-changes:
			assert.Equal(t, target, path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		changes, err := New(t.TempDir()).Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed")
		}
	})

	t.Run("rejects missing and non-directory roots", func(t *testing.T) {
		dir := t.TempDir()
		_, err := New(filepath.Join(dir, "missing")).Watch(context.Background())
		assert.Error(t, err)

		file := filepath.Join(dir, "file.txt")
		writeFile(t, file, "x")
		_, err = New(file).Watch(context.Background())
		assert.Error(t, err)
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".hidden", true},
		{".git", true},
		{"file.txt", false},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.name))
		})
	}
}

func TestIngestible(t *testing.T) {
	assert.True(t, Ingestible("/notes/a.md"))
	assert.True(t, Ingestible("/notes/a.HTML"))
	assert.True(t, Ingestible("/notes/a.pdf"))
	assert.False(t, Ingestible("/notes/a.png"))
	assert.False(t, Ingestible("/notes/a.docx"))
	assert.False(t, Ingestible("/notes/.a.md"))
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "note.md")
	writeFile(t, file, "x")
	hidden := filepath.Join(dir, ".cache", "note.md")
	writeFile(t, hidden, "x")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	c := New(dir)
	tests := []struct {
		name     string
		event    fsnotify.Event
		expected string
	}{
		{"create file", fsnotify.Event{Name: file, Op: fsnotify.Create}, file},
		{"write file", fsnotify.Event{Name: file, Op: fsnotify.Write}, file},
		{"chmod", fsnotify.Event{Name: file, Op: fsnotify.Chmod}, ""},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "gone.md"), Op: fsnotify.Remove}, ""},
		{"vanished before stat", fsnotify.Event{Name: filepath.Join(dir, "gone.md"), Op: fsnotify.Create}, ""},
		{"hidden directory", fsnotify.Event{Name: hidden, Op: fsnotify.Write}, ""},
		{"directory", fsnotify.Event{Name: sub, Op: fsnotify.Create}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.handleFsEvent(nil, tt.event))
		})
	}
}
