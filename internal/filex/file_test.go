package filex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	defer chdir(t, tmp)()

	got, err := EnsureDir("downloads")
	require.NoError(t, err)

	want := filepath.Join(tmp, "downloads")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := EnsureDir(path)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestDirSaver_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewDirSaver(dir)

	path, err := s.Save(context.Background(), "report.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "report.pdf"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(b))
}

func TestDirSaver_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewDirSaver(dir)

	first, err := s.Save(context.Background(), "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.Save(context.Background(), "a.txt", strings.NewReader("two"))
	require.NoError(t, err)
	third, err := s.Save(context.Background(), "a.txt", strings.NewReader("three"))
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "a.txt"), first)
	require.Equal(t, filepath.Join(dir, "a (1).txt"), second)
	require.Equal(t, filepath.Join(dir, "a (2).txt"), third)

	b, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, "one", string(b))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestDirSaver_FailedTransferLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewDirSaver(dir)

	_, err := s.Save(context.Background(), "a.txt", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDirSaver_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirSaver(dir).Save(ctx, "a.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSafeName(t *testing.T) {
	require.Equal(t, "passwd", SafeName("../../etc/passwd"))
	require.Equal(t, "evil.exe", SafeName(`..\..\evil.exe`))
	require.Equal(t, "download", SafeName(".."))
	require.Equal(t, "download", SafeName(""))
	require.Equal(t, "my file.txt", SafeName("my file.txt"))
}
