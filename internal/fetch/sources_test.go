package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadLinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs.txt"), "https://example.com/a\n\n  https://example.com/b  \n")
	writeFile(t, filepath.Join(dir, "more.txt"), "https://example.com/c\n")
	writeFile(t, filepath.Join(dir, "ignored.md"), "https://example.com/not-me\n")

	urls, err := ReadLinks(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, urls)
}

func TestReadLinksMissingDir(t *testing.T) {
	urls, err := ReadLinks(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestReadLinksSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.txt"), 0o755))
	writeFile(t, filepath.Join(dir, "links.txt"), "https://example.com\n")

	urls, err := ReadLinks(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, urls)
}

func TestReadLocalFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "beta")
	writeFile(t, filepath.Join(root, "links", "urls.txt"), "https://example.com\n")

	files, err := ReadLocalFiles(root, "links")
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, names)
}

func TestReadLocalFilesSameNameInDifferentDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "guides", "readme.txt"), "guide")
	writeFile(t, filepath.Join(root, "policies", "readme.txt"), "policy")

	files, err := ReadLocalFiles(root, "links")
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.ElementsMatch(t, []string{"guides/readme.txt", "policies/readme.txt"}, names)
}

func TestReadLocalFilesSkipsDotfiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".index.lock"), "")
	writeFile(t, filepath.Join(root, ".git", "config"), "noise")
	writeFile(t, filepath.Join(root, "real.txt"), "document")

	files, err := ReadLocalFiles(root, "links")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "real.txt", files[0].Name)
}

func TestReadLocalFilesMissingRoot(t *testing.T) {
	files, err := ReadLocalFiles(filepath.Join(t.TempDir(), "absent"), "links")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReadFileTextKeepsPlainContentVerbatim(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.md")
	content := "# Title\n\nGenerics use `List<String>` in Java.\n"
	writeFile(t, path, content)

	text, err := ReadFileText(path)
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestReadFileTextStripsHTMLByExtension(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "page.html")
	writeFile(t, path, "<body><p>First</p><p>second</p></body>")

	text, err := ReadFileText(path)
	require.NoError(t, err)
	assert.Equal(t, "First second", text)
}

func TestReadFileTextStripsHTMLByContent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "saved.txt")
	writeFile(t, path, "<!DOCTYPE html>\n<html><body>Saved page</body></html>")

	text, err := ReadFileText(path)
	require.NoError(t, err)
	assert.Equal(t, "Saved page", text)
}

func TestReadFileTextMissing(t *testing.T) {
	_, err := ReadFileText(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
