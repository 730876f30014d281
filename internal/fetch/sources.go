package fetch

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
)

// ReadLinks collects URLs from every *.txt file in dir, one URL per line.
// Blank lines and surrounding whitespace are ignored. A missing directory
// yields an empty list; an unreadable file inside it is an error.
func ReadLinks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ragerr.New(ragerr.ErrCodeFileUnreadable, "cannot read links directory", err).
			WithDetail("dir", dir)
	}

	var urls []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fileURLs, err := readLinkFile(path)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fileURLs...)
	}
	return urls, nil
}

func readLinkFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ragerr.New(ragerr.ErrCodeFileUnreadable, "cannot open links file", err).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, ragerr.New(ragerr.ErrCodeFileUnreadable, "cannot read links file", err).
			WithDetail("path", path)
	}
	return urls, nil
}

// LocalFile is a document discovered on disk.
type LocalFile struct {
	// Path is the location on disk, usable for reading.
	Path string

	// Name is the root-relative path in slash form, used as the document
	// source identity. Base filenames alone would collide across
	// subdirectories.
	Name string
}

// ReadLocalFiles walks root and returns every regular file, skipping the
// directory named excludeDir (the links folder lives inside the data root
// but holds URL lists, not documents). A missing root yields an empty list.
func ReadLocalFiles(root, excludeDir string) ([]LocalFile, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []LocalFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ragerr.New(ragerr.ErrCodeFileUnreadable, "cannot walk documents directory", err).
				WithDetail("path", path)
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || d.Name() == excludeDir {
				return fs.SkipDir
			}
			return nil
		}
		// Dotfiles are bookkeeping (lock files, editor droppings), not
		// documents.
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = d.Name()
		}
		files = append(files, LocalFile{Path: path, Name: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadFileText reads a local document. HTML files get the same tag
// stripping as fetched pages; everything else keeps its content verbatim
// so Markdown inline tags and code are not mangled.
func ReadFileText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ragerr.New(ragerr.ErrCodeFileUnreadable, "cannot read document file", err).
			WithDetail("path", path)
	}
	content := string(data)
	if looksLikeHTML(path, content) {
		return ExtractText(content), nil
	}
	return content, nil
}

var htmlExtensions = map[string]bool{
	".html":  true,
	".htm":   true,
	".xhtml": true,
}

func looksLikeHTML(path, content string) bool {
	if htmlExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
