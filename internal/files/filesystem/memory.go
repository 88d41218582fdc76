package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files.
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryFile implements File for in-memory files.
type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    fs.FileInfo
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	return f.content, nil
}

// memoryDirectory implements Directory over a MemoryFileSystem subtree.
type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	entries := d.fs.entriesUnder(d.absPath)

	// Deterministic order keeps scanner output and tests stable.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].absPath < entries[j].absPath
	})

	for _, entry := range entries {
		if err := fn(entry, nil); err != nil {
			return err
		}
	}
	return nil
}

// MemoryFileSystem implements Provider for in-memory testing. Paths use
// forward slashes regardless of host platform.
type MemoryFileSystem struct {
	files map[string]*memoryFile
	root  string
}

// NewMemoryFileSystem creates an in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}

	mfs.files[root] = &memoryFile{
		absPath: root,
		relPath: ".",
		info: &memoryFileInfo{
			name:    path.Base(root),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	return mfs
}

// AddFile adds a file under the root, creating parent directory entries as
// needed. Relative paths are interpreted against the root.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	filePath = filepath.ToSlash(filePath)

	absPath := filePath
	if !path.IsAbs(filePath) {
		absPath = path.Join(mfs.root, filePath)
	}
	absPath = path.Clean(absPath)

	relPath, err := filepath.Rel(mfs.root, absPath)
	if err != nil {
		relPath = filePath
	}
	relPath = filepath.ToSlash(relPath)

	mfs.addDirs(path.Dir(absPath))

	data := []byte(content)
	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		relPath: relPath,
		content: data,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(data)),
			mode:    0644,
			modTime: time.Now(),
		},
	}
}

// addDirs creates directory entries up to the root.
func (mfs *MemoryFileSystem) addDirs(dir string) {
	for dir != "" && dir != "/" && dir != "." {
		if _, exists := mfs.files[dir]; exists {
			return
		}
		rel, err := filepath.Rel(mfs.root, dir)
		if err != nil {
			rel = dir
		}
		mfs.files[dir] = &memoryFile{
			absPath: dir,
			relPath: filepath.ToSlash(rel),
			info: &memoryFileInfo{
				name:    path.Base(dir),
				mode:    0755 | fs.ModeDir,
				modTime: time.Now(),
				isDir:   true,
			},
		}
		dir = path.Dir(dir)
	}
}

// entriesUnder returns all entries at or below dir, excluding dir itself.
func (mfs *MemoryFileSystem) entriesUnder(dir string) []*memoryFile {
	var out []*memoryFile
	prefix := dir + "/"
	for p, f := range mfs.files {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			out = append(out, f)
		}
	}
	return out
}

// Open returns the subtree rooted at path for traversal.
func (mfs *MemoryFileSystem) Open(p string) (Directory, error) {
	p = path.Clean(filepath.ToSlash(p))
	f, ok := mfs.files[p]
	if !ok || !f.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", p)
	}
	return &memoryDirectory{absPath: p, fs: mfs}, nil
}

// ReadFile reads one file's content.
func (mfs *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	p = path.Clean(filepath.ToSlash(p))
	f, ok := mfs.files[p]
	if !ok || f.info.IsDir() {
		return nil, fmt.Errorf("file not found: %s", p)
	}
	return f.content, nil
}
