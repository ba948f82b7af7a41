package resolve

import (
	"fmt"
	"strings"
	"sync"

	"media-catalog/internal/fsys"
)

// fakeFS is an in-memory fsys.Access for pipeline and flattener tests.
type fakeFS struct {
	mu sync.Mutex

	entries   map[string]fsys.Entry   // path -> entry
	children  map[string][]fsys.Entry // container path -> child entries
	shortcuts map[string]string       // shortcut path -> target path

	failList map[string]error // paths whose ListChildren fails

	getCalls    map[string]int
	listCalls   map[string]int
	ensuredDirs []string
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		entries:   make(map[string]fsys.Entry),
		children:  make(map[string][]fsys.Entry),
		shortcuts: make(map[string]string),
		failList:  make(map[string]error),
		getCalls:  make(map[string]int),
		listCalls: make(map[string]int),
	}
}

func (f *fakeFS) addFile(path string) fsys.Entry {
	e := fsys.Entry{Path: path}
	f.entries[path] = e
	return e
}

func (f *fakeFS) addDir(path string, children ...fsys.Entry) fsys.Entry {
	e := fsys.Entry{Path: path, IsContainer: true}
	f.entries[path] = e
	f.children[path] = children
	return e
}

func (f *fakeFS) addShortcut(path, target string) fsys.Entry {
	e := fsys.Entry{Path: path}
	f.entries[path] = e
	f.shortcuts[path] = target
	return e
}

func (f *fakeFS) GetEntry(path string) (fsys.Entry, error) {
	f.mu.Lock()
	f.getCalls[path]++
	f.mu.Unlock()

	e, ok := f.entries[path]
	if !ok {
		return fsys.Entry{}, fmt.Errorf("no entry for %s", path)
	}
	return e, nil
}

func (f *fakeFS) ListChildren(path string) ([]fsys.Entry, error) {
	f.mu.Lock()
	f.listCalls[path]++
	f.mu.Unlock()

	if err, ok := f.failList[path]; ok {
		return nil, err
	}
	return f.children[path], nil
}

func (f *fakeFS) IsShortcut(path string) bool {
	_, ok := f.shortcuts[path]
	return ok
}

func (f *fakeFS) ResolveShortcutTarget(path string) (string, error) {
	target, ok := f.shortcuts[path]
	if !ok {
		return "", fmt.Errorf("%s is not a shortcut", path)
	}
	return target, nil
}

func (f *fakeFS) SanitizeName(name string) string {
	clean := strings.NewReplacer("/", " ", "\\", " ", ":", " ").Replace(name)
	return strings.TrimSpace(strings.Join(strings.Fields(clean), " "))
}

func (f *fakeFS) EnsureDirectory(path string) (fsys.Entry, error) {
	f.mu.Lock()
	f.ensuredDirs = append(f.ensuredDirs, path)
	f.mu.Unlock()

	if e, ok := f.entries[path]; ok {
		return e, nil
	}
	return f.addDir(path), nil
}

func (f *fakeFS) listCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[path]
}

func (f *fakeFS) ensuredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ensuredDirs)
}
