package workspace

import (
	"os"
	"strings"
	"sync"

	"mx/internal/tracelog"
)

// FilesWorker holds the indexed files behind a mutex with condvar-signalled
// readiness. The initial gather runs on a background goroutine that inherits
// the lock from the constructor, so the first waiter always wins.
type FilesWorker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	files   RawFilesByRoot
	present bool
	log     *tracelog.Logger
}

func newFilesWorker(workspaceRoot string, additionalRoots []string, cacheDir string, log *tracelog.Logger) *FilesWorker {
	w := &FilesWorker{log: log}
	w.cond = sync.NewCond(&w.mu)

	if _, err := os.Stat(workspaceRoot); err != nil {
		log.Warn("workspace root does not exist", "root", workspaceRoot)
		return w
	}
	w.present = true
	w.files = RawFilesByRoot{AdditionalRootFiles: make(map[string][]FileData)}

	// Lock before spawning: readers block until the gather completes.
	w.mu.Lock()
	roots := append([]string(nil), additionalRoots...)
	go func() {
		w.log.Trace("initially locking files")
		files := gatherAndHashFiles(workspaceRoot, roots, cacheDir, w.log)
		w.files = files
		w.log.Trace("files retrieved")
		w.cond.Broadcast()
		w.mu.Unlock()
	}()
	return w
}

// getRawFiles blocks until the index holds at least one entry, then returns
// a copy. Returns the zero value immediately when the workspace root was
// absent at construction.
func (w *FilesWorker) getRawFiles() RawFilesByRoot {
	if !w.present {
		return RawFilesByRoot{}
	}
	w.log.Trace("waiting for files to be available")
	w.mu.Lock()
	for len(w.files.WorkspaceFiles) == 0 && !anyRootNonEmpty(w.files.AdditionalRootFiles) {
		w.cond.Wait()
	}
	files := cloneRawFiles(w.files)
	w.mu.Unlock()
	w.log.Trace("files are available")
	return files
}

// updateFiles applies a batch of updated and deleted paths to the workspace
// file list. Additional-root entries are only gathered at startup and are
// not touched here. Returns the hashes computed for the updated paths.
func (w *FilesWorker) updateFiles(workspaceRoot string, updated, deleted []string) map[string]string {
	if !w.present {
		w.log.Trace("there were no files because the workspace root did not exist")
		return map[string]string{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	byPath := make(map[string]string, len(w.files.WorkspaceFiles))
	for _, f := range w.files.WorkspaceFiles {
		byPath[f.File] = f.Hash
	}

	for _, deletedPath := range deleted {
		// A file path removes one key; a directory path removes the subtree.
		if _, ok := byPath[deletedPath]; ok {
			delete(byPath, deletedPath)
			continue
		}
		prefix := deletedPath + "/"
		for p := range byPath {
			if strings.HasPrefix(p, prefix) {
				delete(byPath, p)
			}
		}
	}

	updatedHashes := hashFilesParallel(workspaceRoot, updated, w.log)
	for p, h := range updatedHashes {
		byPath[p] = h
	}

	files := make([]FileData, 0, len(byPath))
	for p, h := range byPath {
		files = append(files, FileData{File: p, Hash: h})
	}
	sortFileData(files)
	w.files.WorkspaceFiles = files

	return updatedHashes
}

func anyRootNonEmpty(roots map[string][]FileData) bool {
	for _, files := range roots {
		if len(files) > 0 {
			return true
		}
	}
	return false
}

func cloneRawFiles(raw RawFilesByRoot) RawFilesByRoot {
	out := RawFilesByRoot{
		WorkspaceFiles:      append([]FileData(nil), raw.WorkspaceFiles...),
		AdditionalRootFiles: make(map[string][]FileData, len(raw.AdditionalRootFiles)),
	}
	for root, files := range raw.AdditionalRootFiles {
		out.AdditionalRootFiles[root] = append([]FileData(nil), files...)
	}
	return out
}
