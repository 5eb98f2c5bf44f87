package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"mx/internal/tracelog"
)

// archiveEntry is one persisted file record: the content hash plus the cheap
// metadata used to decide whether a rehash is needed.
type archiveEntry struct {
	Hash    string `cbor:"h"`
	Size    int64  `cbor:"s"`
	MtimeNs int64  `cbor:"m"`
}

// hashBytes returns the lowercase-hex xxhash64 of content.
func hashBytes(content []byte) string {
	return strconv.FormatUint(xxhash.Sum64(content), 16)
}

type walkedFile struct {
	rel     string // forward-slash relative path
	size    int64
	mtimeNs int64
}

// walkFiles lists regular files under root, skipping .git directories.
// Paths are forward-slash normalized and relative to root.
func walkFiles(root string, log *tracelog.Logger) []walkedFile {
	var files []walkedFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Trace("could not walk path", "path", path, "err", err.Error())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Trace("could not stat file", "path", path, "err", err.Error())
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		files = append(files, walkedFile{
			rel:     filepath.ToSlash(rel),
			size:    info.Size(),
			mtimeNs: info.ModTime().UnixNano(),
		})
		return nil
	})
	if err != nil {
		log.Warn("walk failed", "root", root, "err", err.Error())
	}
	return files
}

// fullFilesHash walks root and hashes every file.
func fullFilesHash(root string, log *tracelog.Logger) map[string]archiveEntry {
	return hashWalked(root, walkFiles(root, log), nil, log)
}

// selectiveFilesHash walks root and rehashes only the files whose cheap
// metadata differs from the prior archive.
func selectiveFilesHash(root string, prior map[string]archiveEntry, log *tracelog.Logger) map[string]archiveEntry {
	return hashWalked(root, walkFiles(root, log), prior, log)
}

// hashWalked hashes files in parallel, reusing prior hashes when size and
// mtime are unchanged. Unreadable files are skipped.
func hashWalked(root string, files []walkedFile, prior map[string]archiveEntry, log *tracelog.Logger) map[string]archiveEntry {
	results := make([]archiveEntry, len(files))
	ok := make([]bool, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f
		if prev, found := prior[f.rel]; found && prev.Size == f.size && prev.MtimeNs == f.mtimeNs {
			results[i] = prev
			ok[i] = true
			continue
		}
		g.Go(func() error {
			content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.rel)))
			if err != nil {
				log.Trace("could not read file", "path", f.rel, "err", err.Error())
				return nil
			}
			results[i] = archiveEntry{Hash: hashBytes(content), Size: f.size, MtimeNs: f.mtimeNs}
			ok[i] = true
			return nil
		})
	}
	g.Wait()

	out := make(map[string]archiveEntry, len(files))
	for i, f := range files {
		if ok[i] {
			out[f.rel] = results[i]
		}
	}
	return out
}

// hashFilesParallel reads and hashes the given workspace-relative paths,
// silently skipping unreadable files. Used by incremental updates.
func hashFilesParallel(workspaceRoot string, paths []string, log *tracelog.Logger) map[string]string {
	var mu sync.Mutex
	hashes := make(map[string]string, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range paths {
		p := p
		g.Go(func() error {
			full := filepath.Join(workspaceRoot, filepath.FromSlash(p))
			content, err := os.ReadFile(full)
			if err != nil {
				log.Trace("could not read file", "path", full, "err", err.Error())
				return nil
			}
			h := hashBytes(content)
			mu.Lock()
			hashes[p] = h
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return hashes
}
