package workspace

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mx/internal/tracelog"
)

// gatherAndHashFiles hashes the workspace root (selectively when a prior
// archive exists) and every additional root, rewrites additional-root paths
// to workspace-relative form, and persists the merged archive.
func gatherAndHashFiles(workspaceRoot string, additionalRoots []string, cacheDir string, log *tracelog.Logger) RawFilesByRoot {
	archived := readFilesArchive(cacheDir, log)

	log.Trace("gathering files", "root", workspaceRoot)
	start := time.Now()

	var workspaceHashes map[string]archiveEntry
	if archived != nil {
		workspaceHashes = selectiveFilesHash(workspaceRoot, archived, log)
	} else {
		workspaceHashes = fullFilesHash(workspaceRoot, log)
	}

	workspaceFiles := make([]FileData, 0, len(workspaceHashes))
	for p, e := range workspaceHashes {
		workspaceFiles = append(workspaceFiles, FileData{File: p, Hash: e.Hash})
	}
	sortFileData(workspaceFiles)

	additionalRootFiles := make(map[string][]FileData)
	allHashes := workspaceHashes

	for _, root := range additionalRoots {
		if _, err := os.Stat(root); err != nil {
			log.Warn("additional project root does not exist", "root", root)
			continue
		}
		log.Trace("gathering files in additional root", "root", root)
		hashes := fullFilesHash(root, log)

		// Paths become workspace-relative when the root lies under the
		// workspace; otherwise they keep the root's own path as prefix.
		prefix := relativeRootPrefix(workspaceRoot, root)

		rootFiles := make([]FileData, 0, len(hashes))
		for p, e := range hashes {
			full := path.Join(prefix, p)
			rootFiles = append(rootFiles, FileData{File: full, Hash: e.Hash})
			allHashes[full] = e
		}
		sortFileData(rootFiles)
		additionalRootFiles[root] = rootFiles
	}

	log.Trace("hashed and sorted files", "elapsed", time.Since(start).String())

	writeFilesArchive(cacheDir, allHashes, log)

	return RawFilesByRoot{
		WorkspaceFiles:      workspaceFiles,
		AdditionalRootFiles: additionalRootFiles,
	}
}

// relativeRootPrefix strips workspaceRoot from root, falling back to root
// itself for out-of-tree roots.
func relativeRootPrefix(workspaceRoot, root string) string {
	rel, err := filepath.Rel(workspaceRoot, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(root)
	}
	if rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
