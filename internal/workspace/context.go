package workspace

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"mx/internal/tracelog"
)

// Context is the facade over the file index for one workspace.
type Context struct {
	WorkspaceRoot   string
	additionalRoots []string
	worker          *FilesWorker
	log             *tracelog.Logger
}

// NewContext starts indexing workspaceRoot and the additional roots in the
// background. Reads block until the initial gather completes.
func NewContext(workspaceRoot string, additionalRoots []string, cacheDir string) *Context {
	log := tracelog.FromEnv()
	log.Trace("creating workspace context",
		"root", workspaceRoot,
		"additionalRoots", strings.Join(additionalRoots, ","))
	return &Context{
		WorkspaceRoot:   workspaceRoot,
		additionalRoots: append([]string(nil), additionalRoots...),
		worker:          newFilesWorker(workspaceRoot, additionalRoots, cacheDir, log),
		log:             log,
	}
}

// AllFileData returns every indexed file: workspace files first, then each
// additional root in sorted root order so the sequence is deterministic.
func (c *Context) AllFileData() []FileData {
	raw := c.worker.getRawFiles()
	out := make([]FileData, 0, len(raw.WorkspaceFiles))
	out = append(out, raw.WorkspaceFiles...)
	for _, root := range sortedRoots(raw.AdditionalRootFiles) {
		out = append(out, raw.AdditionalRootFiles[root]...)
	}
	return out
}

// GetWorkspaceFiles partitions all indexed files by project ownership.
func (c *Context) GetWorkspaceFiles(mappings ProjectRootMappings) WorkspaceFiles {
	return partitionFiles(mappings, c.AllFileData())
}

// Glob returns the paths matching globs minus exclude across all roots.
func (c *Context) Glob(globs []string, exclude []string) ([]string, error) {
	matched, err := globFiles(c.AllFileData(), globs, exclude)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(matched))
	for _, f := range matched {
		paths = append(paths, f.File)
	}
	return paths, nil
}

// MultiGlob runs the same glob query separately per root.
func (c *Context) MultiGlob(globs []string, exclude []string) (FilePathsByRoot, error) {
	raw := c.worker.getRawFiles()

	matched, err := globFiles(raw.WorkspaceFiles, globs, exclude)
	if err != nil {
		return FilePathsByRoot{}, err
	}
	result := FilePathsByRoot{
		WorkspaceFiles:      make([]string, 0, len(matched)),
		AdditionalRootFiles: make(map[string][]string, len(raw.AdditionalRootFiles)),
	}
	for _, f := range matched {
		result.WorkspaceFiles = append(result.WorkspaceFiles, f.File)
	}

	for root, files := range raw.AdditionalRootFiles {
		matched, err := globFiles(files, globs, exclude)
		if err != nil {
			return FilePathsByRoot{}, err
		}
		paths := make([]string, 0, len(matched))
		for _, f := range matched {
			paths = append(paths, f.File)
		}
		result.AdditionalRootFiles[root] = paths
	}
	return result, nil
}

// HashFilesMatchingGlob folds the matched entries' path and hash bytes into
// a single xxhash64 digest. Match order is the deterministic glob yield
// order, so identical inputs produce identical digests.
func (c *Context) HashFilesMatchingGlob(globs []string, exclude []string) (string, error) {
	return hashMatching(c.AllFileData(), globs, exclude)
}

// HashFilesMatchingGlobs computes one digest per glob group, in group order.
func (c *Context) HashFilesMatchingGlobs(globGroups [][]string) ([]string, error) {
	files := c.AllFileData()
	hashes := make([]string, 0, len(globGroups))
	for _, globs := range globGroups {
		h, err := hashMatching(files, globs, nil)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func hashMatching(files []FileData, globs []string, exclude []string) (string, error) {
	matched, err := globFiles(files, globs, exclude)
	if err != nil {
		return "", err
	}
	digest := xxhash.New()
	for _, f := range matched {
		digest.WriteString(f.File)
		digest.WriteString(f.Hash)
	}
	return strconv.FormatUint(digest.Sum64(), 16), nil
}

// IncrementalUpdate applies updated and deleted paths to the workspace file
// list and returns the new hashes of the updated paths.
func (c *Context) IncrementalUpdate(updated, deleted []string) map[string]string {
	return c.worker.updateFiles(c.WorkspaceRoot, updated, deleted)
}

// GetFilesInDirectory returns the indexed paths under directory.
func (c *Context) GetFilesInDirectory(directory string) []string {
	return getChildFiles(directory, c.AllFileData())
}

// UpdateProjectFiles patches per-project file lists and the global file map
// with a batch of updates and deletions. Deletions are checked against both
// the owning project and the global map because a path may have migrated
// between them since the batch was computed.
func (c *Context) UpdateProjectFiles(
	mappings ProjectRootMappings,
	projectFiles ProjectFiles,
	globalFiles []FileData,
	updatedFiles map[string]string,
	deletedFiles []string,
) UpdatedWorkspaceFiles {
	c.log.Trace("updating project files")

	pf := cloneProjectFiles(projectFiles)
	gf := make(map[string]string, len(globalFiles))
	for _, f := range globalFiles {
		gf[f.File] = f.Hash
	}

	c.log.Trace("adding updated files to project files", "count", len(updatedFiles))
	touched := make(map[string]bool)
	for file, hash := range updatedFiles {
		project, owned := findProjectForPath(file, mappings)
		if owned {
			if list, exists := pf[project]; exists {
				if idx := indexOfFile(list, file); idx >= 0 {
					list[idx].Hash = hash
				} else {
					pf[project] = append(list, FileData{File: file, Hash: hash})
					touched[project] = true
				}
				continue
			}
		}
		gf[file] = hash
	}

	c.log.Trace("removing deleted files from project files", "count", len(deletedFiles))
	for _, file := range deletedFiles {
		if project, owned := findProjectForPath(file, mappings); owned {
			if list, exists := pf[project]; exists {
				if idx := indexOfFile(list, file); idx >= 0 {
					pf[project] = append(list[:idx], list[idx+1:]...)
				}
			}
		}
		delete(gf, file)
	}

	// Deletion keeps a list sorted, so only projects that gained files need
	// a re-sort.
	for project := range touched {
		list := pf[project]
		if len(list) < parallelSortThreshold {
			sortFileDataSeq(list)
		} else {
			sortFileData(list)
		}
	}

	nonProject := make([]FileData, 0, len(gf))
	for file, hash := range gf {
		nonProject = append(nonProject, FileData{File: file, Hash: hash})
	}
	sortFileData(nonProject)

	return UpdatedWorkspaceFiles{
		FileMap: FileMap{
			ProjectFileMap:  pf,
			NonProjectFiles: nonProject,
		},
		ExternalReferences: WorkspaceFilesExternals{
			ProjectFiles:      cloneProjectFiles(pf),
			GlobalFiles:       append([]FileData(nil), nonProject...),
			AllWorkspaceFiles: c.AllFileData(),
		},
	}
}

func indexOfFile(files []FileData, path string) int {
	for i, f := range files {
		if f.File == path {
			return i
		}
	}
	return -1
}

func sortedRoots(roots map[string][]FileData) []string {
	keys := make([]string, 0, len(roots))
	for root := range roots {
		keys = append(keys, root)
	}
	sort.Strings(keys)
	return keys
}
