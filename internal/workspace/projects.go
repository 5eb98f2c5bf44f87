package workspace

import "path"

// findProjectForPath returns the project owning filePath via longest-prefix
// match against the root mappings. Mappings use "." for the workspace root.
func findProjectForPath(filePath string, mappings ProjectRootMappings) (string, bool) {
	cur := filePath
	for {
		if name, ok := mappings[cur]; ok {
			return name, true
		}
		next := path.Dir(cur)
		if next == cur {
			return "", false
		}
		cur = next
	}
}

// partitionFiles splits files into per-project lists and global files by
// project ownership. Every mapped project gets a list, empty or not.
func partitionFiles(mappings ProjectRootMappings, files []FileData) WorkspaceFiles {
	projectFiles := make(ProjectFiles)
	for _, name := range mappings {
		if _, ok := projectFiles[name]; !ok {
			projectFiles[name] = nil
		}
	}

	var globalFiles []FileData
	for _, f := range files {
		if name, ok := findProjectForPath(f.File, mappings); ok {
			projectFiles[name] = append(projectFiles[name], f)
		} else {
			globalFiles = append(globalFiles, f)
		}
	}
	for name := range projectFiles {
		sortFileData(projectFiles[name])
	}
	sortFileData(globalFiles)

	return WorkspaceFiles{
		ProjectFileMap: projectFiles,
		GlobalFiles:    globalFiles,
		ExternalRefs: WorkspaceFilesExternals{
			ProjectFiles:      cloneProjectFiles(projectFiles),
			GlobalFiles:       append([]FileData(nil), globalFiles...),
			AllWorkspaceFiles: append([]FileData(nil), files...),
		},
	}
}

// getChildFiles returns the paths that live under directory.
func getChildFiles(directory string, files []FileData) []string {
	prefix := path.Clean(directory)
	if prefix == "." || prefix == "/" {
		prefix = ""
	}
	var out []string
	for _, f := range files {
		if prefix == "" || hasPathPrefix(f.File, prefix) {
			out = append(out, f.File)
		}
	}
	return out
}

func hasPathPrefix(p, prefix string) bool {
	return len(p) > len(prefix)+1 && p[:len(prefix)] == prefix && p[len(prefix)] == '/'
}

func cloneProjectFiles(pf ProjectFiles) ProjectFiles {
	out := make(ProjectFiles, len(pf))
	for name, files := range pf {
		out[name] = append([]FileData(nil), files...)
	}
	return out
}
