package workspace

import (
	"runtime"
	"sort"
	"sync"
)

// parallelSortThreshold is the list length below which parallel sorting has
// more overhead than benefit.
const parallelSortThreshold = 500

// sortFileData sorts files by path, in parallel for large lists.
func sortFileData(files []FileData) {
	if len(files) < parallelSortThreshold {
		sortFileDataSeq(files)
		return
	}
	parSortFileData(files, runtime.GOMAXPROCS(0))
}

func sortFileDataSeq(files []FileData) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].File != files[j].File {
			return files[i].File < files[j].File
		}
		return files[i].Hash < files[j].Hash
	})
}

// parSortFileData is a chunked merge sort: the slice is split into roughly
// equal chunks sorted concurrently, then merged pairwise.
func parSortFileData(files []FileData, workers int) {
	if workers < 2 {
		sortFileDataSeq(files)
		return
	}

	chunkSize := (len(files) + workers - 1) / workers
	var chunks [][]FileData
	for start := 0; start < len(files); start += chunkSize {
		end := start + chunkSize
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[start:end])
	}

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(c []FileData) {
			defer wg.Done()
			sortFileDataSeq(c)
		}(c)
	}
	wg.Wait()

	merged := chunks[0]
	for _, c := range chunks[1:] {
		merged = mergeFileData(merged, c)
	}
	copy(files, merged)
}

func mergeFileData(a, b []FileData) []FileData {
	out := make([]FileData, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].File < b[j].File || (a[i].File == b[j].File && a[i].Hash <= b[j].Hash) {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
