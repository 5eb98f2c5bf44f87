package workspace

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func shuffledFiles(n int) []FileData {
	files := make([]FileData, n)
	for i := range files {
		files[i] = FileData{File: fmt.Sprintf("dir%03d/file%05d.go", i%37, i), Hash: fmt.Sprintf("%x", i)}
	}
	r := rand.New(rand.NewSource(1))
	r.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
	return files
}

func TestSortFileDataSmall(t *testing.T) {
	files := shuffledFiles(50)
	sortFileData(files)
	if !sort.SliceIsSorted(files, func(i, j int) bool { return files[i].File < files[j].File }) {
		t.Fatal("small slice not sorted")
	}
}

func TestSortFileDataLargeMatchesSequential(t *testing.T) {
	files := shuffledFiles(5000)
	expected := append([]FileData(nil), files...)
	sortFileDataSeq(expected)

	sortFileData(files)
	for i := range files {
		if files[i] != expected[i] {
			t.Fatalf("parallel sort diverged at %d: %v vs %v", i, files[i], expected[i])
		}
	}
}

func TestParSortFileDataSingleWorkerFallsBack(t *testing.T) {
	files := shuffledFiles(600)
	parSortFileData(files, 1)
	if !sort.SliceIsSorted(files, func(i, j int) bool { return files[i].File < files[j].File }) {
		t.Fatal("single-worker sort not sorted")
	}
}

func TestMergeFileData(t *testing.T) {
	a := []FileData{{File: "a"}, {File: "c"}, {File: "e"}}
	b := []FileData{{File: "b"}, {File: "d"}}
	merged := mergeFileData(a, b)
	want := []string{"a", "b", "c", "d", "e"}
	for i, f := range merged {
		if f.File != want[i] {
			t.Fatalf("merged[%d] = %q, want %q", i, f.File, want[i])
		}
	}
}
