package workspace

import (
	"reflect"
	"testing"
)

var globFixture = []FileData{
	{File: "a.go", Hash: "1"},
	{File: "pkg/b.go", Hash: "2"},
	{File: "pkg/b_test.go", Hash: "3"},
	{File: "pkg/deep/c.go", Hash: "4"},
	{File: "README.md", Hash: "5"},
}

func TestGlobFilesIncludes(t *testing.T) {
	matched, err := globFiles(globFixture, []string{"**/*.go"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"pkg/b.go", "pkg/b_test.go", "pkg/deep/c.go"}
	if !reflect.DeepEqual(filePaths(matched), want) {
		t.Fatalf("matched %v, want %v", filePaths(matched), want)
	}
}

func TestGlobFilesExcludes(t *testing.T) {
	matched, err := globFiles(globFixture, []string{"**/*.go"}, []string{"**/*_test.go"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"pkg/b.go", "pkg/deep/c.go"}
	if !reflect.DeepEqual(filePaths(matched), want) {
		t.Fatalf("matched %v, want %v", filePaths(matched), want)
	}
}

func TestGlobFilesMultiplePatterns(t *testing.T) {
	matched, err := globFiles(globFixture, []string{"*.go", "*.md"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.go", "README.md"}
	if !reflect.DeepEqual(filePaths(matched), want) {
		t.Fatalf("matched %v, want %v", filePaths(matched), want)
	}
}

func TestGlobFilesPreservesInputOrder(t *testing.T) {
	matched, err := globFiles(globFixture, []string{"**/*.go", "*.go", "*.md"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Yield order is the input order, not pattern order.
	want := []string{"a.go", "pkg/b.go", "pkg/b_test.go", "pkg/deep/c.go", "README.md"}
	if !reflect.DeepEqual(filePaths(matched), want) {
		t.Fatalf("matched %v, want %v", filePaths(matched), want)
	}
}

func TestGlobFilesInvalidPattern(t *testing.T) {
	if _, err := globFiles(globFixture, []string{"[unclosed"}, nil); err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}
