package discovery_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/robertgumeny/testgen/internal/config"
	"github.com/robertgumeny/testgen/internal/discovery"
)

// touch creates an empty file at rel under dir, creating parent directories.
func touch(t *testing.T, dir, rel string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("// source\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func defaultOptions() discovery.Options {
	cfg := config.Defaults()
	return discovery.Options{ExcludedDirs: cfg.ExcludedDirs, Extensions: cfg.SourceExtensions}
}

func names(t *testing.T, dir string, opts discovery.Options) []string {
	t.Helper()
	units, err := discovery.Discover(dir, opts)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var out []string
	for _, u := range units {
		if !filepath.IsAbs(u.Path) {
			t.Errorf("Path %q is not absolute", u.Path)
		}
		out = append(out, u.Name)
	}
	return out
}

func TestDiscover_CollectsSourceExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "main.cpp")
	touch(t, dir, "src/person.cc")
	touch(t, dir, "src/person.h")
	touch(t, dir, "README.md")
	touch(t, dir, "src/legacy.c")

	got := names(t, dir, defaultOptions())
	want := []string{"main.cpp", "src/person.cc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_SkipsExcludedDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "src/keep.cpp")
	touch(t, dir, "build/CMakeFiles/feature_tests.cpp")
	touch(t, dir, "third_party/googletest/gtest-all.cc")
	touch(t, dir, "test/old_test.cpp")
	touch(t, dir, "tests/test_keep.cpp")
	touch(t, dir, ".venv/lib/site.cpp")
	touch(t, dir, "src/nested/build/generated.cc")

	got := names(t, dir, defaultOptions())
	want := []string{"src/keep.cpp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

// Only exact directory names are excluded; a name merely containing "test"
// or "build" is still scanned.
func TestDiscover_MatchesWholeDirectoryNames(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "latest/a.cpp")
	touch(t, dir, "builder/b.cc")

	got := names(t, dir, defaultOptions())
	want := []string{"builder/b.cc", "latest/a.cpp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_RootNamedLikeExcludedDirIsScanned(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "build")
	touch(t, root, "a.cpp")

	got := names(t, root, defaultOptions())
	if !reflect.DeepEqual(got, []string{"a.cpp"}) {
		t.Errorf("Discover() = %v, want [a.cpp]", got)
	}
}

func TestDiscover_ExtensionMatchIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Upper.CPP")

	got := names(t, dir, defaultOptions())
	if !reflect.DeepEqual(got, []string{"Upper.CPP"}) {
		t.Errorf("Discover() = %v, want [Upper.CPP]", got)
	}
}

func TestDiscover_EmptyProject(t *testing.T) {
	units, err := discovery.Discover(t.TempDir(), defaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected no units, got %v", units)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := discovery.Discover(filepath.Join(t.TempDir(), "missing"), defaultOptions())
	if err == nil {
		t.Fatal("expected error for missing project root")
	}
}
