package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robertgumeny/testgen/internal/config"
	"github.com/robertgumeny/testgen/internal/state"
	"github.com/robertgumeny/testgen/internal/types"
)

func writeSources(t *testing.T, dir string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("// x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListSources(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"src/Person.cc", "main.cpp", "build/gen.cc", "tests/test_Person.cc"} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("// x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Defaults()

	var out bytes.Buffer
	if err := listSources(&out, dir, &cfg); err != nil {
		t.Fatalf("listSources: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if len(lines) < 2 {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[0], "  main.cpp") || !strings.HasSuffix(lines[0], "-> tests/test_main.cpp") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "* src/Person.cc") || !strings.HasSuffix(lines[1], "-> tests/test_Person.cc") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(out.String(), "2 source file(s)") {
		t.Errorf("missing count in output:\n%s", out.String())
	}
	if strings.Contains(out.String(), "gen.cc") {
		t.Error("files under build/ must not be listed")
	}
}

func TestListSources_ShowsLastOutcome(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "src/Job.cc", "src/User.cc", "src/New.cc")
	report := &types.RunReport{
		RunID: "r1",
		Units: []types.UnitMetric{
			{Source: "src/Job.cc", Outcome: types.OutcomeSucceeded},
			{Source: "src/User.cc", Outcome: types.OutcomeExhausted},
		},
	}
	if err := state.SaveRunReport(filepath.Join(dir, filepath.FromSlash(state.RunReportPath)), report); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()

	var out bytes.Buffer
	if err := listSources(&out, dir, &cfg); err != nil {
		t.Fatalf("listSources: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if !strings.Contains(lines[0], "src/Job.cc") || !strings.HasSuffix(lines[0], "[succeeded]") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "src/New.cc") || strings.Contains(lines[1], "[") {
		t.Errorf("line 1 = %q, want no outcome for an unprocessed source", lines[1])
	}
	if !strings.Contains(lines[2], "src/User.cc") || !strings.HasSuffix(lines[2], "[exhausted]") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestListSources_MalformedReportIsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "src/Job.cc")
	reportPath := filepath.Join(dir, filepath.FromSlash(state.RunReportPath))
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(reportPath, []byte("units: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()

	var out bytes.Buffer
	if err := listSources(&out, dir, &cfg); err != nil {
		t.Fatalf("listSources: %v", err)
	}
	if !strings.Contains(out.String(), "1 source file(s)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCollisionWarnings(t *testing.T) {
	units := []types.SourceUnit{
		{Path: "/p/src/a/Foo.cc", Name: "src/a/Foo.cc"},
		{Path: "/p/src/Bar.cc", Name: "src/Bar.cc"},
		{Path: "/p/src/b/Foo.cc", Name: "src/b/Foo.cc"},
		{Path: "/p/x/Bar.cc", Name: "x/Bar.cc"},
	}

	got := collisionWarnings(units)
	if len(got) != 2 {
		t.Fatalf("collisionWarnings() = %v, want 2 warnings", got)
	}
	if !strings.HasPrefix(got[0], "src/Bar.cc, x/Bar.cc share the test file test_Bar.cc") {
		t.Errorf("warning 0 = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "src/a/Foo.cc, src/b/Foo.cc share the test file test_Foo.cc") {
		t.Errorf("warning 1 = %q", got[1])
	}
}

func TestCollisionWarnings_None(t *testing.T) {
	units := []types.SourceUnit{{Path: "/p/A.cc", Name: "A.cc"}, {Path: "/p/B.cc", Name: "B.cc"}}
	if got := collisionWarnings(units); len(got) != 0 {
		t.Errorf("collisionWarnings() = %v, want none", got)
	}
}
