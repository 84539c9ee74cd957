package scour

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackfish212/scour/mounts"
)

func setupSearchFS(t *testing.T) *VirtualFS {
	t.Helper()
	mem := mounts.NewMemFS(PermRW)
	mem.AddFile("a.txt", 3, PermRO)
	mem.AddFile("b.txt", 5, PermRO)
	mem.AddFile("sub/c.txt", 7, PermRO)
	mem.AddFile("sub/deep/d.log", 9, PermRO)

	v := New()
	if err := v.Mount("/", mem); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return v
}

func runSearch(t *testing.T, v *VirtualFS, roots, pattern string, flags Flags) []Record {
	t.Helper()
	buf := make([]byte, 4096)
	count, n, err := v.Search(context.Background(), roots, pattern, flags, buf)
	if err != nil {
		t.Fatalf("Search(%q, %q): %v", roots, pattern, err)
	}
	recs, err := ParseRecords(buf[:n])
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(recs) != count {
		t.Fatalf("count = %d but %d records decoded", count, len(recs))
	}
	return recs
}

func recordPaths(recs []Record) []string {
	paths := make([]string, len(recs))
	for i, r := range recs {
		paths[i] = r.Path
	}
	return paths
}

func TestSearchWildcard(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "*.txt", 0)

	got := recordPaths(recs)
	want := map[string]bool{"a.txt": true, "b.txt": true, "c.txt": true}
	if len(got) != 3 {
		t.Fatalf("matches = %v, want 3", got)
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected match %q", p)
		}
	}
}

func TestSearchIncludeRoot(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "c.txt", IncludeRoot)

	if len(recs) != 1 || recs[0].Path != "/sub/c.txt" {
		t.Errorf("matches = %v, want [/sub/c.txt]", recordPaths(recs))
	}
}

func TestSearchStopAtFirst(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "*.txt", StopAtFirst)

	if len(recs) != 1 {
		t.Errorf("matches = %v, want exactly one", recordPaths(recs))
	}
}

func TestSearchAnchored(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "/sub/*.txt", 0)

	if len(recs) != 1 || recs[0].Path != "c.txt" {
		t.Errorf("matches = %v, want [c.txt]", recordPaths(recs))
	}
}

func TestSearchAlternation(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "*.txt|*.log", 0)

	if len(recs) != 4 {
		t.Errorf("matches = %v, want 4", recordPaths(recs))
	}
}

func TestSearchLiteral(t *testing.T) {
	v := setupSearchFS(t)
	// Anchored and wildcard-free: resolved by direct lookup, reported
	// root-relative.
	recs := runSearch(t, v, "/", "/sub/c.txt", 0)
	if len(recs) != 1 || recs[0].Path != "/sub/c.txt" {
		t.Errorf("matches = %v, want [/sub/c.txt]", recordPaths(recs))
	}

	recs = runSearch(t, v, "/", "/sub/c.txt", IncludeRoot)
	if len(recs) != 1 || recs[0].Path != "/sub/c.txt" {
		t.Errorf("matches = %v, want [/sub/c.txt]", recordPaths(recs))
	}
}

func TestSearchLiteralMissing(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "/no/such/file", 0)
	if len(recs) != 0 {
		t.Errorf("matches = %v, want none", recordPaths(recs))
	}
}

func TestSearchLiteralAgreesWithWalk(t *testing.T) {
	v := setupSearchFS(t)
	lit := runSearch(t, v, "/", "/sub/c.txt", IncludeRoot)
	walk := runSearch(t, v, "/", "/sub/c?txt", IncludeRoot)
	if len(lit) != 1 || len(walk) != 1 || lit[0].Path != walk[0].Path {
		t.Errorf("literal = %v, walk = %v", recordPaths(lit), recordPaths(walk))
	}
}

func TestSearchMultiRoot(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/sub|/sub/deep", "*.log", IncludeRoot)

	got := recordPaths(recs)
	if len(got) != 2 {
		t.Fatalf("matches = %v, want 2", got)
	}
	for _, p := range got {
		if p != "/sub/deep/d.log" {
			t.Errorf("unexpected match %q", p)
		}
	}
}

func TestSearchEmptyRootsSkipped(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "|/sub||", "*.txt", 0)
	if len(recs) != 1 || recs[0].Path != "c.txt" {
		t.Errorf("matches = %v, want [c.txt]", recordPaths(recs))
	}
}

func TestSearchMissingRootSkipped(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/nowhere|/sub", "*.txt", 0)
	if len(recs) != 1 {
		t.Errorf("matches = %v, want 1", recordPaths(recs))
	}
}

func TestSearchRootNotDir(t *testing.T) {
	v := setupSearchFS(t)
	buf := make([]byte, 1024)
	_, _, err := v.Search(context.Background(), "/a.txt", "*", 0, buf)
	if !errors.Is(err, ErrNotDir) {
		t.Errorf("Search on file root = %v, want ErrNotDir", err)
	}
}

func TestSearchBufferTooSmall(t *testing.T) {
	v := setupSearchFS(t)
	buf := make([]byte, 8)
	_, _, err := v.Search(context.Background(), "/", "*.txt", 0, buf)
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Search = %v, want ErrBufferTooSmall", err)
	}
}

func TestSearchListingTooLarge(t *testing.T) {
	// One directory whose listing exceeds the per-level scratch bound,
	// counted as name plus framing per entry.
	mem := mounts.NewMemFS(PermRW)
	for i := 0; i < 2000; i++ {
		mem.AddFile(fmt.Sprintf("%032d.txt", i), 1, PermRO)
	}

	v := New()
	if err := v.Mount("/", mem); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	buf := make([]byte, 1024)
	_, _, err := v.Search(context.Background(), "/", "*.nope", 0, buf)
	if !errors.Is(err, ErrListingTooLarge) {
		t.Errorf("Search = %v, want ErrListingTooLarge", err)
	}
}

func TestSearchPathTooLong(t *testing.T) {
	// Components long enough to outgrow the shared path buffer well
	// before the depth cap.
	component := strings.Repeat("a", 500)
	parts := make([]string, 10)
	for i := range parts {
		parts[i] = component
	}
	mem := mounts.NewMemFS(PermRW)
	mem.AddFile(strings.Join(parts, "/")+"/leaf.txt", 1, PermRO)

	v := New()
	if err := v.Mount("/", mem); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	buf := make([]byte, 4096)
	_, _, err := v.Search(context.Background(), "/", "*.txt", 0, buf)
	if !errors.Is(err, ErrPathTooLong) {
		t.Errorf("Search = %v, want ErrPathTooLong", err)
	}
}

func TestSearchMetadata(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "a.txt", IncludeMetadata)

	if len(recs) != 1 {
		t.Fatalf("matches = %v, want 1", recordPaths(recs))
	}
	fields := strings.Split(recs[0].Meta, ",")
	if len(fields) != 13 {
		t.Errorf("metadata = %q, want 13 fields", recs[0].Meta)
	}
	if fields[7] != "3" {
		t.Errorf("size field = %q, want 3", fields[7])
	}
}

func TestSearchDepthLimit(t *testing.T) {
	mem := mounts.NewMemFS(PermRW)
	deep := "lvl0"
	for i := 1; i < TreeDepthLimit+4; i++ {
		deep += fmt.Sprintf("/lvl%d", i)
	}
	mem.AddFile(deep+"/bottom.txt", 1, PermRO)
	mem.AddFile("shallow.txt", 1, PermRO)

	v := New()
	if err := v.Mount("/", mem); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	recs := runSearch(t, v, "/", "*.txt", 0)
	if len(recs) != 1 || recs[0].Path != "shallow.txt" {
		t.Errorf("matches = %v, want only the shallow file", recordPaths(recs))
	}
}

func TestSearchAcrossMounts(t *testing.T) {
	v := setupSearchFS(t)
	vault := mounts.NewMemFS(PermRW)
	vault.AddFile("v.txt", 2, PermRO)
	if err := v.Mount("/vault", vault); err != nil {
		t.Fatalf("Mount vault: %v", err)
	}

	recs := runSearch(t, v, "/", "*.txt", IncludeRoot)
	got := recordPaths(recs)
	if len(got) != 4 {
		t.Fatalf("matches = %v, want 4", got)
	}
	seen := false
	for _, p := range got {
		if p == "/vault/v.txt" {
			seen = true
		}
	}
	if !seen {
		t.Errorf("mounted filesystem not searched: %v", got)
	}
}

func TestSearchDirectoriesMatchToo(t *testing.T) {
	v := setupSearchFS(t)
	recs := runSearch(t, v, "/", "deep", 0)
	if len(recs) != 1 || recs[0].Path != "deep" {
		t.Errorf("matches = %v, want [deep]", recordPaths(recs))
	}
}

func TestSearchNoMatchFinalizesEmpty(t *testing.T) {
	v := setupSearchFS(t)
	buf := make([]byte, 1024)
	count, n, err := v.Search(context.Background(), "/", "*.nope", 0, buf)
	if err != nil || count != 0 || n != 0 {
		t.Errorf("Search = (%d, %d, %v), want (0, 0, nil)", count, n, err)
	}
}
