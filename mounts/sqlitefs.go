package mounts

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackfish212/scour/glob"
	"github.com/jackfish212/scour/types"

	_ "modernc.org/sqlite"
)

var (
	_ types.Provider       = (*SQLiteFS)(nil)
	_ types.Metadatar      = (*SQLiteFS)(nil)
	_ types.NativeSearcher = (*SQLiteFS)(nil)
)

// SQLiteFS is a SQLite-backed filesystem. The path column carries the
// full slash-separated location of every explicit entry; directories
// may also exist implicitly as prefixes of deeper paths. Because the
// whole tree sits behind one indexed column, SQLiteFS answers searches
// itself instead of being walked directory by directory.
type SQLiteFS struct {
	db     *sql.DB
	dbPath string
	perm   types.Perm
	mu     sync.RWMutex
}

func NewSQLiteFS(dbPath string, perm types.Perm) (*SQLiteFS, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	fs := &SQLiteFS{db: db, dbPath: dbPath, perm: perm}
	if err := fs.initDB(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return fs, nil
}

func (fs *SQLiteFS) initDB() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		is_dir BOOLEAN NOT NULL DEFAULT 0,
		perm INTEGER NOT NULL DEFAULT 1,
		modified INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
	`
	_, err := fs.db.Exec(schema)
	return err
}

func (fs *SQLiteFS) Close() error { return fs.db.Close() }

// Put records a file at path. Parent directories need no explicit
// rows; Stat and List treat path prefixes as directories.
func (fs *SQLiteFS) Put(path string, size int64, perm types.Perm) error {
	path = normPath(path)
	_, err := fs.db.Exec(`
		INSERT INTO files (path, size, is_dir, perm, modified) VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(path) DO UPDATE SET size = excluded.size, is_dir = excluded.is_dir, perm = excluded.perm, modified = excluded.modified
	`, path, size, int(perm), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// Mkdir records an explicit directory row.
func (fs *SQLiteFS) Mkdir(path string, perm types.Perm) error {
	path = normPath(path)
	_, err := fs.db.Exec(`INSERT OR IGNORE INTO files (path, size, is_dir, perm, modified) VALUES (?, 0, 1, ?, ?)`,
		path, int(perm), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return nil
}

func (fs *SQLiteFS) Stat(_ context.Context, path string) (*types.Entry, error) {
	path = normPath(path)

	var entry types.Entry
	var permInt int
	var modified int64
	var isDir bool

	err := fs.db.QueryRow(`SELECT path, size, is_dir, perm, modified FROM files WHERE path = ?`, path).
		Scan(&entry.Path, &entry.Size, &isDir, &permInt, &modified)

	if err == sql.ErrNoRows {
		if path == "" {
			return &types.Entry{Name: "/", Path: "", IsDir: true, Perm: types.PermRX}, nil
		}
		var count int
		err = fs.db.QueryRow(`SELECT COUNT(*) FROM files WHERE path LIKE ? || '%'`, path+"/").Scan(&count)
		if err == nil && count > 0 {
			return &types.Entry{Name: baseName(path), Path: path, IsDir: true, Perm: types.PermRX}, nil
		}
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat error: %w", err)
	}

	entry.Name = baseName(path)
	entry.IsDir = isDir
	entry.Perm = types.Perm(permInt)
	entry.Modified = time.Unix(modified, 0)
	return &entry, nil
}

func (fs *SQLiteFS) List(ctx context.Context, path string, _ types.ListOpts) ([]types.Entry, error) {
	path = normPath(path)

	var rows *sql.Rows
	var err error
	if path == "" {
		rows, err = fs.db.Query(`SELECT path FROM files ORDER BY path`)
	} else {
		rows, err = fs.db.Query(`SELECT path FROM files WHERE path = ? OR path LIKE ? || '%' ORDER BY path`, path, path+"/")
	}
	if err != nil {
		return nil, fmt.Errorf("list error: %w", err)
	}
	defer rows.Close()

	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	seen := make(map[string]bool)
	var entries []types.Entry
	hasRows := path == ""

	for rows.Next() {
		var childPath string
		if err := rows.Scan(&childPath); err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		hasRows = true
		if childPath == path {
			continue
		}

		rest := strings.TrimPrefix(childPath, prefix)
		name := rest
		implicitDir := false
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			name = rest[:idx]
			implicitDir = true
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		childFullPath := prefix + name
		if implicitDir {
			entries = append(entries, types.Entry{Name: name, Path: childFullPath, IsDir: true, Perm: types.PermRX})
			continue
		}
		entry, err := fs.Stat(ctx, childFullPath)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}

	if !hasRows {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	return entries, nil
}

// Metadata synthesizes a record from the row; the primary key doubles
// as the inode number.
func (fs *SQLiteFS) Metadata(_ context.Context, path string) (*types.Metadata, error) {
	path = normPath(path)

	var id, size, modified int64
	var isDir bool
	var permInt int
	err := fs.db.QueryRow(`SELECT id, size, is_dir, perm, modified FROM files WHERE path = ?`, path).
		Scan(&id, &size, &isDir, &permInt, &modified)
	if err == sql.ErrNoRows {
		// Implicit directory rows have no identity of their own.
		entry, statErr := fs.Stat(context.Background(), path)
		if statErr != nil {
			return nil, statErr
		}
		return rowMetadata(0, entry.Size, true, int(entry.Perm), entry.Modified.Unix()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("metadata error: %w", err)
	}
	return rowMetadata(uint64(id), size, isDir, permInt, modified), nil
}

func rowMetadata(ino uint64, size int64, isDir bool, permInt int, modified int64) *types.Metadata {
	var mode uint32
	if isDir {
		mode = 0o040000
	} else {
		mode = 0o100000
	}
	perm := types.Perm(permInt)
	if perm.CanRead() {
		mode |= 0o444
	}
	if perm.CanWrite() {
		mode |= 0o200
	}
	if perm.CanExec() || isDir {
		mode |= 0o111
	}
	return &types.Metadata{
		Ino:     ino,
		Mode:    mode,
		Nlink:   1,
		Size:    size,
		Atime:   modified,
		Mtime:   modified,
		Ctime:   modified,
		Blksize: 4096,
		Blocks:  (size + 511) / 512,
	}
}

type searchCandidate struct {
	rel   string // slash-prefixed path below the searched directory
	full  string // mount-relative path of the entry
	isDir bool
}

// NativeSearch answers a search over the subtree at relPath with one
// indexed scan instead of a per-directory walk. Candidates are matched
// the same way the tree walker matches them: against their location
// below the searched directory, with implicit directories counting as
// entries. Matches go straight into out; the caller adopts the count
// and any error verbatim.
func (fs *SQLiteFS) NativeSearch(ctx context.Context, mountPath, relPath, pattern string, flags types.Flags, out *types.ResultBuffer) (int, error) {
	relPath = normPath(relPath)

	var rows *sql.Rows
	var err error
	if relPath == "" {
		rows, err = fs.db.Query(`SELECT path, is_dir FROM files ORDER BY path`)
	} else {
		rows, err = fs.db.Query(`SELECT path, is_dir FROM files WHERE path LIKE ? || '%' ORDER BY path`, relPath+"/")
	}
	if err != nil {
		return 0, fmt.Errorf("search scan: %w", err)
	}
	defer rows.Close()

	prefix := ""
	if relPath != "" {
		prefix = relPath + "/"
	}

	seen := make(map[string]bool)
	var candidates []searchCandidate
	addCandidate := func(full string, isDir bool) {
		if seen[full] {
			return
		}
		seen[full] = true
		candidates = append(candidates, searchCandidate{
			rel:   "/" + strings.TrimPrefix(full, prefix),
			full:  full,
			isDir: isDir,
		})
	}

	for rows.Next() {
		var p string
		var isDir bool
		if err := rows.Scan(&p, &isDir); err != nil {
			return 0, fmt.Errorf("scanning path: %w", err)
		}
		// Ancestors between relPath and the row are directories the
		// walker would have visited as entries.
		for dir := path.Dir(p); dir != "." && dir != "/" && len(dir) > len(relPath); dir = path.Dir(dir) {
			addCandidate(dir, true)
		}
		addCandidate(p, isDir)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("search scan: %w", err)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].full < candidates[j].full })

	results := 0
	for _, c := range candidates {
		if glob.MatchPath(c.rel, pattern) != glob.Success {
			continue
		}
		var meta *types.Metadata
		if flags.Has(types.IncludeMetadata) {
			m, err := fs.Metadata(ctx, c.full)
			if err != nil {
				return results, err
			}
			meta = m
		}
		report := baseName(c.full)
		if flags.Has(types.IncludeRoot) {
			mp := mountPath
			if mp == "/" {
				mp = ""
			}
			report = mp + "/" + c.full
		}
		if err := out.Emit(report, meta); err != nil {
			return results, err
		}
		results++
		if flags.Has(types.StopAtFirst) {
			break
		}
	}
	return results, nil
}

func (fs *SQLiteFS) MountInfo() (string, string) { return "sqlitefs", fs.dbPath }
