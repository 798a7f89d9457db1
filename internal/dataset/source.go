package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const csvExt = ".csv"

var (
	// ErrNotFound is returned when a resort directory or source file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for resort or source names that are not a single path element.
	ErrInvalidName = errors.New("invalid name")
)

const utf8BOM = "\ufeff"

// Source reads per-resort CSV files laid out as <root>/<resort>/<source>.csv.
type Source struct {
	root string
}

func NewSource(root string) *Source {
	return &Source{root: root}
}

// Root returns the data directory the source reads from.
func (s *Source) Root() string {
	return s.root
}

// Load reads every row of the named source. The first line supplies the
// column headers.
func (s *Source) Load(resort, source string) ([]Record, error) {
	path, err := s.filePath(resort, source)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s%s: %w", source, csvExt, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return readRecords(f)
}

// ListSources returns the stems of the CSV files directly inside the resort
// directory, in directory order.
func (s *Source) ListSources(resort string) ([]string, error) {
	if err := checkName(resort); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, resort)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", resort, ErrNotFound)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), csvExt) || !isFile(dir, e) {
			continue
		}
		sources = append(sources, strings.TrimSuffix(e.Name(), csvExt))
	}
	return sources, nil
}

// isFile reports whether e is a file that Load could open, following
// symlinks. Dangling links and links to directories are excluded.
func isFile(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// nameTransforms are the filename variants tried, in order, when resolving a
// source for schema lookup. The hyphen form exists for data sets exported
// with hyphenated file names while callers still use underscores.
var nameTransforms = []func(string) string{
	func(name string) string { return name },
	func(name string) string { return strings.ReplaceAll(name, "_", "-") },
}

// Headers returns the column names from the first line of the source,
// resolving the file name through nameTransforms.
//
// The line is split on every comma; quoted fields containing commas are not
// supported.
func (s *Source) Headers(resort, source string) ([]string, error) {
	var path string
	for _, transform := range nameTransforms {
		candidate, err := s.filePath(resort, transform(source))
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			path = candidate
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("file %s%s: %w", source, csvExt, ErrNotFound)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	return SplitHeader(line), nil
}

// SplitHeader comma-splits a header line and trims surrounding whitespace and
// one pair of enclosing double quotes from each field.
func SplitHeader(line string) []string {
	line = strings.TrimPrefix(line, utf8BOM)
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return []string{}
	}

	fields := strings.Split(line, ",")
	cols := make([]string, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"' {
			f = f[1 : len(f)-1]
		}
		cols[i] = f
	}
	return cols
}

func (s *Source) filePath(resort, source string) (string, error) {
	if err := checkName(resort); err != nil {
		return "", err
	}
	if err := checkName(source); err != nil {
		return "", err
	}
	return filepath.Join(s.root, resort, source+csvExt), nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	recs := []Record{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
