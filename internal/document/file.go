package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/grocer/internal/model"
)

// File names inside a FileSink directory.
const (
	GroceriesFile = "groceries.json"
	ListFile      = "list.json"
)

// FileSink stores the snapshot as groceries.json and list.json in a
// directory. Both files are staged before either is replaced; if the list
// cannot be replaced the previous catalog is put back.
type FileSink struct {
	dir    string
	logger *slog.Logger
}

// NewFileSink returns a sink rooted at dir. A nil logger uses slog.Default().
func NewFileSink(dir string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{dir: dir, logger: logger}
}

// Dir returns the directory holding the documents.
func (s *FileSink) Dir() string {
	return s.dir
}

// Load reads both documents concurrently. A missing file yields the empty
// document for that half.
func (s *FileSink) Load(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		data, ok, err := readIfExists(filepath.Join(s.dir, GroceriesFile))
		if err != nil || !ok {
			return err
		}
		return decodeGroceries(data, &snap.Groceries)
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		data, ok, err := readIfExists(filepath.Join(s.dir, ListFile))
		if err != nil || !ok {
			return err
		}
		return decodeList(data, &snap.List)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.normalize()
	return snap, nil
}

// Save stages both documents as temp files, then renames them into place,
// catalog first. A failed list rename restores the previous catalog, so a
// failed save leaves the directory as it was.
func (s *FileSink) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	groceriesPath := filepath.Join(s.dir, GroceriesFile)
	listPath := filepath.Join(s.dir, ListFile)

	prev, hadPrev, err := readIfExists(groceriesPath)
	if err != nil {
		return err
	}

	groceriesTmp, err := stageJSON(groceriesPath, snap.Groceries)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(groceriesTmp) }()

	listTmp, err := stageJSON(listPath, snap.List)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(listTmp) }()

	if err := os.Rename(groceriesTmp, groceriesPath); err != nil {
		return fmt.Errorf("replace %s: %w", GroceriesFile, err)
	}
	if err := os.Rename(listTmp, listPath); err != nil {
		if rerr := restoreFile(groceriesPath, prev, hadPrev); rerr != nil {
			s.logger.Error("failed to restore catalog after list save failure",
				"path", groceriesPath, "error", rerr)
			return fmt.Errorf("replace %s: %w (restore %s: %v)", ListFile, err, GroceriesFile, rerr)
		}
		return fmt.Errorf("replace %s: %w", ListFile, err)
	}

	s.logger.Debug("documents saved", "dir", s.dir,
		"items", len(snap.Groceries.Collection),
		"list_items", len(snap.List.Items))
	return nil
}

// Close is a no-op; files are not held open between calls.
func (s *FileSink) Close() error { return nil }

func readIfExists(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

func decodeGroceries(data []byte, out *Groceries) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", GroceriesFile, err)
	}
	return nil
}

// decodeList accepts the current layout and the older one that stored list
// items under "groceries".
func decodeList(data []byte, out *model.List) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", ListFile, err)
	}
	if gjson.GetBytes(data, "items").Exists() {
		return nil
	}
	legacy := gjson.GetBytes(data, "groceries")
	if !legacy.Exists() || !legacy.IsArray() {
		return nil
	}
	var items model.Items
	if err := json.Unmarshal([]byte(legacy.Raw), &items); err != nil {
		return fmt.Errorf("decode %s groceries: %w", ListFile, err)
	}
	out.Items = items
	return nil
}

// stageJSON writes v to a synced temp file next to path and returns the
// temp file's name. The caller renames or removes it.
func stageJSON(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return stageBytes(path, data)
}

func stageBytes(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return tmp.Name(), nil
}

// restoreFile puts back the bytes path held before a save, or removes path
// when it did not exist.
func restoreFile(path string, prev []byte, existed bool) error {
	if !existed {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	tmp, err := stageBytes(path, prev)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
