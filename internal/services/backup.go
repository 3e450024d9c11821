package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/dustin/go-humanize"
	"github.com/huangang/portfolio/internal/store"
	"github.com/huangang/portfolio/pkg/logger"
)

const (
	backupFilePrefix   = "portfolio-backup-"
	snapshotTimeLayout = "20060102-150405"
)

// Document is an exported store: every key mapped to its JSON value.
// Stored values that are not valid JSON are exported as JSON strings.
type Document map[string]json.RawMessage

type BackupInfo struct {
	SizeBytes      int64      `json:"sizeBytes"`
	Size           string     `json:"size"`
	Keys           int        `json:"keys"`
	LastBackupTime *time.Time `json:"lastBackupTime"`
}

type SnapshotFile struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"sizeBytes"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// reloader is implemented by stores that can broadcast a full reload.
type reloader interface {
	Notify(op string)
}

type BackupService struct {
	store store.Store
	dir   string
	keep  int
	now   func() time.Time
}

func NewBackupService(s store.Store, dir string, keep int) *BackupService {
	return &BackupService{store: s, dir: dir, keep: keep, now: time.Now}
}

// Filename is the download name of an export taken at t.
func Filename(t time.Time) string {
	return backupFilePrefix + t.Format("2006-01-02") + ".json"
}

// Export snapshots the whole store, then records lastBackupTime. The
// returned document does not contain the new timestamp.
func (s *BackupService) Export(ctx context.Context) (Document, error) {
	snap, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	doc := make(Document, len(snap))
	for k, v := range snap {
		if json.Valid([]byte(v)) {
			doc[k] = json.RawMessage(v)
			continue
		}
		quoted, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		doc[k] = quoted
	}

	stamp := s.now().UTC().Format(time.RFC3339)
	if err := s.store.Set(ctx, store.KeyLastBackupTime, stamp); err != nil {
		return nil, fmt.Errorf("record backup time: %w", err)
	}
	return doc, nil
}

// Import replaces the store with the document in raw. A document that does
// not parse leaves the store untouched.
func (s *BackupService) Import(ctx context.Context, raw []byte) (int, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc == nil {
		return 0, fmt.Errorf("%w: document is not an object", ErrInvalidBackup)
	}

	values := make(map[string]string, len(doc))
	for k, v := range doc {
		if k == "" {
			return 0, fmt.Errorf("%w: empty key", ErrInvalidBackup)
		}
		val, err := storedForm(v)
		if err != nil {
			return 0, fmt.Errorf("%w: key %q: %v", ErrInvalidBackup, k, err)
		}
		values[k] = val
	}

	if err := s.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.store.Set(ctx, k, values[k]); err != nil {
			return 0, fmt.Errorf("restore %q: %w", k, err)
		}
	}

	s.notifyReload()
	logger.Infof("[Backup] Imported %d keys", len(keys))
	return len(keys), nil
}

// storedForm turns a document value back into the stored string: JSON
// strings are stored unquoted, anything else compacted.
func storedForm(v json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(v))
	if strings.HasPrefix(trimmed, `"`) {
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return "", err
		}
		return str, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ClearAll wipes every key.
func (s *BackupService) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.notifyReload()
	logger.Infof("[Backup] Store cleared")
	return nil
}

func (s *BackupService) notifyReload() {
	if r, ok := s.store.(reloader); ok {
		r.Notify(store.OpReload)
	}
}

// ComputeSize is the store's footprint counted as two bytes per UTF-16 code
// unit of each value.
func (s *BackupService) ComputeSize(ctx context.Context) (int64, error) {
	snap, err := store.Snapshot(ctx, s.store)
	if err != nil {
		return 0, err
	}
	var size int64
	for _, v := range snap {
		size += int64(len(utf16.Encode([]rune(v)))) * 2
	}
	return size, nil
}

func (s *BackupService) Info(ctx context.Context) (*BackupInfo, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	size, err := s.ComputeSize(ctx)
	if err != nil {
		return nil, err
	}
	info := &BackupInfo{
		SizeBytes: size,
		Size:      humanize.Bytes(uint64(size)),
		Keys:      len(keys),
	}

	raw, ok, err := s.store.Get(ctx, store.KeyLastBackupTime)
	if err != nil {
		return nil, err
	}
	if ok {
		if t, err := time.Parse(time.RFC3339, strings.Trim(raw, `"`)); err == nil {
			info.LastBackupTime = &t
		}
	}
	return info, nil
}

// WriteSnapshot exports the store into a timestamped file under the backup
// directory and prunes old snapshots.
func (s *BackupService) WriteSnapshot(ctx context.Context) (string, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := backupFilePrefix + s.now().UTC().Format(snapshotTimeLayout) + ".json"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	logger.Infof("[Backup] Snapshot written to %s (%s)", path, humanize.Bytes(uint64(len(data))))

	if err := s.prune(); err != nil {
		logger.Warnf("[Backup] Failed to prune snapshots: %v", err)
	}
	return path, nil
}

// ListSnapshots returns snapshot files newest first.
func (s *BackupService) ListSnapshots() ([]SnapshotFile, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []SnapshotFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]SnapshotFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupFilePrefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(e.Name(), backupFilePrefix), ".json")
		created, err := time.Parse(snapshotTimeLayout, stamp)
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, SnapshotFile{
			Name:      e.Name(),
			SizeBytes: fi.Size(),
			Size:      humanize.Bytes(uint64(fi.Size())),
			CreatedAt: created,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (s *BackupService) prune() error {
	if s.keep <= 0 {
		return nil
	}
	files, err := s.ListSnapshots()
	if err != nil {
		return err
	}
	for _, f := range files[min(s.keep, len(files)):] {
		if err := os.Remove(filepath.Join(s.dir, f.Name)); err != nil {
			return err
		}
		logger.Debug().Str("file", f.Name).Msg("[Backup] Pruned snapshot")
	}
	return nil
}
