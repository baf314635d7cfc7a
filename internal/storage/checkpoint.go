package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// maxAutoCheckpoints bounds how many automatic checkpoints are kept.
const maxAutoCheckpoints = 5

// checkpointTables are counted into every checkpoint's metadata.
var checkpointTables = map[string]string{
	"transactions":    "SELECT COUNT(*) FROM transactions",
	"categories":      "SELECT COUNT(*) FROM categories",
	"recurring_bills": "SELECT COUNT(*) FROM recurring_bills",
	"goals":           "SELECT COUNT(*) FROM goals",
	"monthly_history": "SELECT COUNT(*) FROM monthly_savings_snapshots",
	"weekly_logs":     "SELECT COUNT(*) FROM weekly_logs",
}

// CheckpointManager snapshots the database file next to it under checkpoints/.
type CheckpointManager struct {
	db             *sql.DB
	dbPath         string
	checkpointsDir string
}

// CheckpointMetadata is written beside each checkpoint as <id>.meta.json.
type CheckpointMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// CheckpointInfo is the listing view of a checkpoint.
type CheckpointInfo struct {
	CreatedAt     time.Time
	ID            string
	Description   string
	FileSize      int64
	Transactions  int
	Bills         int
	MonthlyRows   int
	WeeklyRows    int
	SchemaVersion int
	IsAuto        bool
}

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id")
	ErrDiskSpaceLow        = errors.New("insufficient disk space for checkpoint")
)

// NewCheckpointManager creates the checkpoints directory beside dbPath.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	if dbPath == ":memory:" {
		return nil, fmt.Errorf("checkpoints need a database file")
	}
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	checkpointsDir := filepath.Join(filepath.Dir(absPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{db: db, dbPath: absPath, checkpointsDir: checkpointsDir}, nil
}

// Create copies the live database into a new checkpoint. An empty tag gets a timestamped name.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

// AutoCheckpoint takes a checkpoint before a destructive command and prunes old automatic ones.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, reason string) (*CheckpointInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", reason, time.Now().Format("2006-01-02-150405"))
	info, err := cm.create(ctx, tag, "Automatic checkpoint before "+reason, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.pruneAuto(ctx); err != nil {
		slog.Warn("failed to prune auto-checkpoints", "error", err)
	}
	return info, nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + time.Now().Format("2006-01-02-150405")
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	dbPath, metaPath := cm.paths(tag)
	if _, err := os.Stat(dbPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	version, _, err := schemaVersion(ctx, cm.db)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(cm.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	if !cm.hasEnoughDiskSpace(stat.Size() + stat.Size()/10) {
		return nil, ErrDiskSpaceLow
	}

	if err := cm.backupDatabase(ctx, dbPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}
	backup, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	metadata := CheckpointMetadata{
		ID:            tag,
		CreatedAt:     time.Now().UTC(),
		Description:   description,
		FileSize:      backup.Size(),
		RowCounts:     cm.collectRowCounts(ctx),
		SchemaVersion: version,
		IsAuto:        auto,
	}
	if err := saveMetadata(metaPath, metadata); err != nil {
		if rmErr := os.Remove(dbPath); rmErr != nil {
			slog.Error("failed to remove checkpoint after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	if err := cm.recordMetadata(ctx, metadata); err != nil {
		slog.Warn("failed to record checkpoint in database", "error", err)
	}

	slog.Info("created checkpoint", "id", tag, "size", metadata.FileSize, "auto", auto)
	info := metadata.info()
	return &info, nil
}

// List returns every readable checkpoint, newest first.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	var checkpoints []CheckpointInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		metadata, err := loadMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, metadata.info())
	}

	slices.SortFunc(checkpoints, func(a, b CheckpointInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return checkpoints, nil
}

// Info returns one checkpoint's metadata.
func (cm *CheckpointManager) Info(_ context.Context, id string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(id); err != nil {
		return nil, err
	}
	_, metaPath := cm.paths(id)
	metadata, err := loadMetadata(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	info := metadata.info()
	return &info, nil
}

// Restore replaces the database file with a checkpoint. It closes the
// manager's connection, so the owning storage must be reopened afterwards.
func (cm *CheckpointManager) Restore(ctx context.Context, id string) error {
	if _, err := cm.Info(ctx, id); err != nil {
		return err
	}
	dbPath, _ := cm.paths(id)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	if err := verifyIntegrity(ctx, dbPath); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointCorrupted, err)
	}

	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		slog.Warn("failed to checkpoint WAL before restore", "error", err)
	}
	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}
	if err := copyFile(dbPath, cm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, cm.dbPath); restoreErr != nil {
			slog.Error("failed to put back database after restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove stale journal file", "file", cm.dbPath+suffix, "error", err)
		}
	}
	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove restore backup", "error", err)
	}

	slog.Info("restored checkpoint", "id", id)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(ctx context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}
	dbPath, metaPath := cm.paths(id)

	if err := os.Remove(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if err := os.Remove(metaPath); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metaPath)
	}
	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove checkpoint record", "error", err, "id", id)
	}
	return nil
}

func (cm *CheckpointManager) pruneAuto(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept <= maxAutoCheckpoints {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("failed to delete old auto-checkpoint", "error", err, "checkpoint", cp.ID)
		}
	}
	return nil
}

func (cm *CheckpointManager) paths(id string) (dbPath, metaPath string) {
	return filepath.Join(cm.checkpointsDir, id+".db"), filepath.Join(cm.checkpointsDir, id+".meta.json")
}

func (cm *CheckpointManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(checkpointTables))
	for table, query := range checkpointTables {
		var n int
		if err := cm.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			slog.Debug("failed to count rows", "table", table, "error", err)
		}
		counts[table] = n
	}
	return counts
}

func (cm *CheckpointManager) hasEnoughDiskSpace(required int64) bool {
	spaceFile := filepath.Join(cm.checkpointsDir, ".space-test")
	// #nosec G304 - spaceFile is inside the checkpoints directory
	f, err := os.Create(spaceFile)
	if err != nil {
		return false
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(spaceFile)
	}()
	return f.Truncate(required) == nil
}

func (cm *CheckpointManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if strings.ContainsAny(destPath, `'";`) || !filepath.IsAbs(destPath) {
		return fmt.Errorf("invalid destination path %q", destPath)
	}
	// #nosec G201 - destPath is validated above
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, copying file instead", "error", err)
		return copyFile(cm.dbPath, destPath)
	}
	return nil
}

func (cm *CheckpointManager) recordMetadata(ctx context.Context, metadata CheckpointMetadata) error {
	counts, err := json.Marshal(metadata.RowCounts)
	if err != nil {
		return err
	}
	_, err = cm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoint_metadata
			(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metadata.ID, formatTime(metadata.CreatedAt), metadata.Description, metadata.FileSize,
		string(counts), metadata.SchemaVersion, metadata.IsAuto,
	)
	return err
}

func (m CheckpointMetadata) info() CheckpointInfo {
	return CheckpointInfo{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		Description:   m.Description,
		FileSize:      m.FileSize,
		Transactions:  m.RowCounts["transactions"],
		Bills:         m.RowCounts["recurring_bills"],
		MonthlyRows:   m.RowCounts["monthly_history"],
		WeeklyRows:    m.RowCounts["weekly_logs"],
		SchemaVersion: m.SchemaVersion,
		IsAuto:        m.IsAuto,
	}
}

func validateCheckpointID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointID, id)
	}
	return nil
}

func saveMetadata(path string, metadata CheckpointMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadMetadata(path string) (*CheckpointMetadata, error) {
	// #nosec G304 - path is built from a validated checkpoint id
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var metadata CheckpointMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check returned %s", result)
	}
	return nil
}

// copyFile writes through a temporary file and renames it into place.
func copyFile(src, dst string) error {
	// #nosec G304 - callers pass paths under the database directory
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	// #nosec G304
	destination, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
