package job

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

	"github.com/natefinch/atomic"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/model"
)

const (
	snapshotPrefix = "snapshot-"
	snapshotSuffix = ".json"
	snapshotLayout = "20060102T150405.000000000Z"
)

type SiteReader interface {
	Read(ctx context.Context) (*model.SiteData, error)
}

// SnapshotJob dumps the whole site to a timestamped JSON file and keeps the
// newest keep files. A keep of zero or less disables pruning.
type SnapshotJob struct {
	reader SiteReader
	dir    string
	keep   int
	now    func() time.Time
}

func NewSnapshotJob(reader SiteReader, dir string, keep int) *SnapshotJob {
	return &SnapshotJob{reader: reader, dir: dir, keep: keep, now: time.Now}
}

func (j *SnapshotJob) Name() string {
	return "site_snapshot"
}

func (j *SnapshotJob) Run(ctx context.Context) error {
	data, err := j.reader.Read(ctx)
	if err != nil {
		return fmt.Errorf("read site: %w", err)
	}
	raw, err := json.MarshalIndent(data.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	path, err := j.nextPath()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logutil.GetLogger(ctx).Info("snapshot written",
		zap.String("path", path),
		zap.Int("pages", len(data.Pages)),
		zap.Int("categories", len(data.Categories)),
	)
	return j.prune(ctx)
}

// nextPath names the snapshot after the current time. A name that is
// already taken moves forward a nanosecond so names stay unique and keep
// sorting by creation.
func (j *SnapshotJob) nextPath() (string, error) {
	at := j.now().UTC()
	for {
		path := filepath.Join(j.dir, snapshotPrefix+at.Format(snapshotLayout)+snapshotSuffix)
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat snapshot: %w", err)
		}
		at = at.Add(time.Nanosecond)
	}
}

func (j *SnapshotJob) prune(ctx context.Context) error {
	if j.keep <= 0 {
		return nil
	}
	names, err := Snapshots(j.dir)
	if err != nil {
		return err
	}
	if len(names) <= j.keep {
		return nil
	}
	for _, name := range names[:len(names)-j.keep] {
		if err := os.Remove(filepath.Join(j.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove snapshot %s: %w", name, err)
		}
		logutil.GetLogger(ctx).Debug("snapshot pruned", zap.String("name", name))
	}
	return nil
}

// Snapshots lists snapshot file names in dir, oldest first.
func Snapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
