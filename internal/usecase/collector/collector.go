package collector

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	errs "kifudb/internal/errors"
)

type Importer interface {
	Import(ctx context.Context, raw []byte, charset string) (string, error)
}

type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type Report struct {
	Files      int       `json:"files"`
	Imported   []string  `json:"imported"`
	Duplicates int       `json:"duplicates"`
	Failed     []Failure `json:"failed,omitempty"`
}

type Collector struct {
	importer Importer
	log      *zap.SugaredLogger
	workers  int
	charset  string
}

func NewCollector(importer Importer, log *zap.SugaredLogger, workers int, charset string) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		importer: importer,
		log:      log,
		workers:  workers,
		charset:  charset,
	}
}

// FindRecords возвращает все .sgf файлы под root в лексикографическом порядке.
func FindRecords(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".sgf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	sort.Strings(paths)
	return paths, nil
}

// ImportDir импортирует каталог параллельно. Ошибка одного файла попадает в
// отчёт и не останавливает остальные; прерывает работу только отмена ctx.
func (c *Collector) ImportDir(ctx context.Context, dir string) (Report, error) {
	paths, err := FindRecords(dir)
	if err != nil {
		return Report{}, err
	}
	c.log.Infof("found %d records in %s", len(paths), dir)

	report := Report{Files: len(paths)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := c.importFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Imported = append(report.Imported, id)
			case errors.Is(err, errs.ErrKifuExists):
				report.Duplicates++
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				c.log.Warnw("record skipped", "path", path, "error", err)
				report.Failed = append(report.Failed, Failure{Path: path, Error: err.Error()})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Path < report.Failed[j].Path })
	c.log.Infow("import finished", "dir", dir, "imported", len(report.Imported),
		"duplicates", report.Duplicates, "failed", len(report.Failed))
	return report, nil
}

func (c *Collector) importFile(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read")
	}
	return c.importer.Import(ctx, raw, c.charset)
}
