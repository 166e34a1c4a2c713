package corpus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"quizbot/app/config"
	"quizbot/app/service/storage"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

// Stats summarizes one ingestion run.
type Stats struct {
	Files     int
	Failed    int
	Malformed int
	Pairs     int
	Elapsed   time.Duration
}

// Loader parses every file of a directory and writes all pairs to the bank
// in one batch.
type Loader struct {
	parser   *Parser
	bank     storage.BankStore
	encoding string
	workers  int
}

func NewLoader(parser *Parser, bank storage.BankStore, encoding string, workers int) *Loader {
	return &Loader{
		parser:   parser,
		bank:     bank,
		encoding: encoding,
		workers:  max(workers, 1),
	}
}

func New(di *do.Injector) (*Loader, error) {
	cfg := do.MustInvoke[*config.Config](di)

	parser, err := NewParser(cfg.Corpus.QuestionPattern, cfg.Corpus.AnswerPattern, cfg.Corpus.PictureIndicator)
	if err != nil {
		return nil, err
	}

	return NewLoader(
		parser,
		do.MustInvoke[*storage.Service](di),
		cfg.Corpus.Encoding,
		cfg.Corpus.Workers,
	), nil
}

// LoadDir ingests all regular files in dir. A file that cannot be read is
// logged and skipped; only a failed batch write aborts the run.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Stats, error) {
	start := time.Now()

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return Stats{}, oops.In("corpus").With("dir", dir).Wrapf(err, "failed to list quiz directory")
	}

	files := pie.Map(
		pie.Filter(dirEntries, func(e os.DirEntry) bool { return e.Type().IsRegular() }),
		func(e os.DirEntry) string { return filepath.Join(dir, e.Name()) },
	)
	slices.Sort(files)

	slog.Info("Started uploading quiz tasks", "dir", dir, "files", len(files))

	stats := Stats{Files: len(files)}
	docs := make([]*Document, len(files))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := l.parseFile(path)
			if err != nil {
				slog.Warn("Skipping quiz file", "path", path, "error", err)
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}

			docs[i] = doc
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return stats, oops.In("corpus").Wrapf(err, "ingestion interrupted")
	}

	var entries []storage.Entry
	for _, doc := range docs {
		if doc == nil {
			continue
		}

		if err := doc.Err(); err != nil {
			stats.Malformed++
			slog.Warn("Uneven question/answer count, pairing truncated", "error", err)
		}

		for question, answer := range doc.Pairs() {
			entries = append(entries, storage.Entry{Question: question, Answer: answer})
		}

		slog.Debug("Parsed quiz file", "path", doc.Name, "pairs", doc.Len())
	}

	if err = l.bank.PutEntries(ctx, entries); err != nil {
		return stats, err
	}

	stats.Pairs = len(entries)
	stats.Elapsed = time.Since(start)

	slog.Info("Uploading finished",
		"files", stats.Files,
		"failed", stats.Failed,
		"malformed", stats.Malformed,
		"pairs", stats.Pairs,
		"duration", stats.Elapsed)

	return stats, nil
}

func (l *Loader) parseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	switch l.encoding {
	case "koi8-r":
		reader = charmap.KOI8R.NewDecoder().Reader(file)
	case "utf-8", "":
	default:
		return nil, errors.New("unsupported encoding: " + l.encoding)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return l.parser.Parse(path, string(content)), nil
}
