package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"coursevault-backend/logging"
	"coursevault-backend/utils"
)

const (
	shardFilePattern = "titles_*.csv"
	defaultShardKey  = "00"
)

var shardHeader = []string{"Media ID", "Title"}

// ShardKey returns the shard an identifier is persisted in: its first two
// characters, or "00" for shorter identifiers. Prefixes that cannot be part
// of a file name also map to "00".
func ShardKey(mediaID string) string {
	r1, first := utf8.DecodeRuneInString(mediaID)
	r2, second := utf8.DecodeRuneInString(mediaID[first:])
	if second == 0 || r1 == utf8.RuneError || r2 == utf8.RuneError {
		return defaultShardKey
	}
	key := mediaID[:first+second]
	if strings.ContainsAny(key, "/\\\x00") {
		return defaultShardKey
	}
	return key
}

// ShardFileName returns the file name of a shard within the titles directory.
func ShardFileName(key string) string {
	return "titles_" + key + ".csv"
}

// TitleCache maps media identifiers to titles, persisted as CSV shards.
//
// Reads and writes of the map are guarded by mu; SaveAll additionally holds
// saveMu so that two concurrent flushes cannot interleave their shard rewrites.
type TitleCache struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	titles map[string]string

	saveMu sync.Mutex
}

// NewTitleCache creates an empty cache rooted at dir. Call LoadAll to read
// previously persisted shards.
func NewTitleCache(dir string, logger *slog.Logger) *TitleCache {
	return &TitleCache{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "title_cache"),
		titles: make(map[string]string),
	}
}

// Dir returns the directory holding the shard files.
func (c *TitleCache) Dir() string {
	return c.dir
}

// LoadAll replaces the in-memory state with the contents of every shard file.
// Shards are read in file name order; a shard that cannot be parsed is logged
// and skipped.
func (c *TitleCache) LoadAll() error {
	files, err := utils.FindFiles(c.dir, shardFilePattern)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("list title shards: %w", err)
	}

	loaded := make(map[string]string)
	for _, file := range files {
		rows, err := readShard(file)
		if err != nil {
			c.logger.Error("failed to load title shard, skipping",
				slog.String("path", file),
				logging.Error(err))
			continue
		}
		for _, row := range rows {
			loaded[row[0]] = row[1]
		}
	}

	c.mu.Lock()
	c.titles = loaded
	c.mu.Unlock()

	c.logger.Info("loaded cached titles",
		slog.Int("count", len(loaded)),
		slog.Int("shards", len(files)),
		slog.String("dir", c.dir))
	return nil
}

func readShard(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][2]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		rows = append(rows, [2]string{record[0], record[1]})
	}
	return rows, nil
}

// Get returns the cached title for mediaID.
func (c *TitleCache) Get(mediaID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	title, ok := c.titles[mediaID]
	return title, ok
}

// Put inserts or overwrites a title. It does not persist; call SaveAll.
func (c *TitleCache) Put(mediaID, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles[mediaID] = title
}

// Len returns the number of cached titles.
func (c *TitleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.titles)
}

// IDs returns every cached identifier in sorted order.
func (c *TitleCache) IDs() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.titles))
	for id := range c.titles {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of the cached mapping.
func (c *TitleCache) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.titles))
	for id, title := range c.titles {
		out[id] = title
	}
	return out
}

// SaveAll rewrites every shard from the in-memory mapping, including shards
// whose entries did not change.
func (c *TitleCache) SaveAll() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	shards := make(map[string][][2]string)
	for id, title := range c.Snapshot() {
		key := ShardKey(id)
		shards[key] = append(shards[key], [2]string{id, title})
	}

	if err := utils.EnsureDir(c.dir); err != nil {
		return fmt.Errorf("create titles dir: %w", err)
	}

	keys := make([]string, 0, len(shards))
	for key := range shards {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		rows := shards[key]
		sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

		path := filepath.Join(c.dir, ShardFileName(key))
		if err := utils.WriteFileAtomic(path, func(w io.Writer) error {
			return writeShard(w, rows)
		}); err != nil {
			errs = append(errs, fmt.Errorf("write shard %s: %w", key, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	c.logger.Debug("saved title cache", slog.Int("shards", len(keys)))
	return nil
}

func writeShard(w io.Writer, rows [][2]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(shardHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row[:]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
