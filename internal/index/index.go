package index

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jarredhawkins/linestruct/internal/config"
	"github.com/jarredhawkins/linestruct/internal/lines"
	"github.com/jarredhawkins/linestruct/internal/parser"
	"github.com/jarredhawkins/linestruct/internal/types"
)

// Options tunes an Index
type Options struct {
	Filter      *config.Filter // nil indexes every file
	CacheSize   int            // outline cache entries, 0 disables the cache
	Concurrency int            // files parsed in parallel by Build, default 8
	Logger      *zap.Logger
}

// OptionsFromConfig maps settings onto index options
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) Options {
	return Options{
		Filter:      cfg.Filter(),
		CacheSize:   cfg.CacheSize,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}
}

// fileEntry is everything indexed for one file
type fileEntry struct {
	lines  []string
	blocks []*types.Block
	sum    [sha256.Size]byte
}

// BlockRef locates a block in an indexed file
type BlockRef struct {
	Path  string
	Block *types.Block
}

// Index provides block outlines and text search over a workspace
type Index struct {
	mu sync.RWMutex

	// File index: path -> parsed content
	files map[string]*fileEntry

	// Trigram index for text search
	trigram *TrigramIndex

	// Parsed outlines keyed by content hash, shared by identical files
	cache *lru.Cache[[sha256.Size]byte, []*types.Block]

	rootPath    string
	scanner     *parser.Scanner
	filter      *config.Filter
	concurrency int
	logger      *zap.Logger
}

// New creates a new index for the given root path
func New(rootPath string, registry *parser.Registry, opts Options) (*Index, error) {
	idx := &Index{
		files:       make(map[string]*fileEntry),
		trigram:     NewTrigramIndex(),
		rootPath:    rootPath,
		scanner:     parser.NewScanner(registry),
		filter:      opts.Filter,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if idx.filter == nil {
		idx.filter = config.NewFilter(nil, nil)
	}
	if idx.concurrency < 1 {
		idx.concurrency = 8
	}
	if idx.logger == nil {
		idx.logger = zap.NewNop()
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[[sha256.Size]byte, []*types.Block](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create outline cache: %w", err)
		}
		idx.cache = cache
	}

	return idx, nil
}

// Build performs the initial indexing of every accepted file under the root
func (idx *Index) Build(ctx context.Context) error {
	idx.logger.Info("building index", zap.String("root", idx.rootPath))

	var files []string
	err := filepath.WalkDir(idx.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(idx.rootPath, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if idx.filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if idx.filter.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	idx.logger.Info("found files", zap.Int("count", len(files)))

	// Index files concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.concurrency)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := idx.AddFile(file); err != nil {
				idx.logger.Warn("failed to index file", zap.String("path", file), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	idx.logger.Info("index built",
		zap.Int("files", idx.FileCount()),
		zap.Int("blocks", idx.BlockCount()))
	return nil
}

// Accepts reports whether path lies under the root and passes the filter
func (idx *Index) Accepts(path string) bool {
	rel, err := filepath.Rel(idx.rootPath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return idx.filter.Match(rel)
}

// AddFile reads, parses and indexes a single file
func (idx *Index) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	idx.AddContent(path, content)
	return nil
}

// AddContent indexes content under path, replacing what was indexed before
func (idx *Index) AddContent(path string, content []byte) {
	entry := &fileEntry{
		lines: lines.FromText(string(content)),
		sum:   sha256.Sum256(content),
	}
	entry.blocks = idx.parse(entry)

	idx.mu.Lock()
	idx.files[path] = entry
	idx.mu.Unlock()

	idx.trigram.AddFile(path, content)
}

// parse returns the cached outline for the entry's content or parses it
func (idx *Index) parse(entry *fileEntry) []*types.Block {
	if idx.cache != nil {
		if blocks, ok := idx.cache.Get(entry.sum); ok {
			return blocks
		}
	}

	blocks := idx.scanner.Parse(entry.lines)
	if idx.cache != nil {
		idx.cache.Add(entry.sum, blocks)
	}
	return blocks
}

// RemoveFile removes everything indexed for a file
func (idx *Index) RemoveFile(path string) {
	idx.mu.Lock()
	delete(idx.files, path)
	idx.mu.Unlock()

	idx.trigram.RemoveFile(path)
}

// UpdateFile re-indexes a file, removing it when it no longer exists
func (idx *Index) UpdateFile(path string) error {
	err := idx.AddFile(path)
	if os.IsNotExist(err) {
		idx.RemoveFile(path)
		return nil
	}
	return err
}

// Outline returns the top-level blocks of an indexed file
func (idx *Index) Outline(path string) []*types.Block {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.files[path]
	if !ok {
		return nil
	}
	return entry.blocks
}

// Lines returns the source lines of an indexed file
func (idx *Index) Lines(path string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if entry, ok := idx.files[path]; ok {
		return entry.lines
	}
	return nil
}

// Parse runs the index's scanner over content without indexing it
func (idx *Index) Parse(content []byte) []*types.Block {
	return idx.parse(&fileEntry{
		lines: lines.FromText(string(content)),
		sum:   sha256.Sum256(content),
	})
}

// FindBlocks returns every named block whose header contains query, ignoring
// case, ordered by path and line
func (idx *Index) FindBlocks(query string) []BlockRef {
	q := strings.ToLower(query)

	idx.mu.RLock()
	var refs []BlockRef
	for path, entry := range idx.files {
		parser.Walk(entry.blocks, func(b *types.Block, _ int) bool {
			if b.Name != "" && strings.Contains(strings.ToLower(b.Header()), q) {
				refs = append(refs, BlockRef{Path: path, Block: b})
			}
			return true
		})
	}
	idx.mu.RUnlock()

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Path != refs[j].Path {
			return refs[i].Path < refs[j].Path
		}
		return refs[i].Block.Line < refs[j].Block.Line
	})
	return refs
}

// FindDefinitions returns every named block whose header holds word as a
// whole word, ordered by path and line
func (idx *Index) FindDefinitions(word string) []BlockRef {
	if word == "" {
		return nil
	}
	re := wordPattern(word)

	var refs []BlockRef
	for _, ref := range idx.FindBlocks(word) {
		if re.MatchString(ref.Block.Lines[0]) {
			refs = append(refs, ref)
		}
	}
	return refs
}

// FindReferences finds whole-word occurrences of word using trigram search
func (idx *Index) FindReferences(word string) []*types.Reference {
	return idx.trigram.Search(word)
}

// FindReferencesInFile restricts FindReferences to one file
func (idx *Index) FindReferencesInFile(path, word string) []*types.Reference {
	return idx.trigram.SearchFile(path, word)
}

// Files returns the indexed paths in sorted order
func (idx *Index) Files() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	paths := make([]string, 0, len(idx.files))
	for path := range idx.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// FileCount returns the number of indexed files
func (idx *Index) FileCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.files)
}

// BlockCount returns the total number of indexed blocks
func (idx *Index) BlockCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	count := 0
	for _, entry := range idx.files {
		count += parser.Count(entry.blocks)
	}
	return count
}

// RootPath returns the root path of the index
func (idx *Index) RootPath() string {
	return idx.rootPath
}
