// Package knowledge builds the textual knowledge base the information agent
// answers from, and serves it either whole or as the chunks most relevant to
// a query.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/restaurant-assistant/pkg/metrics"
)

var (
	ErrEmpty   = errors.New("knowledge base is empty")
	ErrNoMatch = errors.New("no relevant knowledge found")
)

type Strategy string

const (
	StrategyFull   Strategy = "full"
	StrategyRanked Strategy = "ranked"
)

const (
	EmbedderHashing = "hashing"
	EmbedderOpenAI  = "openai"
)

type Config struct {
	Strategy       string  `envconfig:"STRATEGY" default:"full"`
	TopK           int     `envconfig:"TOP_K" split_words:"true" default:"3"`
	ChunkSize      int     `envconfig:"CHUNK_SIZE" split_words:"true" default:"1000"`
	ChunkOverlap   int     `envconfig:"CHUNK_OVERLAP" split_words:"true" default:"200"`
	MinScore       float64 `envconfig:"MIN_SCORE" split_words:"true" default:"0"`
	Embedder       string  `envconfig:"EMBEDDER" default:"hashing"`
	EmbeddingModel string  `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
}

var DefaultConfig = Config{
	Strategy:     string(StrategyFull),
	TopK:         3,
	ChunkSize:    1000,
	ChunkOverlap: 200,
	Embedder:     EmbedderHashing,
}

type Option func(*Base)

// WithEmbedder sets the embedder used by the ranked strategy.
func WithEmbedder(e embedding.Embedder) Option {
	return func(b *Base) {
		if e != nil {
			b.embedder = e
		}
	}
}

var _ retriever.Retriever = (*Base)(nil)

// Base owns the knowledge index. The index is built from the source on first
// use and then reused; a failed build is retried on the next call.
type Base struct {
	src      Source
	strategy Strategy
	cfg      Config
	embedder embedding.Embedder
	splitter document.Transformer

	mu     sync.Mutex
	idx    *index
	builds int
}

type index struct {
	empty   bool
	full    string
	chunks  []Chunk
	vectors [][]float64
}

func New(src Source, cfg Config, opts ...Option) (*Base, error) {
	if src == nil {
		return nil, errors.New("knowledge source is required")
	}
	strategy := Strategy(strings.ToLower(strings.TrimSpace(cfg.Strategy)))
	if strategy == "" {
		strategy = StrategyFull
	}
	if strategy != StrategyFull && strategy != StrategyRanked {
		return nil, fmt.Errorf("unknown knowledge strategy %q", cfg.Strategy)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig.TopK
	}

	b := &Base{src: src, strategy: strategy, cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.embedder == nil {
		b.embedder = NewHashingEmbedder(0)
	}
	if strategy == StrategyRanked {
		sp, err := newSplitter(context.Background(), cfg.ChunkSize, cfg.ChunkOverlap)
		if err != nil {
			return nil, fmt.Errorf("build knowledge splitter: %w", err)
		}
		b.splitter = sp
	}
	return b, nil
}

func (b *Base) Strategy() Strategy {
	return b.strategy
}

// Builds reports how many times the index has been built.
func (b *Base) Builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builds
}

// Warm builds the index ahead of the first query.
func (b *Base) Warm(ctx context.Context) error {
	_, err := b.load(ctx)
	return err
}

func (b *Base) load(ctx context.Context) (*index, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.idx != nil {
		return b.idx, nil
	}

	idx, err := b.build(ctx)
	if err != nil {
		return nil, err
	}
	b.idx = idx
	b.builds++
	metrics.KnowledgeBuilds.Inc()
	log.Info().
		Str("strategy", string(b.strategy)).
		Int("chunks", len(idx.chunks)).
		Bool("empty", idx.empty).
		Msg("knowledge base built")
	return idx, nil
}

func (b *Base) build(ctx context.Context) (*index, error) {
	snap, err := LoadSnapshot(ctx, b.src)
	if err != nil {
		return nil, err
	}
	if snap.Empty() {
		return &index{empty: true}, nil
	}

	idx := &index{}
	if b.strategy == StrategyFull {
		idx.full = Render(snap)
		return idx, nil
	}

	idx.chunks, err = splitChunks(ctx, b.splitter, Chunks(snap))
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(idx.chunks))
	for i, c := range idx.chunks {
		texts[i] = c.Text
	}
	idx.vectors, err = b.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed knowledge chunks: %w", err)
	}
	if len(idx.vectors) != len(idx.chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(idx.vectors), len(idx.chunks))
	}
	return idx, nil
}

// Retrieve implements retriever.Retriever. The full strategy returns a single
// document holding the whole knowledge base; the ranked strategy returns up
// to TopK chunks ordered by similarity, ties broken by position.
func (b *Base) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	idx, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx.empty {
		return nil, nil
	}
	if b.strategy == StrategyFull {
		return []*schema.Document{{
			ID:       "full",
			Content:  idx.full,
			MetaData: map[string]any{"section": "all"},
		}}, nil
	}

	topK, minScore := b.cfg.TopK, b.cfg.MinScore
	common := retriever.GetCommonOptions(&retriever.Options{TopK: &topK, ScoreThreshold: &minScore}, opts...)
	if common.TopK != nil && *common.TopK > 0 {
		topK = *common.TopK
	}
	if common.ScoreThreshold != nil {
		minScore = *common.ScoreThreshold
	}

	vecs, err := b.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}

	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, 0, len(idx.chunks))
	for i, v := range idx.vectors {
		s := cosine(vecs[0], v)
		if s <= minScore {
			continue
		}
		ranked = append(ranked, scored{pos: i, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	docs := make([]*schema.Document, 0, len(ranked))
	for _, r := range ranked {
		c := idx.chunks[r.pos]
		doc := &schema.Document{
			ID:       c.ID,
			Content:  c.Text,
			MetaData: map[string]any{"section": c.Section},
		}
		docs = append(docs, doc.WithScore(r.score))
	}
	return docs, nil
}

// Query returns the knowledge relevant to q as text. It fails with ErrEmpty
// when the store holds no restaurant data and with ErrNoMatch when the
// ranked strategy finds nothing related to q.
func (b *Base) Query(ctx context.Context, q string) (string, error) {
	docs, err := b.Retrieve(ctx, q)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		b.mu.Lock()
		empty := b.idx != nil && b.idx.empty
		b.mu.Unlock()
		if empty {
			return "", ErrEmpty
		}
		return "", ErrNoMatch
	}

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, strings.TrimRight(d.Content, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}
