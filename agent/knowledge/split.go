package knowledge

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

const pieceSep = "#"

// newSplitter cuts text longer than size runes at paragraph, line, sentence
// and finally word boundaries, repeating overlap runes between neighbours.
func newSplitter(ctx context.Context, size, overlap int) (document.Transformer, error) {
	if size <= 0 {
		size = DefaultConfig.ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   size,
		OverlapSize: overlap,
		Separators:  []string{"\n\n", "\n", ". ", " "},
		LenFunc:     utf8.RuneCountInString,
		KeepType:    recursive.KeepTypeEnd,
		IDGenerator: func(_ context.Context, id string, i int) string {
			return fmt.Sprintf("%s%s%d", id, pieceSep, i+1)
		},
	})
}

// splitChunks runs chunks through t. A chunk that comes back whole keeps its
// ID; the pieces of a split chunk are numbered id#1, id#2 and so on.
func splitChunks(ctx context.Context, t document.Transformer, chunks []Chunk) ([]Chunk, error) {
	docs := make([]*schema.Document, len(chunks))
	sections := make(map[string]string, len(chunks))
	for i, c := range chunks {
		docs[i] = &schema.Document{ID: c.ID, Content: c.Text}
		sections[c.ID] = c.Section
	}

	split, err := t.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("split knowledge chunks: %w", err)
	}

	pieces := split[:0]
	for _, p := range split {
		if p != nil && strings.TrimSpace(p.Content) != "" {
			pieces = append(pieces, p)
		}
	}

	parents := make([]string, len(pieces))
	counts := make(map[string]int, len(chunks))
	for i, p := range pieces {
		parents[i] = p.ID
		if cut := strings.LastIndex(p.ID, pieceSep); cut >= 0 {
			parents[i] = p.ID[:cut]
		}
		counts[parents[i]]++
	}

	out := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		id := p.ID
		if counts[parents[i]] == 1 {
			id = parents[i]
		}
		out = append(out, Chunk{ID: id, Section: sections[parents[i]], Text: p.Content})
	}
	return out, nil
}
