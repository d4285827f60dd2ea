package knowledge

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/embedding"
	openaisdk "github.com/openai/openai-go"
)

const defaultHashingDims = 512

var (
	_ embedding.Embedder = (*HashingEmbedder)(nil)
	_ embedding.Embedder = (*OpenAIEmbedder)(nil)
)

// HashingEmbedder maps text to a fixed-size vector of hashed word and
// character-trigram counts. It needs no network and is deterministic.
type HashingEmbedder struct {
	Dims int
}

func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = defaultHashingDims
	}
	return &HashingEmbedder{Dims: dims}
}

func (e *HashingEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *HashingEmbedder) embed(text string) []float64 {
	dims := e.Dims
	if dims <= 0 {
		dims = defaultHashingDims
	}
	vec := make([]float64, dims)
	for _, word := range tokenize(text) {
		vec[bucket(word, dims)] += 1
		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			vec[bucket(string(padded[i:i+3]), dims)] += 0.5
		}
	}
	normalize(vec)
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func bucket(s string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dims))
}

func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	n := math.Sqrt(sum)
	for i := range v {
		v[i] /= n
	}
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openaisdk.Client
	model  string
}

func NewOpenAIEmbedder(client *openaisdk.Client, model string) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("embedding model is required")
	}
	return &OpenAIEmbedder{client: client, model: strings.TrimSpace(model)}, nil
}

func (e *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openaisdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("embedding for input %d missing from response", i)
		}
	}
	return out, nil
}
