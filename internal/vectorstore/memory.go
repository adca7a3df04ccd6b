package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Domenick1991/ragbooking/internal/domain"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Payload is stored next to every vector and comes back with search hits.
type Payload struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
	ChunkID    int    `json:"chunk_id"`
	Filename   string `json:"filename,omitempty"`
}

type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

type Store interface {
	Upsert(ctx context.Context, points []Point) error
	// Search returns at most topK chunks ordered by descending cosine
	// similarity. A non-empty documentID restricts the search to that document.
	Search(ctx context.Context, vector []float32, topK int, documentID string) ([]domain.RetrievedChunk, error)
}

// Memory keeps points in process memory. Points are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	points map[string]Point
	docs   map[string]map[string]struct{}
	dim    int
}

func NewMemory() *Memory {
	return &Memory{
		points: make(map[string]Point),
		docs:   make(map[string]map[string]struct{}),
	}
}

func (m *Memory) Upsert(ctx context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range points {
		if len(p.Vector) == 0 {
			return fmt.Errorf("point %s: empty vector", p.ID)
		}
		if m.dim == 0 {
			m.dim = len(p.Vector)
		}
		if len(p.Vector) != m.dim {
			return fmt.Errorf("point %s: %w: got %d, want %d", p.ID, ErrDimensionMismatch, len(p.Vector), m.dim)
		}
	}

	for _, p := range points {
		if old, ok := m.points[p.ID]; ok {
			delete(m.docs[old.Payload.DocumentID], p.ID)
		}
		m.points[p.ID] = p
		ids, ok := m.docs[p.Payload.DocumentID]
		if !ok {
			ids = make(map[string]struct{})
			m.docs[p.Payload.DocumentID] = ids
		}
		ids[p.ID] = struct{}{}
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, vector []float32, topK int, documentID string) ([]domain.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dim != 0 && len(vector) != m.dim {
		return nil, fmt.Errorf("query: %w: got %d, want %d", ErrDimensionMismatch, len(vector), m.dim)
	}

	candidates := make([]Point, 0, len(m.points))
	if documentID != "" {
		for id := range m.docs[documentID] {
			candidates = append(candidates, m.points[id])
		}
	} else {
		for _, p := range m.points {
			candidates = append(candidates, p)
		}
	}

	results := make([]domain.RetrievedChunk, 0, len(candidates))
	for _, p := range candidates {
		results = append(results, domain.RetrievedChunk{
			Text:       p.Payload.Text,
			DocumentID: p.Payload.DocumentID,
			ChunkID:    p.Payload.ChunkID,
			Score:      cosineSimilarity(vector, p.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].DocumentID != results[j].DocumentID {
			return results[i].DocumentID < results[j].DocumentID
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete drops every point of a document.
func (m *Memory) Delete(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.docs[documentID] {
		delete(m.points, id)
	}
	delete(m.docs, documentID)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Store = (*Memory)(nil)
