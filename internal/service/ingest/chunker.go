package ingest

import (
	"strings"
	"unicode"

	"github.com/Domenick1991/ragbooking/internal/domain"
)

const (
	defaultChunkWords   = 500
	defaultOverlapWords = 200
)

// ChunkText splits text with the given strategy. Empty input yields no chunks.
func ChunkText(text string, strategy domain.ChunkStrategy) ([]string, error) {
	switch strategy {
	case domain.ChunkFixed:
		return chunkFixed(text, defaultChunkWords), nil
	case domain.ChunkSliding:
		return chunkSliding(text, defaultChunkWords, defaultOverlapWords), nil
	case domain.ChunkSentence:
		return chunkSentences(text), nil
	default:
		return nil, ErrUnknownStrategy
	}
}

func ParseStrategy(raw string) (domain.ChunkStrategy, error) {
	switch s := domain.ChunkStrategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return domain.ChunkFixed, nil
	case domain.ChunkFixed, domain.ChunkSliding, domain.ChunkSentence:
		return s, nil
	default:
		return "", ErrUnknownStrategy
	}
}

func chunkFixed(text string, size int) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0, len(words)/size+1)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// chunkSliding starts a window every size-overlap words.
func chunkSliding(text string, size, overlap int) []string {
	step := size - overlap
	if step <= 0 {
		step = size
	}
	words := strings.Fields(text)
	chunks := make([]string, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// chunkSentences cuts after '.', '!' or '?' runs that are followed by
// whitespace or the end of text.
func chunkSentences(text string) []string {
	runes := []rune(text)
	var chunks []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		for i+1 < len(runes) && (isTerminator(runes[i+1]) || runes[i+1] == '"' || runes[i+1] == '\'' || runes[i+1] == ')') {
			i++
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			chunks = append(chunks, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
