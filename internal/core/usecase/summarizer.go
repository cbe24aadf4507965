package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// ExtractiveSummarizer builds an answer from the retrieved chunks alone, with
// no model call. It backs the answering engine whenever generation is
// unavailable or fails, so it must never error.
type ExtractiveSummarizer struct {
	stopWords map[string]struct{}
}

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

var sentencePattern = regexp.MustCompile(`[.!?]+`)

func NewExtractiveSummarizer() *ExtractiveSummarizer {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he",
		"in", "is", "it", "its", "of", "on", "that", "the", "to", "was", "will", "with",
		"i", "you", "your", "we", "they", "them", "this", "these", "those", "but", "or",
		"if", "then", "else", "when", "where", "why", "how", "all", "any", "both", "each",
		"few", "more", "most", "other", "some", "such", "no", "nor", "not", "only", "own",
		"same", "so", "than", "too", "very", "can", "just", "should", "now",
	}
	stopWords := make(map[string]struct{}, len(words))
	for _, w := range words {
		stopWords[w] = struct{}{}
	}
	return &ExtractiveSummarizer{stopWords: stopWords}
}

type questionType string

const (
	questionInformation questionType = "information"
	questionList        questionType = "list"
	questionComparison  questionType = "comparison"
	questionGeneral     questionType = "general"
)

func classifyQuestion(question string) questionType {
	lower := strings.ToLower(question)
	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	switch {
	case contains("what", "how", "why", "when", "where"):
		return questionInformation
	case contains("list", "name", "examples", "features"):
		return questionList
	case contains("compare", "difference", "versus"):
		return questionComparison
	default:
		return questionGeneral
	}
}

// extractKeywords returns up to topK content words ordered by descending
// frequency; ties keep first-occurrence order.
func (s *ExtractiveSummarizer) extractKeywords(text string, topK int) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int)
	var order []string
	for _, token := range tokens {
		if len(token) <= 2 {
			continue
		}
		if _, stop := s.stopWords[token]; stop {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topK {
		order = order[:topK]
	}
	return order
}

// relevantSentences scores sentences of the context by keyword overlap with
// the question and returns the best ones, skipping zero-overlap sentences.
func (s *ExtractiveSummarizer) relevantSentences(text, question string, maxSentences int) []string {
	questionKeywords := make(map[string]struct{})
	for _, kw := range s.extractKeywords(question, 20) {
		questionKeywords[kw] = struct{}{}
	}

	type scored struct {
		sentence string
		overlap  int
	}
	var candidates []scored
	for _, raw := range sentencePattern.Split(text, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		overlap := 0
		for _, kw := range s.extractKeywords(sentence, 20) {
			if _, ok := questionKeywords[kw]; ok {
				overlap++
			}
		}
		candidates = append(candidates, scored{sentence: sentence, overlap: overlap})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlap > candidates[j].overlap
	})

	var out []string
	for _, c := range candidates {
		if len(out) == maxSentences {
			break
		}
		if c.overlap > 0 {
			out = append(out, c.sentence)
		}
	}
	return out
}

// Summarize produces the extractive answer for the question given the joined
// context text and the retrieved chunks, formatted by question type.
func (s *ExtractiveSummarizer) Summarize(question, contextText string, chunks []domain.RetrievedChunk) string {
	var b strings.Builder

	switch classifyQuestion(question) {
	case questionInformation:
		sentences := s.relevantSentences(contextText, question, 3)
		if len(sentences) > 0 {
			b.WriteString("Based on the documentation, here's what I found:\n\n")
			for i, sentence := range sentences {
				fmt.Fprintf(&b, "%d. %s\n\n", i+1, sentence)
			}
		} else {
			fmt.Fprintf(&b, "I found %d relevant sections in the documentation, but couldn't extract specific information to answer your question. Here are the key sections:\n\n", len(chunks))
			for i, chunk := range firstChunks(chunks, 3) {
				fmt.Fprintf(&b, "%d. %s...\n\n", i+1, truncateRunes(chunk.Text, 150))
			}
		}

	case questionList:
		keywords := s.extractKeywords(contextText, 15)
		if len(keywords) > 8 {
			keywords = keywords[:8]
		}
		b.WriteString("Based on the documentation, here are the key points:\n\n")
		for i, keyword := range keywords {
			fmt.Fprintf(&b, "%d. %s\n", i+1, titleCase(keyword))
		}
		fmt.Fprintf(&b, "\nI found %d relevant sections with detailed information about these topics.", len(chunks))

	case questionComparison:
		fmt.Fprintf(&b, "I found %d relevant sections that might contain comparison information. Here are the key sections:\n\n", len(chunks))
		for i, chunk := range firstChunks(chunks, 3) {
			fmt.Fprintf(&b, "%d. %s...\n\n", i+1, truncateRunes(chunk.Text, 200))
		}

	default:
		fmt.Fprintf(&b, "Based on the documentation, I found %d relevant sections. Here's a comprehensive overview:\n\n", len(chunks))
		for i, chunk := range firstChunks(chunks, 5) {
			fmt.Fprintf(&b, "**Section %d** (Relevance: %.2f):\n%s...\n\n", i+1, chunk.Similarity, truncateRunes(chunk.Text, 250))
		}
	}

	b.WriteString("\n---\n*This response was generated using semantic search and intelligent text analysis. For more detailed information, please review the specific sections in the documentation.*")
	return b.String()
}

func firstChunks(chunks []domain.RetrievedChunk, n int) []domain.RetrievedChunk {
	if len(chunks) > n {
		return chunks[:n]
	}
	return chunks
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
