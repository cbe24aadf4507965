package usecase

import (
	"strings"
	"testing"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

func TestClassifyQuestion(t *testing.T) {
	cases := map[string]questionType{
		"What is the rate limit?":               questionInformation,
		"How do I authenticate?":                questionInformation,
		"List the available endpoints":          questionList,
		"Name some examples":                    questionList,
		"Compare v1 and v2":                     questionComparison,
		"difference between GET and POST":       questionComparison,
		"Tell me about this document":           questionGeneral,
		"Explain the authentication flow":       questionGeneral,
	}

	for question, want := range cases {
		if got := classifyQuestion(question); got != want {
			t.Errorf("classifyQuestion(%q) = %s, want %s", question, got, want)
		}
	}
}

func TestExtractKeywordsOrdersByFrequency(t *testing.T) {
	s := NewExtractiveSummarizer()
	keywords := s.extractKeywords("token token token endpoint endpoint header the and is", 3)
	if len(keywords) != 3 {
		t.Fatalf("expected 3 keywords, got %v", keywords)
	}
	if keywords[0] != "token" || keywords[1] != "endpoint" || keywords[2] != "header" {
		t.Errorf("unexpected keyword order: %v", keywords)
	}
}

func TestExtractKeywordsFiltersStopWordsAndShortTokens(t *testing.T) {
	s := NewExtractiveSummarizer()
	keywords := s.extractKeywords("the api is an io it of", 10)
	if len(keywords) != 1 || keywords[0] != "api" {
		t.Errorf("expected only 'api', got %v", keywords)
	}
}

func TestRelevantSentencesSkipsZeroOverlap(t *testing.T) {
	s := NewExtractiveSummarizer()
	text := "Authentication requires bearer tokens. Cats are fluffy animals. Tokens expire after one hour."
	sentences := s.relevantSentences(text, "How do authentication tokens work?", 3)
	if len(sentences) != 2 {
		t.Fatalf("expected 2 relevant sentences, got %v", sentences)
	}
	for _, sentence := range sentences {
		if strings.Contains(sentence, "Cats") {
			t.Errorf("irrelevant sentence included: %q", sentence)
		}
	}
}

func TestSummarizeInformationQuestionNumbersSentences(t *testing.T) {
	s := NewExtractiveSummarizer()
	chunks := []domain.RetrievedChunk{{Text: "Authentication requires bearer tokens.", Similarity: 0.9}}
	answer := s.Summarize("What is authentication?", "Authentication requires bearer tokens. Unrelated filler here.", chunks)

	if !strings.HasPrefix(answer, "Based on the documentation, here's what I found:") {
		t.Errorf("unexpected opening: %q", answer)
	}
	if !strings.Contains(answer, "1. Authentication requires bearer tokens") {
		t.Errorf("sentence not numbered: %q", answer)
	}
	if !strings.Contains(answer, "semantic search and intelligent text analysis") {
		t.Errorf("missing provenance note: %q", answer)
	}
}

func TestSummarizeListQuestionTitlesKeywords(t *testing.T) {
	s := NewExtractiveSummarizer()
	chunks := []domain.RetrievedChunk{{Text: "endpoints"}, {Text: "tokens"}}
	answer := s.Summarize("List the features", "endpoint endpoint token token webhook", chunks)

	if !strings.Contains(answer, "here are the key points:") {
		t.Errorf("unexpected list answer: %q", answer)
	}
	if !strings.Contains(answer, "1. Endpoint") {
		t.Errorf("keywords not title-cased and numbered: %q", answer)
	}
	if !strings.Contains(answer, "I found 2 relevant sections with detailed information") {
		t.Errorf("missing section count line: %q", answer)
	}
}

func TestSummarizeGeneralQuestionAnnotatesSimilarity(t *testing.T) {
	s := NewExtractiveSummarizer()
	chunks := []domain.RetrievedChunk{
		{Text: strings.Repeat("x", 300), Similarity: 0.87},
		{Text: "short", Similarity: 0.55},
	}
	answer := s.Summarize("Tell me about this", "context", chunks)

	if !strings.Contains(answer, "I found 2 relevant sections. Here's a comprehensive overview:") {
		t.Errorf("unexpected general answer: %q", answer)
	}
	if !strings.Contains(answer, "**Section 1** (Relevance: 0.87):") {
		t.Errorf("similarity annotation missing: %q", answer)
	}
	if !strings.Contains(answer, strings.Repeat("x", 250)+"...") {
		t.Errorf("chunk excerpt not truncated to 250: %q", answer)
	}
}

func TestSummarizeComparisonQuestionExcerptsChunks(t *testing.T) {
	s := NewExtractiveSummarizer()
	chunks := []domain.RetrievedChunk{
		{Text: "v1 uses api keys"},
		{Text: "v2 uses oauth"},
		{Text: "v3 is unreleased"},
		{Text: "v4 does not exist"},
	}
	answer := s.Summarize("Compare v1 and v2", "context", chunks)

	if !strings.Contains(answer, "I found 4 relevant sections that might contain comparison information") {
		t.Errorf("unexpected comparison answer: %q", answer)
	}
	if strings.Contains(answer, "v4 does not exist") {
		t.Errorf("comparison answer must show at most 3 chunks: %q", answer)
	}
}
