package faq

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QAPair is one question/answer pair parsed from a corpus document.
type QAPair struct {
	FaqID    string
	Question string
	Answer   string
}

// ContentHash derives a stable short id from the pair's content, so
// re-ingesting an unchanged corpus produces the same ids.
func ContentHash(question, answer string) string {
	sum := sha256.Sum256([]byte(question + "\n" + answer))
	return hex.EncodeToString(sum[:])[:7]
}

// ParseQADocument extracts Q/A pairs from a plain-text corpus document.
//
// A line starting with "Q:" opens a new pair, a line starting with "A:"
// opens its answer, and any following lines extend the answer until the
// next "Q:". Pairs with a missing question or answer are skipped.
func ParseQADocument(text string) []QAPair {
	var pairs []QAPair

	var question string
	var answerLines []string
	inAnswer := false

	flush := func() {
		q := strings.TrimSpace(question)
		a := strings.TrimSpace(strings.Join(answerLines, "\n"))
		if q != "" && a != "" {
			pairs = append(pairs, QAPair{
				FaqID:    ContentHash(q, a),
				Question: q,
				Answer:   a,
			})
		}
		question = ""
		answerLines = nil
		inAnswer = false
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "Q:"):
			flush()
			question = strings.TrimSpace(strings.TrimPrefix(trimmed, "Q:"))
		case strings.HasPrefix(trimmed, "A:"):
			answerLines = append(answerLines, strings.TrimSpace(strings.TrimPrefix(trimmed, "A:")))
			inAnswer = true
		case inAnswer && trimmed != "":
			answerLines = append(answerLines, trimmed)
		}
	}
	flush()

	return pairs
}
