// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/textbench/internal/model"
)

var (
	sportsWords = []string{
		"match", "team", "goal", "score", "league", "season", "coach",
		"stadium", "player", "tournament", "striker", "defender", "final",
	}
	politicsWords = []string{
		"election", "vote", "parliament", "minister", "policy", "senate",
		"campaign", "government", "party", "law", "budget", "debate", "reform",
	}
	sharedWords = []string{"today", "report", "week", "news", "people"}
)

// ToyCorpus returns perLabel "sports" documents followed by perLabel
// "politics" documents. Each text is unique and drawn from a
// label-specific vocabulary plus a few shared words.
func ToyCorpus(perLabel int) []model.Document {
	docs := make([]model.Document, 0, 2*perLabel)
	for i := 0; i < perLabel; i++ {
		docs = append(docs, model.Document{Text: toyText(sportsWords, i), Label: "sports"})
	}
	for i := 0; i < perLabel; i++ {
		docs = append(docs, model.Document{Text: toyText(politicsWords, i), Label: "politics"})
	}
	return docs
}

func toyText(words []string, i int) string {
	n := len(words)
	return fmt.Sprintf("%s %s %s %s %s doc%d %s",
		words[i%n], words[(i+3)%n], words[(i*5+1)%n], words[(i+7)%n],
		sharedWords[i%len(sharedWords)], i, words[(i*2+4)%n])
}

// WriteCorpusCSV writes docs as a text,label CSV under t.TempDir and returns its path
func WriteCorpusCSV(t testing.TB, docs []model.Document) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset_clean.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create corpus: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"text", "label"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, d := range docs {
		if err := w.Write([]string{d.Text, d.Label}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush corpus: %v", err)
	}
	return path
}
