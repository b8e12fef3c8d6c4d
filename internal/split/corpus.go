package split

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ppiankov/textbench/internal/model"
)

const (
	textColumn  = "text"
	labelColumn = "label"
)

// ReadCorpus loads a cleaned corpus table from a CSV file with a header row
// naming at least the text and label columns
func ReadCorpus(path string) ([]model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.DataErrorf("corpus %s does not exist", path)
		}
		return nil, model.DataErrorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	docs, err := ReadCorpusFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// ReadCorpusFrom parses a corpus table from r. Columns may appear in any
// order; extra columns are ignored. Every value is taken as a string.
func ReadCorpusFrom(r io.Reader) ([]model.Document, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.DataErrorf("corpus is empty (no header row)")
		}
		return nil, model.DataErrorf("read header: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch strings.ToLower(name) {
		case textColumn:
			textIdx = i
		case labelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, model.DataErrorf("corpus header %v lacks required columns %q and %q", header, textColumn, labelColumn)
	}

	var docs []model.Document
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.DataErrorf("malformed corpus row %d: %w", line, err)
		}
		docs = append(docs, model.Document{
			Text:  record[textIdx],
			Label: strings.TrimSpace(record[labelIdx]),
		})
	}

	return docs, nil
}
