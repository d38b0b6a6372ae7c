package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ner-eval/internal/core"
	"ner-eval/internal/core/types"
)

const (
	TextExt       = ".txt"
	ParsedExt     = ".json"
	AnnotationExt = ".ann"
)

// parsedDocument is the output of the tokenization and tagging collaborators
// stored next to each document's text.
type parsedDocument struct {
	Sentences []types.Sentence   `json:"sentences"`
	Tokens    []types.TokenLabel `json:"tokens"`
}

// CorpusLoader reads an evaluation corpus from local directories. TextDir
// holds <id>.txt with a sibling <id>.json; AnnotationDir holds <id>.ann brat
// files.
type CorpusLoader struct {
	TextDir         string
	AnnotationDir   string
	LowercaseLabels bool

	Diagnostics *core.Diagnostics
	// OnDocument is called after each document has been loaded.
	OnDocument func(docID string)
}

// DocumentID derives a document id from a file name by dropping everything
// from the first dot.
func DocumentID(filename string) string {
	id, _, _ := strings.Cut(filepath.Base(filename), ".")
	return id
}

func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

// CountDocuments returns the number of documents LoadDocuments will load.
func (l *CorpusLoader) CountDocuments() (int, error) {
	files, err := listFiles(l.TextDir, TextExt)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// LoadDocuments loads every document of TextDir in file name order.
func (l *CorpusLoader) LoadDocuments() ([]*types.Document, error) {
	files, err := listFiles(l.TextDir, TextExt)
	if err != nil {
		return nil, err
	}

	docs := make([]*types.Document, 0, len(files))
	for _, name := range files {
		doc, err := l.loadDocument(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)

		if l.OnDocument != nil {
			l.OnDocument(doc.ID)
		}
	}

	slog.Info("loaded documents", "dir", l.TextDir, "documents", len(docs))

	return docs, nil
}

func (l *CorpusLoader) loadDocument(name string) (*types.Document, error) {
	docID := DocumentID(name)

	text, err := os.ReadFile(filepath.Join(l.TextDir, name))
	if err != nil {
		return nil, fmt.Errorf("error reading text of document %s: %w", docID, err)
	}

	parsedPath := filepath.Join(l.TextDir, strings.TrimSuffix(name, TextExt)+ParsedExt)
	data, err := os.ReadFile(parsedPath)
	if err != nil {
		return nil, fmt.Errorf("error reading parsed document %s: %w", docID, err)
	}

	var parsed parsedDocument
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error decoding parsed document %s: %w", parsedPath, err)
	}

	return types.NewDocument(docID, string(text), parsed.Sentences, parsed.Tokens), nil
}

// LoadAnnotations parses every brat file of AnnotationDir and groups the
// records by document id. Lines that cannot be parsed are counted as
// malformed in the diagnostics.
func (l *CorpusLoader) LoadAnnotations() (map[string][]types.RawAnnotation, error) {
	annotations := make(map[string][]types.RawAnnotation)
	if l.AnnotationDir == "" {
		return annotations, nil
	}

	files, err := listFiles(l.AnnotationDir, AnnotationExt)
	if err != nil {
		return nil, err
	}

	for _, name := range files {
		docID := DocumentID(name)

		records, malformed, err := l.parseFile(filepath.Join(l.AnnotationDir, name))
		if err != nil {
			return nil, fmt.Errorf("error loading annotations for document %s: %w", docID, err)
		}

		if malformed > 0 {
			slog.Warn("annotation file has lines that did not fit the entity format", "doc_id", docID, "malformed", malformed)
			l.Diagnostics.Add(core.MalformedLine, malformed)
		}
		slog.Info("parsed annotation file", "doc_id", docID, "parsed", len(records), "malformed", malformed)

		annotations[docID] = append(annotations[docID], records...)
	}

	return annotations, nil
}

func (l *CorpusLoader) parseFile(path string) ([]types.RawAnnotation, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return core.ParseAnnotations(f, l.LowercaseLabels)
}
