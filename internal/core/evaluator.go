package core

import (
	"log/slog"
	"slices"

	"ner-eval/internal/core/types"
	"ner-eval/internal/core/utils"
)

// Evaluator scores the predicted spans of a set of documents against their
// gold annotations. All counting happens in NewEvaluator; the accessors only
// read the results.
type Evaluator struct {
	labels []string
	docs   []*types.Document

	// predicted[i] holds the chunked spans of docs[i], keyed by label.
	predicted []map[string][]types.PredictedSpan
	docIndex  map[string]int

	counts map[Strictness]map[string]Counts

	workers int
	diag    *Diagnostics
}

type Option func(*Evaluator)

// WithWorkers shards the aggregation by (label, strictness) across n workers.
// Values below 2 keep the aggregation on the calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		e.workers = n
	}
}

func WithDiagnostics(diag *Diagnostics) Option {
	return func(e *Evaluator) {
		e.diag = diag
	}
}

func NewEvaluator(docs []*types.Document, labels []string, opts ...Option) *Evaluator {
	e := &Evaluator{
		labels:   dedupe(labels),
		docs:     docs,
		docIndex: make(map[string]int, len(docs)),
		counts:   make(map[Strictness]map[string]Counts, len(Strictnesses)),
		workers:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.diag == nil {
		e.diag = NewDiagnostics()
	}

	e.predicted = make([]map[string][]types.PredictedSpan, len(docs))
	for i, doc := range docs {
		e.predicted[i] = ChunkByLabel(doc.ID, doc.TokenLabels, e.labels, e.diag)
		if _, ok := e.docIndex[doc.ID]; ok {
			slog.Warn("duplicate document id, predicted spans lookup returns the first", "doc_id", doc.ID)
			continue
		}
		e.docIndex[doc.ID] = i
	}

	for _, s := range Strictnesses {
		e.counts[s] = make(map[string]Counts, len(e.labels))
	}

	if e.workers > 1 {
		e.aggregateInPool()
	} else {
		for _, sh := range e.shards() {
			e.merge(sh, e.countShard(sh))
		}
	}

	return e
}

type shard struct {
	label      string
	strictness Strictness
}

type shardCounts struct {
	shard  shard
	counts Counts
}

func (e *Evaluator) shards() []shard {
	out := make([]shard, 0, len(e.labels)*len(Strictnesses))
	for _, label := range e.labels {
		for _, s := range Strictnesses {
			out = append(out, shard{label: label, strictness: s})
		}
	}
	return out
}

func (e *Evaluator) countShard(sh shard) Counts {
	var total Counts
	for i, doc := range e.docs {
		total = total.Add(CountMatches(doc.ConceptsGold[sh.label], e.predicted[i][sh.label], sh.strictness))
	}
	return total
}

func (e *Evaluator) merge(sh shard, c Counts) {
	e.counts[sh.strictness][sh.label] = e.counts[sh.strictness][sh.label].Add(c)
}

func (e *Evaluator) aggregateInPool() {
	shards := e.shards()

	queue := make(chan shard, len(shards))
	for _, sh := range shards {
		queue <- sh
	}
	close(queue)

	completed := make(chan utils.CompletedTask[shardCounts], len(shards))

	worker := func(sh shard) (shardCounts, error) {
		return shardCounts{shard: sh, counts: e.countShard(sh)}, nil
	}

	utils.RunInPool(worker, queue, completed, e.workers)

	for task := range completed {
		e.merge(task.Result.shard, task.Result.counts)
	}
}

func (e *Evaluator) Counts(label string, strictness Strictness) Counts {
	return e.counts[strictness][label]
}

func (e *Evaluator) Scores(label string, strictness Strictness) Scores {
	return ComputeScores(e.Counts(label, strictness))
}

// Precision returns the precision for label; strict selects exact matching,
// otherwise overlap matching is used.
func (e *Evaluator) Precision(label string, strict bool) float64 {
	return e.Scores(label, StrictnessOf(strict)).Precision
}

func (e *Evaluator) Recall(label string, strict bool) float64 {
	return e.Scores(label, StrictnessOf(strict)).Recall
}

func (e *Evaluator) F1(label string, strict bool) float64 {
	return e.Scores(label, StrictnessOf(strict)).F1
}

func (e *Evaluator) Labels() []string {
	return slices.Clone(e.labels)
}

func (e *Evaluator) Documents() []*types.Document {
	return e.docs
}

// Predicted returns the chunked spans of the document with the given id, or
// nil if there is no such document.
func (e *Evaluator) Predicted(docID string) map[string][]types.PredictedSpan {
	i, ok := e.docIndex[docID]
	if !ok {
		return nil
	}
	return e.predicted[i]
}

func (e *Evaluator) Diagnostics() *Diagnostics {
	return e.diag
}

func dedupe(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
