// Package scan runs the whole flow for one uploaded sheet:
// extraction, parsing and aggregation, with an optional answer cache in front.
package scan

import (
	"context"
	"errors"

	"sgpa-scan/api/internal/extract"
	"sgpa-scan/api/internal/grades"
	"sgpa-scan/api/internal/logger"
	"sgpa-scan/api/internal/parse"
	"sgpa-scan/api/internal/store"
)

// Stage is a progress checkpoint reported while a scan runs.
type Stage struct {
	Name    string
	Percent int
}

var (
	StageEncoding   = Stage{"encoding", 10}
	StageSubmitting = Stage{"submitting", 30}
	StageParsing    = Stage{"parsing", 80}
	StageDone       = Stage{"done", 100}
)

type ProgressFunc func(Stage)

// Extractor is satisfied by *extract.Client.
type Extractor interface {
	Extract(ctx context.Context, img extract.Image) (extract.Result, error)
}

type Result struct {
	Records   []grades.Record
	Aggregate grades.AggregateResult
	Backend   string
	Cached    bool
}

type Pipeline struct {
	Extractor Extractor
	Cache     store.Cache
	Scope     string
	Log       *logger.Logger
}

func New(ex Extractor, cache store.Cache, scope string, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{Extractor: ex, Cache: cache, Scope: scope, Log: log}
}

// Run scans one image. progress may be nil.
func (p *Pipeline) Run(ctx context.Context, img extract.Image, progress ProgressFunc) (Result, error) {
	report := func(s Stage) {
		if progress != nil {
			progress(s)
		}
	}
	if len(img.Data) == 0 {
		return Result{}, extract.ErrEmptyImage
	}
	report(StageEncoding)
	hash := img.Hash()
	log := p.Log.With("image_hash", hash[:12])

	if p.Cache != nil {
		e, err := p.Cache.Find(ctx, hash, p.Scope)
		switch {
		case err == nil:
			if recs, perr := parse.Records(e.Text); perr == nil {
				log.Info("extraction cache hit", "backend", e.Backend)
				report(StageDone)
				return Result{Records: recs, Aggregate: grades.Aggregate(recs), Backend: e.Backend, Cached: true}, nil
			}
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("extraction cache lookup failed", "error", err)
		}
	}

	report(StageSubmitting)
	res, err := p.Extractor.Extract(ctx, img)
	if err != nil {
		log.Warn("extraction failed", "error", err)
		return Result{}, err
	}

	report(StageParsing)
	recs, err := parse.Records(res.Text)
	if err != nil {
		log.Warn("response rejected", "backend", res.Backend, "error", err)
		return Result{}, err
	}

	if p.Cache != nil {
		if err := p.Cache.Upsert(ctx, hash, p.Scope, store.Entry{Text: res.Text, Backend: res.Backend}); err != nil {
			log.Warn("extraction cache store failed", "error", err)
		}
	}

	agg := grades.Aggregate(recs)
	log.Info("sheet scanned", "backend", res.Backend, "courses", len(recs), "sgpa", agg.SGPA)
	report(StageDone)
	return Result{Records: recs, Aggregate: agg, Backend: res.Backend}, nil
}
