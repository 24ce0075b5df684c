package reference

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/quanta-team/quanta-engine/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10

	glossarySortKey = "term"
	levelField      = "level"
)

var tracer = otel.Tracer("github.com/quanta-team/quanta-engine/reference")

// ParsePage reads a page number from a query parameter. Missing or
// non-numeric values yield def. Zero and negative numbers are returned as is.
func ParsePage(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// ListGlossary returns one page of glossary terms ordered by term.
func ListGlossary(ctx context.Context, store core.DocumentStore, page, perPage int) (terms []core.GlossaryTerm, p *core.Pagination, err error) {
	ctx, span := tracer.Start(ctx, "reference.ListGlossary", trace.WithAttributes(
		attribute.Int("quanta.page", page),
		attribute.Int("quanta.per_page", perPage),
	))
	defer endSpan(span, &err)

	if perPage < 1 {
		return nil, nil, core.NewFailure(core.InvalidInput,
			errors.Errorf("per_page must be a positive integer, got %d", perPage))
	}
	skip, ok := pageOffset(page, perPage)

	total, err := store.Count(ctx, core.GlossaryCollection, nil)
	if err != nil {
		return nil, nil, queryFailure(core.GlossaryCollection, err)
	}
	if !ok {
		return []core.GlossaryTerm{}, core.NewPagination(page, perPage, total), nil
	}
	raws, err := store.Find(ctx, core.GlossaryCollection, nil, &core.FindOptions{
		SortKey: glossarySortKey,
		Skip:    skip,
		Limit:   int64(perPage),
	})
	if err != nil {
		return nil, nil, queryFailure(core.GlossaryCollection, err)
	}
	terms, err = decodeAll[core.GlossaryTerm](raws)
	if err != nil {
		return nil, nil, queryFailure(core.GlossaryCollection, err)
	}
	return terms, core.NewPagination(page, perPage, total), nil
}

// ListQuizzes returns the quiz questions of level in store order. "all"
// returns every question; any other value, empty included, matches exactly.
func ListQuizzes(ctx context.Context, store core.DocumentStore, level string) (questions []core.QuizQuestion, err error) {
	ctx, span := tracer.Start(ctx, "reference.ListQuizzes", trace.WithAttributes(
		attribute.String("quanta.level", level),
	))
	defer endSpan(span, &err)

	var filter core.Filter
	if core.QuizLevel(level) != core.AllLevels {
		filter = core.Filter{levelField: level}
	}
	raws, err := store.Find(ctx, core.QuizCollection, filter, nil)
	if err != nil {
		return nil, queryFailure(core.QuizCollection, err)
	}
	questions, err = decodeAll[core.QuizQuestion](raws)
	if err != nil {
		return nil, queryFailure(core.QuizCollection, err)
	}
	return questions, nil
}

// pageOffset returns the number of documents before page. ok is false when
// the offset does not fit in an int64, which lies past any collection.
// Offsets below the int64 range saturate so the store still rejects them.
func pageOffset(page, perPage int) (skip int64, ok bool) {
	pp := int64(perPage)
	switch {
	case page > 1 && int64(page-1) > math.MaxInt64/pp:
		return 0, false
	case page < 1 && int64(page) < math.MinInt64/pp+1:
		return math.MinInt64, true
	}
	return int64(page-1) * pp, true
}

func decodeAll[T any](raws []bson.Raw) ([]T, error) {
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, errors.Wrapf(err, "decode document %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func queryFailure(collection string, err error) error {
	zap.L().Error(fmt.Sprintf("failed to query %s/reason:%s", collection, err))
	return core.NewFailure(core.QueryFailure, err)
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
