package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/quanta-team/quanta-engine/core"
	"go.uber.org/zap"
)

var (
	//go:embed assets/glossary.json
	glossaryJSON []byte
	//go:embed assets/quizzes.json
	quizzesJSON []byte

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

type Result struct {
	GlossaryTerms int
	QuizQuestions int
}

func (r Result) String() string {
	return fmt.Sprintf("glossary:%d/quizzes:%d", r.GlossaryTerms, r.QuizQuestions)
}

func GlossaryTerms() ([]core.GlossaryTerm, error) {
	var terms []core.GlossaryTerm
	if err := json.Unmarshal(glossaryJSON, &terms); err != nil {
		return nil, errors.Wrap(err, "decode glossary seed")
	}
	for i, t := range terms {
		if t.Term == "" || t.Definition == "" {
			return nil, errors.Errorf("glossary seed %d has no term or definition", i)
		}
	}
	return terms, nil
}

func QuizQuestions() ([]core.QuizQuestion, error) {
	var qs []core.QuizQuestion
	if err := json.Unmarshal(quizzesJSON, &qs); err != nil {
		return nil, errors.Wrap(err, "decode quiz seed")
	}
	for i, q := range qs {
		switch q.Level {
		case core.Beginner, core.Intermediate, core.Advanced:
		default:
			return nil, errors.Errorf("quiz seed %d has unknown level %q", i, q.Level)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, errors.Errorf("quiz seed %d answer %d is not one of %d options", i, q.CorrectAnswer, len(q.Options))
		}
	}
	return qs, nil
}

// Seed replaces the glossary and quiz collections with the bundled content.
// Running it again leaves the same documents.
func Seed(ctx context.Context, store core.DocumentStore) (Result, error) {
	terms, err := GlossaryTerms()
	if err != nil {
		return Result{}, err
	}
	qs, err := QuizQuestions()
	if err != nil {
		return Result{}, err
	}
	if err := replace(ctx, store, core.GlossaryCollection, toDocs(terms)); err != nil {
		return Result{}, err
	}
	if err := replace(ctx, store, core.QuizCollection, toDocs(qs)); err != nil {
		return Result{}, err
	}
	res := Result{GlossaryTerms: len(terms), QuizQuestions: len(qs)}
	zap.L().Info(fmt.Sprintf("seeded reference data/%s", res))
	return res, nil
}

func replace(ctx context.Context, store core.DocumentStore, collection string, docs []interface{}) error {
	if err := store.Drop(ctx, collection); err != nil {
		return errors.Wrapf(err, "drop %s", collection)
	}
	if err := store.InsertMany(ctx, collection, docs); err != nil {
		return errors.Wrapf(err, "insert into %s", collection)
	}
	return nil
}

func toDocs[T any](items []T) []interface{} {
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	return docs
}
