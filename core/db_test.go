//go:build unit
// +build unit

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestMemoryDB(t *testing.T) *MemoryDB {
	d := &MemoryDB{}
	require.NoError(t, d.Setup(&Conf{}))
	docs := []interface{}{
		QuizQuestion{Level: Beginner, Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0},
		QuizQuestion{Level: Advanced, Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1},
		QuizQuestion{Level: Beginner, Question: "q3", Options: []string{"a", "b"}, CorrectAnswer: 1},
	}
	require.NoError(t, d.InsertMany(context.Background(), QuizCollection, docs))
	return d
}

func decodeQuestions(t *testing.T, raws []bson.Raw) []string {
	qs := []string{}
	for _, raw := range raws {
		var q QuizQuestion
		require.NoError(t, bson.Unmarshal(raw, &q))
		qs = append(qs, q.Question)
	}
	return qs
}

func TestMemoryDBFind(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		opts    *FindOptions
		want    []string
		wantErr string
	}{
		{
			name: "natural order",
			want: []string{"q1", "q2", "q3"},
		},
		{
			name:   "equality filter",
			filter: Filter{"level": "beginner"},
			want:   []string{"q1", "q3"},
		},
		{
			name:   "typed filter value",
			filter: Filter{"level": Advanced},
			want:   []string{"q2"},
		},
		{
			name:   "no match",
			filter: Filter{"level": "expert"},
			want:   []string{},
		},
		{
			name: "sort skip and limit",
			opts: &FindOptions{SortKey: "question", Skip: 1, Limit: 1},
			want: []string{"q2"},
		},
		{
			name: "sort by number keeps ties stable",
			opts: &FindOptions{SortKey: "correctAnswer"},
			want: []string{"q1", "q2", "q3"},
		},
		{
			name: "skip beyond end",
			opts: &FindOptions{Skip: 10},
			want: []string{},
		},
		{
			name:    "negative skip",
			opts:    &FindOptions{Skip: -5},
			wantErr: "skip value must be non-negative, but received: -5",
		},
	}
	d := newTestMemoryDB(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := d.Find(context.Background(), QuizCollection, tt.filter, tt.opts)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeQuestions(t, raws))
		})
	}
}

func TestMemoryDBCountDropAndTearDown(t *testing.T) {
	ctx := context.Background()
	d := newTestMemoryDB(t)
	require.NoError(t, d.Ping(ctx))

	n, err := d.Count(ctx, QuizCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = d.Count(ctx, QuizCollection, Filter{"level": "beginner"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = d.Count(ctx, GlossaryCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, d.Drop(ctx, QuizCollection))
	n, err = d.Count(ctx, QuizCollection, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, d.TearDown())
	assert.EqualError(t, d.Ping(ctx), "memory store is not available")
}

func TestMemoryDBFindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	d := newTestMemoryDB(t)
	raws, err := d.Find(ctx, QuizCollection, nil, nil)
	require.NoError(t, err)
	for i := range raws[0] {
		raws[0][i] = 0
	}
	again, err := d.Find(ctx, QuizCollection, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2", "q3"}, decodeQuestions(t, again))
}

func TestMemoryDBInsertBeforeSetup(t *testing.T) {
	d := &MemoryDB{}
	err := d.InsertMany(context.Background(), QuizCollection, []interface{}{QuizQuestion{}})
	assert.EqualError(t, err, "memory store is not set up")
	assert.Error(t, d.Ping(context.Background()))
}
