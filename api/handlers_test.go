//go:build unit
// +build unit

package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanta-team/quanta-engine/chart"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/quanta-team/quanta-engine/core/mock_core"
	"github.com/quanta-team/quanta-engine/qpu"
	"github.com/quanta-team/quanta-engine/seed"
	"github.com/quanta-team/quanta-engine/simulation"
)

type glossaryResponse struct {
	Success    bool                `json:"success"`
	Data       []core.GlossaryTerm `json:"data"`
	Pagination *core.Pagination    `json:"pagination"`
}

type quizResponse struct {
	Success bool                `json:"success"`
	Data    []core.QuizQuestion `json:"data"`
}

type simulateResponse struct {
	Success bool                   `json:"success"`
	Data    *core.SimulationResult `json:"data"`
}

type panickingSimulator struct {
	core.UnimplementedSimulator
}

func (panickingSimulator) Execute(context.Context, *core.Circuit, int) (core.Counts, error) {
	panic("state vector exploded")
}

func newTestHandler(t *testing.T, sc *core.SystemComponents) http.Handler {
	store, err := sc.DocumentStore()
	require.NoError(t, err)
	_, err = seed.Seed(context.Background(), store)
	require.NoError(t, err)
	runner, err := simulation.NewRunner(sc)
	require.NoError(t, err)
	return NewHandler(store, runner, false)
}

func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestIndexAndHealth(t *testing.T) {
	s := core.SCWithMemoryDB()
	defer s.TearDown()
	h := newTestHandler(t, s)

	rec := do(h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"message": "Welcome to Quantum Computing API",
		"status": "online",
		"endpoints": ["/api/health", "/api/simulate", "/api/glossary", "/api/quiz"]
	}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Quantum Computing API is running"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
		wantPrefix string
	}{
		{name: "no body", body: "", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "whitespace", body: "  \n", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "empty object", body: "{}", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "empty array", body: "[]", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "null", body: "null", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "empty string", body: `""`, wantStatus: 400, wantError: "No circuit data provided"},
		{name: "zero", body: "0", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "false", body: "false", wantStatus: 400, wantError: "No circuit data provided"},
		{name: "malformed", body: `{"gates": [`, wantStatus: 400, wantPrefix: "malformed JSON body"},
		{name: "trailing data", body: `{"qubits": 2} {}`, wantStatus: 400, wantPrefix: "malformed JSON body"},
		{name: "not an object", body: `[{"name": "h"}]`, wantStatus: 400, wantPrefix: "malformed JSON body"},
		{name: "wrong field type", body: `{"qubits": "two"}`, wantStatus: 400, wantPrefix: "invalid circuit description"},
		{name: "bell pair", body: `{"qubits": 2, "gates": [{"name": "h", "targets": [0]}, {"name": "cx", "controls": [0], "targets": [1]}]}`, wantStatus: 200},
		{name: "only unknown gates", body: `{"gates": [{"name": "swap", "targets": [0, 1]}]}`, wantStatus: 200},
	}
	s := core.SCWithMemoryDB()
	defer s.TearDown()
	h := newTestHandler(t, s)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/simulate", strings.NewReader(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var res simulateResponse
				decode(t, rec, &res)
				assert.True(t, res.Success)
				assert.Equal(t, core.MockCounts, res.Data.Counts)
				assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(core.MockVisualization)), res.Data.Visualization)
				return
			}
			var res errorBody
			decode(t, rec, &res)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, res.Error)
			}
			if tt.wantPrefix != "" {
				assert.True(t, strings.HasPrefix(res.Error, tt.wantPrefix), res.Error)
			}
		})
	}
}

func TestSimulateFailure(t *testing.T) {
	s := core.SCWithFailingSimulator()
	defer s.TearDown()
	h := newTestHandler(t, s)

	rec := do(h, http.MethodPost, "/api/simulate", strings.NewReader(`{"gates":[{"name":"x","targets":[5]}]}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"index 5 out of range for size 2"}`, rec.Body.String())
}

func TestSimulateWithStateVector(t *testing.T) {
	core.ResetSetting()
	core.RegisterSetting(core.SimulatorSettingKey, core.NewSimulatorSetting())
	sim := &qpu.StateVectorQPU{}
	require.NoError(t, sim.Setup(&core.Conf{}))
	runner := &simulation.Runner{Simulator: sim, Renderer: &chart.PlotRenderer{}}
	h := NewHandler(&core.MemoryDB{}, runner, false)

	rec := do(h, http.MethodPost, "/api/simulate", strings.NewReader(`{"qubits":2,"gates":[{"name":"X","targets":[0]}]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res simulateResponse
	decode(t, rec, &res)
	assert.Equal(t, core.Counts{"01": simulation.Shots}, res.Data.Counts)

	img, err := base64.StdEncoding.DecodeString(res.Data.Visualization)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(img))
	assert.NoError(t, err)

	rec = do(h, http.MethodPost, "/api/simulate", strings.NewReader(`{"gates":[{"name":"x","targets":[5]}]}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"index 5 out of range for size 2"}`, rec.Body.String())
}

func TestGlossary(t *testing.T) {
	s := core.SCWithMemoryDB()
	defer s.TearDown()
	h := newTestHandler(t, s)

	rec := do(h, http.MethodGet, "/api/glossary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res glossaryResponse
	decode(t, rec, &res)
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 10)
	assert.Equal(t, &core.Pagination{
		CurrentPage: 1, PerPage: 10, TotalItems: 50, TotalPages: 5, HasNext: true, HasPrev: false,
	}, res.Pagination)
	for i := 1; i < len(res.Data); i++ {
		assert.LessOrEqual(t, res.Data[i-1].Term, res.Data[i].Term)
	}

	rec = do(h, http.MethodGet, "/api/glossary?page=5&per_page=12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = glossaryResponse{}
	decode(t, rec, &res)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, &core.Pagination{
		CurrentPage: 5, PerPage: 12, TotalItems: 50, TotalPages: 5, HasNext: false, HasPrev: true,
	}, res.Pagination)

	rec = do(h, http.MethodGet, "/api/glossary?page=abc&per_page=xyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = glossaryResponse{}
	decode(t, rec, &res)
	assert.Equal(t, 1, res.Pagination.CurrentPage)
	assert.Equal(t, 10, res.Pagination.PerPage)
}

func TestGlossaryFailures(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "zero per page",
			target:     "/api/glossary?per_page=0",
			wantStatus: 400,
			wantBody:   `{"error":"per_page must be a positive integer, got 0"}`,
		},
		{
			name:       "page zero",
			target:     "/api/glossary?page=0",
			wantStatus: 500,
			wantBody:   `{"error":"skip value must be non-negative, but received: -10"}`,
		},
	}
	s := core.SCWithMemoryDB()
	defer s.TearDown()
	h := newTestHandler(t, s)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestQuiz(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCount int
	}{
		{name: "default is all", target: "/api/quiz", wantCount: 30},
		{name: "all", target: "/api/quiz?level=all", wantCount: 30},
		{name: "advanced", target: "/api/quiz?level=advanced", wantCount: 10},
		{name: "unknown level", target: "/api/quiz?level=bogus", wantCount: 0},
		{name: "empty level matches nothing", target: "/api/quiz?level=", wantCount: 0},
	}
	s := core.SCWithMemoryDB()
	defer s.TearDown()
	h := newTestHandler(t, s)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var res quizResponse
			decode(t, rec, &res)
			assert.True(t, res.Success)
			assert.NotNil(t, res.Data)
			assert.Len(t, res.Data, tt.wantCount)
			assert.NotContains(t, rec.Body.String(), "_id")
		})
	}
}

func TestStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_core.NewMockDocumentStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(errors.New("server selection timeout")).Times(2)
	store.EXPECT().Count(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	store.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	h := NewHandler(store, &simulation.Runner{}, false)
	for _, target := range []string{"/api/glossary", "/api/quiz?level=beginner"} {
		rec := do(h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Database connection failed"}`, rec.Body.String())
	}
}

func TestQueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mock_core.NewMockDocumentStore(ctrl)
	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().Find(gomock.Any(), core.QuizCollection, gomock.Any(), gomock.Any()).
		Return(nil, errors.New("cursor killed"))

	h := NewHandler(store, &simulation.Runner{}, false)
	rec := do(h, http.MethodGet, "/api/quiz", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"cursor killed"}`, rec.Body.String())
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
