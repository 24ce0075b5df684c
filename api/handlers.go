package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quanta-team/quanta-engine/circuit"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/quanta-team/quanta-engine/reference"
	"github.com/quanta-team/quanta-engine/simulation"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20

	welcomeMessage = "Welcome to Quantum Computing API"
	healthMessage  = "Quantum Computing API is running"
)

var endpoints = []string{
	"/api/health",
	"/api/simulate",
	"/api/glossary",
	"/api/quiz",
}

type handlers struct {
	store  core.DocumentStore
	runner *simulation.Runner
	enc    encoder
}

// NewHandler returns the routed API with its middleware chain.
func NewHandler(store core.DocumentStore, runner *simulation.Runner, devMode bool) http.Handler {
	h := &handlers{
		store:  store,
		runner: runner,
		enc:    encoder{pretty: devMode},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("POST /api/simulate", h.simulate)
	mux.HandleFunc("GET /api/glossary", h.glossary)
	mux.HandleFunc("GET /api/quiz", h.quiz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return withRequestID(
		withAccessLog(
			withCORS(
				withMetrics(
					withRecover(h.enc, mux)))))
}

func (h *handlers) index(w http.ResponseWriter, _ *http.Request) {
	h.enc.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   welcomeMessage,
		"status":    "online",
		"endpoints": endpoints,
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	h.enc.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": healthMessage,
	})
}

func (h *handlers) simulate(w http.ResponseWriter, r *http.Request) {
	spec, err := decodeCircuitSpec(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		zap.L().Debug(fmt.Sprintf("rejected simulation request/request_id:%s/reason:%s", RequestID(r.Context()), err))
		h.enc.writeFailure(w, err)
		return
	}
	res, err := h.runner.Run(r.Context(), circuit.Build(spec))
	if err != nil {
		SimulationsTotal.WithLabelValues("failure").Inc()
		h.enc.writeFailure(w, err)
		return
	}
	SimulationsTotal.WithLabelValues("success").Inc()
	h.enc.writeSuccess(w, res, nil)
}

// decodeCircuitSpec rejects bodies that are missing or hold an empty value
// (null, false, 0, "", [] or {}) with core.ErrNoCircuitData.
func decodeCircuitSpec(body io.Reader) (*core.CircuitSpec, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, core.NewFailure(core.InvalidInput, errors.Wrap(err, "read body"))
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, core.NewFailure(core.InvalidInput, core.ErrNoCircuitData)
	}
	empty, err := isEmptyValue(b)
	if err != nil {
		return nil, core.NewFailure(core.InvalidInput, errors.Wrap(err, "malformed JSON body"))
	}
	if empty {
		return nil, core.NewFailure(core.InvalidInput, core.ErrNoCircuitData)
	}
	spec := &core.CircuitSpec{}
	if err := json.Unmarshal(b, spec); err != nil {
		return nil, core.NewFailure(core.InvalidInput, errors.Wrap(err, "invalid circuit description"))
	}
	return spec, nil
}

func isEmptyValue(b []byte) (bool, error) {
	d := jx.DecodeBytes(b)
	var empty bool
	switch d.Next() {
	case jx.Null:
		if err := d.Null(); err != nil {
			return false, err
		}
		empty = true
	case jx.Bool:
		v, err := d.Bool()
		if err != nil {
			return false, err
		}
		empty = !v
	case jx.Number:
		n, err := d.Float64()
		if err != nil {
			return false, err
		}
		empty = n == 0
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return false, err
		}
		empty = s == ""
	case jx.Array:
		count := 0
		if err := d.Arr(func(d *jx.Decoder) error {
			count++
			return d.Skip()
		}); err != nil {
			return false, err
		}
		empty = count == 0
	case jx.Object:
		count := 0
		if err := d.ObjBytes(func(d *jx.Decoder, _ []byte) error {
			count++
			return d.Skip()
		}); err != nil {
			return false, err
		}
		empty = count == 0
	default:
		return false, errors.New("unexpected token")
	}
	if d.Next() != jx.Invalid {
		return false, errors.New("trailing data after JSON value")
	}
	if !empty && !bytes.HasPrefix(b, []byte("{")) {
		return false, errors.New("circuit description must be a JSON object")
	}
	return empty, nil
}

func (h *handlers) storeAvailable(w http.ResponseWriter, r *http.Request) bool {
	if err := h.store.Ping(r.Context()); err != nil {
		zap.L().Error(fmt.Sprintf("document store is unavailable/request_id:%s/reason:%s", RequestID(r.Context()), err))
		h.enc.writeFailure(w, core.NewFailure(core.StoreUnavailable, core.ErrStoreUnavailable))
		return false
	}
	return true
}

func (h *handlers) glossary(w http.ResponseWriter, r *http.Request) {
	if !h.storeAvailable(w, r) {
		return
	}
	q := r.URL.Query()
	page := reference.ParsePage(q.Get("page"), reference.DefaultPage)
	perPage := reference.ParsePage(q.Get("per_page"), reference.DefaultPerPage)
	terms, p, err := reference.ListGlossary(r.Context(), h.store, page, perPage)
	if err != nil {
		h.enc.writeFailure(w, err)
		return
	}
	h.enc.writeSuccess(w, terms, p)
}

func (h *handlers) quiz(w http.ResponseWriter, r *http.Request) {
	if !h.storeAvailable(w, r) {
		return
	}
	level := string(core.AllLevels)
	if q := r.URL.Query(); q.Has("level") {
		level = q.Get("level")
	}
	qs, err := reference.ListQuizzes(r.Context(), h.store, level)
	if err != nil {
		h.enc.writeFailure(w, err)
		return
	}
	h.enc.writeSuccess(w, qs, nil)
}
