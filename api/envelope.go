package api

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type successBody struct {
	Success    bool             `json:"success"`
	Data       interface{}      `json:"data"`
	Pagination *core.Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// encoder writes every response body. Pretty output is meant for dev mode.
type encoder struct {
	pretty bool
}

func (e encoder) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal response/reason:%s", err))
		status = http.StatusInternalServerError
		b = []byte(`{"error":"failed to encode response"}`)
	}
	if e.pretty {
		b = pretty.Pretty(b)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		zap.L().Debug(fmt.Sprintf("failed to write response/reason:%s", err))
	}
}

func (e encoder) writeSuccess(w http.ResponseWriter, data interface{}, p *core.Pagination) {
	e.writeJSON(w, http.StatusOK, successBody{Success: true, Data: data, Pagination: p})
}

func (e encoder) writeError(w http.ResponseWriter, status int, msg string) {
	e.writeJSON(w, status, errorBody{Error: msg})
}

// writeFailure maps err to its status code. Unclassified errors are 500.
func (e encoder) writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if kind, ok := core.KindOf(err); ok {
		status = kind.StatusCode()
	}
	e.writeError(w, status, err.Error())
}
