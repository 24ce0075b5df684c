package core

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

const (
	DefaultQubitCount = 2

	GlossaryCollection = "glossary"
	QuizCollection     = "quizzes"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Counts maps a measured bitstring to the number of shots that produced it.
// Classical bit 0 is the rightmost character of the bitstring.
type Counts map[string]uint32

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

func (c Counts) Shots() uint32 {
	var total uint32
	for _, v := range c {
		total += v
	}
	return total
}

type GateSpec struct {
	Name     string `json:"name"`
	Targets  []int  `json:"targets"`
	Controls []int  `json:"controls,omitempty"`
}

type CircuitSpec struct {
	Qubits *int       `json:"qubits,omitempty"`
	Gates  []GateSpec `json:"gates"`
}

func (c *CircuitSpec) QubitCount() int {
	if c.Qubits == nil {
		return DefaultQubitCount
	}
	return *c.Qubits
}

type SimulationResult struct {
	Counts        Counts `json:"counts"`
	Visualization string `json:"visualization"`
}

// String omits the visualization payload, which is too large for logs.
func (r *SimulationResult) String() string {
	st, err := jsonIter.Marshal(struct {
		Counts            Counts `json:"counts"`
		VisualizationSize int    `json:"visualization_size"`
	}{
		Counts:            r.Counts,
		VisualizationSize: len(r.Visualization),
	})
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to marshal core.SimulationResult/reason:%s", err))
		return ""
	}
	return string(pretty.Pretty(st))
}

type GlossaryTerm struct {
	Term       string   `json:"term" bson:"term"`
	Definition string   `json:"definition" bson:"definition"`
	Examples   []string `json:"examples" bson:"examples"`
}

type QuizLevel string

const (
	Beginner     QuizLevel = "beginner"
	Intermediate QuizLevel = "intermediate"
	Advanced     QuizLevel = "advanced"

	// AllLevels disables the level filter.
	AllLevels QuizLevel = "all"
)

type QuizQuestion struct {
	Level         QuizLevel `json:"level" bson:"level"`
	Question      string    `json:"question" bson:"question"`
	Options       []string  `json:"options" bson:"options"`
	CorrectAnswer int       `json:"correctAnswer" bson:"correctAnswer"`
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int64 `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPagination derives the page metadata. perPage must be positive.
func NewPagination(page, perPage int, totalItems int64) *Pagination {
	pp := int64(perPage)
	totalPages := totalItems / pp
	if totalItems%pp != 0 {
		totalPages++
	}
	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     int64(page) < totalPages,
		HasPrev:     page > 1,
	}
}
