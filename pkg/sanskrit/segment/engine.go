// Package segment splits sandhi-joined tokens into their parts.
//
// The Engine runs a fixed fallback chain per token:
//
//	EdgeCase -> OracleStrict -> Rule -> OracleRelaxed -> NoSplit
//
// Each state runs at most once and the first one that yields a valid
// result ends the chain. Nothing in the chain returns an error; per-token
// failures lower the result's confidence instead.
package segment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/script"
)

// Method records which state of the chain produced a result.
type Method int

const (
	MethodNoSplit Method = iota
	MethodEdgeCase
	MethodOracle
	MethodRule
	MethodOracleRelaxed
)

var methodNames = map[Method]string{
	MethodNoSplit:       "no_split",
	MethodEdgeCase:      "edge_case",
	MethodOracle:        "oracle",
	MethodRule:          "rule",
	MethodOracleRelaxed: "oracle_relaxed",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// MarshalText encodes the method by name.
func (m Method) MarshalText() ([]byte, error) {
	name, ok := methodNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown method %d", int(m))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a method name.
func (m *Method) UnmarshalText(b []byte) error {
	for k, v := range methodNames {
		if v == string(b) {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("unknown method %q", b)
}

// Result is the outcome of segmenting one token.
type Result struct {
	Original   string   `json:"original"`
	Parts      []string `json:"parts"`
	Method     Method   `json:"method"`
	Confidence float64  `json:"confidence"`
}

// Split reports whether the token was divided into more than one part.
func (r Result) Split() bool {
	return len(r.Parts) > 1
}

func (r Result) clone() Result {
	r.Parts = append([]string(nil), r.Parts...)
	return r
}

// Confidence assigned to results outside the oracle formula.
const (
	EdgeCaseConfidence = 1.0
	RuleConfidence     = 0.8
	NoSplitConfidence  = 0.0

	DefaultAcceptThreshold = 0.7
	// MinSegmentLength is the shortest token the chain will try to split.
	MinSegmentLength = 2
)

// Segmenter is anything that maps a token to a Result.
type Segmenter interface {
	Segment(ctx context.Context, token string) Result
}

// Options configures an Engine.
type Options struct {
	Rules     *rules.Table
	EdgeCases *rules.EdgeCases
	// Oracle is optional; without one both oracle states are skipped.
	Oracle Oracle
	// AcceptThreshold is the confidence an oracle split needs in the strict
	// state. Zero selects DefaultAcceptThreshold.
	AcceptThreshold float64
	Logger          *zap.Logger
}

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	edgeCases *rules.EdgeCases
	patterns  *PatternSegmenter
	oracle    Oracle
	accept    float64
	logger    *zap.Logger
}

// NewEngine builds an engine from opts, filling in built-in tables where
// none are given.
func NewEngine(opts Options) *Engine {
	if opts.EdgeCases == nil {
		opts.EdgeCases = rules.DefaultEdgeCases()
	}
	if opts.AcceptThreshold <= 0 {
		opts.AcceptThreshold = DefaultAcceptThreshold
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		edgeCases: opts.EdgeCases,
		patterns:  NewPatternSegmenter(opts.Rules),
		oracle:    opts.Oracle,
		accept:    opts.AcceptThreshold,
		logger:    opts.Logger,
	}
}

// AcceptThreshold returns the configured acceptance threshold.
func (e *Engine) AcceptThreshold() float64 {
	return e.accept
}

type state int

const (
	stateEdgeCase state = iota
	stateOracleStrict
	stateRule
	stateOracleRelaxed
	stateNoSplit
)

func (s state) String() string {
	switch s {
	case stateEdgeCase:
		return "edge_case"
	case stateOracleStrict:
		return "oracle_strict"
	case stateRule:
		return "rule"
	case stateOracleRelaxed:
		return "oracle_relaxed"
	default:
		return "no_split"
	}
}

// attempt carries what one state hands to the next.
type attempt struct {
	token      string
	candidate  []string
	confidence float64
}

// transition runs one state. It returns a terminal result or false to
// move on to the next state.
type transition func(e *Engine, ctx context.Context, a *attempt) (Result, bool)

var chain = [...]transition{
	stateEdgeCase:      (*Engine).edgeCase,
	stateOracleStrict:  (*Engine).oracleStrict,
	stateRule:          (*Engine).rule,
	stateOracleRelaxed: (*Engine).oracleRelaxed,
	stateNoSplit:       (*Engine).noSplit,
}

// Segment runs the fallback chain for token.
func (e *Engine) Segment(ctx context.Context, token string) Result {
	a := &attempt{token: token}
	if script.RuneLen(token) < MinSegmentLength {
		res, _ := e.noSplit(ctx, a)
		return res
	}
	for s := stateEdgeCase; s <= stateNoSplit; s++ {
		if res, done := chain[s](e, ctx, a); done {
			e.logger.Debug("segmented",
				zap.String("token", token),
				zap.Stringer("state", s),
				zap.Strings("parts", res.Parts),
				zap.Float64("confidence", res.Confidence))
			return res
		}
	}
	res, _ := e.noSplit(ctx, a)
	return res
}

func (e *Engine) edgeCase(_ context.Context, a *attempt) (Result, bool) {
	parts, ok := e.edgeCases.Lookup(a.token)
	if !ok {
		return Result{}, false
	}
	return Result{Original: a.token, Parts: parts, Method: MethodEdgeCase, Confidence: EdgeCaseConfidence}, true
}

func (e *Engine) oracleStrict(ctx context.Context, a *attempt) (Result, bool) {
	if e.oracle == nil {
		return Result{}, false
	}
	probs, err := e.oracle.Predict(ctx, a.token)
	if err != nil {
		e.logger.Warn("oracle unavailable", zap.String("token", a.token), zap.Error(err))
		return Result{}, false
	}
	points, err := splitPoints(script.RuneLen(a.token), probs, BoundaryThreshold)
	if err != nil {
		e.logger.Debug("oracle candidate rejected", zap.String("token", a.token), zap.Error(err))
		return Result{}, false
	}
	if len(points) == 0 {
		return Result{}, false
	}
	a.candidate = SplitAt(a.token, points)
	a.confidence = oracleConfidence(a.candidate)
	if !ValidStrict(a.candidate) || a.confidence < e.accept {
		return Result{}, false
	}
	return Result{Original: a.token, Parts: a.candidate, Method: MethodOracle, Confidence: a.confidence}, true
}

func (e *Engine) rule(_ context.Context, a *attempt) (Result, bool) {
	parts, name, ok := e.patterns.match(a.token)
	if !ok || !ValidRule(parts) {
		return Result{}, false
	}
	e.logger.Debug("pattern matched", zap.String("token", a.token), zap.String("rule", name))
	return Result{Original: a.token, Parts: parts, Method: MethodRule, Confidence: RuleConfidence}, true
}

func (e *Engine) oracleRelaxed(_ context.Context, a *attempt) (Result, bool) {
	if a.candidate == nil || !ValidRelaxed(a.candidate) {
		return Result{}, false
	}
	return Result{Original: a.token, Parts: a.candidate, Method: MethodOracleRelaxed, Confidence: a.confidence}, true
}

func (e *Engine) noSplit(_ context.Context, a *attempt) (Result, bool) {
	return Result{Original: a.token, Parts: []string{a.token}, Method: MethodNoSplit, Confidence: NoSplitConfidence}, true
}
