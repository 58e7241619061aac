// Package query turns supplied filter parameters into a provider listing
// query plus the predicates the provider cannot evaluate itself.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-bexpr"
	"github.com/mitchellh/pointerstructure"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// Mode selects where a criterion is evaluated.
type Mode int

const (
	// Server criteria are passed to the provider listing call.
	Server Mode = iota
	// Client criteria are applied to the returned records.
	Client
)

// Match selects how a client criterion compares values.
type Match int

const (
	// Equal compares the string forms of both values.
	Equal Match = iota
	// Bool compares booleans. "true" and "false" strings are accepted.
	Bool
)

// Criterion maps one filter parameter onto a record attribute.
type Criterion struct {
	Param string
	Key   string
	Mode  Mode
	Match Match
}

func (c Criterion) key() string {
	if c.Key == "" {
		return c.Param
	}
	return c.Key
}

// Builder holds the filter criteria of one listing.
type Builder struct {
	criteria []Criterion
}

// NewBuilder returns a Builder for the given criteria.
func NewBuilder(criteria ...Criterion) *Builder {
	return &Builder{criteria: append([]Criterion(nil), criteria...)}
}

// ServerSide returns Server criteria named after each param.
func ServerSide(params ...string) []Criterion {
	out := make([]Criterion, 0, len(params))
	for _, p := range params {
		out = append(out, Criterion{Param: p, Mode: Server})
	}
	return out
}

// ClientSide returns Client equality criteria named after each param.
func ClientSide(params ...string) []Criterion {
	out := make([]Criterion, 0, len(params))
	for _, p := range params {
		out = append(out, Criterion{Param: p, Mode: Client})
	}
	return out
}

type predicate struct {
	key   string
	match Match
	want  any
}

func (p predicate) holds(r cloud.Record) bool {
	got, ok := r[p.key]
	if !ok {
		return false
	}
	if p.match == Bool {
		have, err := toBool(got)
		return err == nil && have == p.want.(bool)
	}
	return r.String(p.key) == cloud.Record{p.key: p.want}.String(p.key)
}

// Query is the result of Build.
type Query struct {
	// Server holds the criteria forwarded to the provider, keyed by the
	// provider's attribute names.
	Server     cloud.Filters
	predicates []predicate
	eval       *bexpr.Evaluator
}

// Build partitions supplied into server filters and client predicates.
// Parameters that are absent or nil are ignored. expression is an optional
// go-bexpr filter evaluated after the predicates.
func (b *Builder) Build(supplied map[string]any, expression string) (*Query, error) {
	q := &Query{Server: cloud.Filters{}}
	for _, c := range b.criteria {
		v, ok := supplied[c.Param]
		if !ok || v == nil {
			continue
		}
		if c.Match == Bool {
			parsed, err := toBool(v)
			if err != nil {
				return nil, apperrors.NewValidationError(c.Param, err.Error(), err)
			}
			v = parsed
		}
		if c.Mode == Server {
			q.Server[c.key()] = v
			continue
		}
		q.predicates = append(q.predicates, predicate{key: c.key(), match: c.Match, want: v})
	}

	if strings.TrimSpace(expression) != "" {
		eval, err := bexpr.CreateEvaluator(expression, bexpr.WithTagName("json"))
		if err != nil {
			return nil, apperrors.NewValidationError("filter", fmt.Sprintf("invalid expression: %v", err), err)
		}
		q.eval = eval
	}
	return q, nil
}

// Match reports whether r satisfies every client predicate and the
// expression. A selector naming an attribute the record lacks does not match.
func (q *Query) Match(r cloud.Record) (bool, error) {
	for _, p := range q.predicates {
		if !p.holds(r) {
			return false, nil
		}
	}
	if q.eval == nil {
		return true, nil
	}
	ok, err := q.eval.Evaluate(map[string]any(r))
	if err != nil {
		if errors.Is(err, pointerstructure.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.NewValidationError("filter", fmt.Sprintf("evaluation failed: %v", err), err)
	}
	return ok, nil
}

// Apply keeps exactly the records that Match. The result is never nil.
func (q *Query) Apply(records []cloud.Record) ([]cloud.Record, error) {
	out := make([]cloud.Record, 0, len(records))
	for _, r := range records {
		ok, err := q.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// HasClientSide reports whether Apply can drop records.
func (q *Query) HasClientSide() bool {
	return len(q.predicates) > 0 || q.eval != nil
}

func toBool(v any) (bool, error) {
	switch typed := v.(type) {
	case bool:
		return typed, nil
	case *bool:
		if typed == nil {
			return false, fmt.Errorf("must be a boolean, got null")
		}
		return *typed, nil
	case string:
		b, err := strconv.ParseBool(typed)
		if err != nil {
			return false, fmt.Errorf("must be a boolean, got %q", typed)
		}
		return b, nil
	default:
		return false, fmt.Errorf("must be a boolean, got %v", v)
	}
}
