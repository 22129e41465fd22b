// Package eligibility evaluates applicant-declared facts against a scheme's
// named criteria. Evaluation is pure domain logic - no I/O, no side effects -
// so verdicts are deterministic and freely computable at any point of the
// review.
package eligibility

import (
	"fmt"
	"strings"

	dErrors "janseva/pkg/domain-errors"
)

// Op is the comparison a rule applies between a declared fact and the rule's
// comparand.
type Op string

const (
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpLte    Op = "lte"
	OpGte    Op = "gte"
	OpIn     Op = "in"
	OpExists Op = "exists"
)

var validOps = map[Op]bool{
	OpEq: true, OpNe: true, OpLte: true, OpGte: true, OpIn: true, OpExists: true,
}

// Rule is one named eligibility criterion, e.g.
// {Name: "land_holding_within_limit", Fact: "land_holding_hectares", Op: lte, Value: 2}.
type Rule struct {
	Name  string `json:"name"`
	Fact  string `json:"fact"`
	Op    Op     `json:"op"`
	Value any    `json:"value,omitempty"`
}

// Verdict is the structured result of evaluating every criterion.
// OverallEligible is the logical AND of all criteria; there is no partial
// credit.
type Verdict struct {
	PerCriterion    map[string]bool `json:"per_criterion"`
	OverallEligible bool            `json:"overall_eligible"`
}

// Evaluate checks the facts against every rule. Missing or unknown facts fail
// their criterion (fail-closed), never error. Malformed rules are a
// configuration fault of the scheme and surface as CodeConfiguration; they
// must never default to eligible.
func Evaluate(rules []Rule, facts map[string]any) (Verdict, error) {
	verdict := Verdict{
		PerCriterion:    make(map[string]bool, len(rules)),
		OverallEligible: true,
	}

	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			return Verdict{}, err
		}
		pass := rule.apply(facts)
		verdict.PerCriterion[rule.Name] = pass
		if !pass {
			verdict.OverallEligible = false
		}
	}
	return verdict, nil
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeConfiguration, "eligibility rule has no name")
	}
	if strings.TrimSpace(r.Fact) == "" {
		return dErrors.Newf(dErrors.CodeConfiguration, "rule %q names no fact", r.Name)
	}
	if !validOps[r.Op] {
		return dErrors.Newf(dErrors.CodeConfiguration, "rule %q has unknown operator %q", r.Name, string(r.Op))
	}
	switch r.Op {
	case OpExists:
		// no comparand
	case OpIn:
		if _, ok := r.Value.([]any); !ok {
			return dErrors.Newf(dErrors.CodeConfiguration, "rule %q requires a list comparand for op in", r.Name)
		}
	default:
		if r.Value == nil {
			return dErrors.Newf(dErrors.CodeConfiguration, "rule %q has no comparand", r.Name)
		}
	}
	return nil
}

// apply returns whether the criterion passes. Absent facts always fail.
func (r Rule) apply(facts map[string]any) bool {
	fact, present := facts[r.Fact]
	if !present || fact == nil {
		return false
	}

	switch r.Op {
	case OpExists:
		s, isString := fact.(string)
		return !isString || strings.TrimSpace(s) != ""
	case OpEq:
		return equal(fact, r.Value)
	case OpNe:
		return !equal(fact, r.Value)
	case OpLte:
		fv, fok := toFloat(fact)
		rv, rok := toFloat(r.Value)
		return fok && rok && fv <= rv
	case OpGte:
		fv, fok := toFloat(fact)
		rv, rok := toFloat(r.Value)
		return fok && rok && fv >= rv
	case OpIn:
		options, _ := r.Value.([]any)
		for _, option := range options {
			if equal(fact, option) {
				return true
			}
		}
		return false
	}
	return false
}

// equal compares numerically when both sides are numbers, otherwise by
// canonical string form; JSON decoding makes every number a float64, while
// seed data carries native ints.
func equal(a, b any) bool {
	av, aok := toFloat(a)
	bv, bok := toFloat(b)
	if aok && bok {
		return av == bv
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
