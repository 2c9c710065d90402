// Package grading implements the pure scoring rules of the exam engine:
// type-polymorphic answer comparison, equal point weighting and the letter
// grade table. It has no storage or transport dependencies.
package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/derslik/derslik-backend/internal/model"
)

// Canonical true/false tokens. Answer keys are normalized into one of these
// at question creation; submissions are normalized again at grading time.
const (
	TokenTrue  = "Doğru"
	TokenFalse = "Yanlış"
)

// calculationTolerance is the maximum absolute difference accepted between
// a submitted and a correct numeric answer.
const calculationTolerance = 0.001

// Verdict is the outcome of grading one submitted answer.
type Verdict struct {
	// Correct is meaningful only when Manual is false.
	Correct bool
	// Manual marks question types that require human grading; the grader
	// never awards points for them.
	Manual bool
}

// AutoGradable reports whether a question type can be graded by pure
// comparison, with no human judgment.
func AutoGradable(t model.QuestionType) bool {
	switch t {
	case model.QuestionTypeMultipleChoice,
		model.QuestionTypeMultipleSelect,
		model.QuestionTypeTrueFalse,
		model.QuestionTypeMatching,
		model.QuestionTypeOrdering,
		model.QuestionTypeFillBlank,
		model.QuestionTypeCalculation:
		return true
	}
	return false
}

// Grade compares one submitted answer against the canonical answer for the
// given question type. There is no partial credit within a question: the
// verdict is correct, incorrect, or deferred to manual grading.
func Grade(t model.QuestionType, correct, submitted json.RawMessage) Verdict {
	if !AutoGradable(t) {
		return Verdict{Manual: true}
	}
	if len(submitted) == 0 {
		return Verdict{}
	}

	switch t {
	case model.QuestionTypeMultipleChoice:
		return Verdict{Correct: asString(submitted) == asString(correct)}

	case model.QuestionTypeTrueFalse:
		// Both sides pass through normalization so a client sending "true"
		// grades the same as one sending the canonical token.
		sub := NormalizeTrueFalse(asString(submitted))
		ans := NormalizeTrueFalse(asString(correct))
		return Verdict{Correct: sub == ans}

	case model.QuestionTypeFillBlank:
		sub := strings.ToLower(strings.TrimSpace(asString(submitted)))
		ans := strings.ToLower(strings.TrimSpace(asString(correct)))
		return Verdict{Correct: sub == ans}

	case model.QuestionTypeCalculation:
		sv, sok := asFloat(submitted)
		cv, cok := asFloat(correct)
		return Verdict{Correct: sok && cok && math.Abs(sv-cv) < calculationTolerance}

	case model.QuestionTypeMultipleSelect:
		return Verdict{Correct: sortedSetEqual(submitted, correct)}

	case model.QuestionTypeOrdering, model.QuestionTypeMatching:
		return Verdict{Correct: structurallyEqual(submitted, correct)}
	}

	return Verdict{Manual: true}
}

// asString extracts the value of a JSON string, or falls back to the raw
// trimmed text for non-string payloads.
func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// asFloat parses a JSON number or numeric string.
func asFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

// sortedSetEqual treats both payloads as arrays of selected option ids and
// compares them order-insensitively.
func sortedSetEqual(submitted, correct json.RawMessage) bool {
	sub, ok := asStringSlice(submitted)
	if !ok {
		return false
	}
	ans, ok := asStringSlice(correct)
	if !ok {
		return false
	}
	if len(sub) != len(ans) {
		return false
	}
	sort.Strings(sub)
	sort.Strings(ans)
	for i := range sub {
		if sub[i] != ans[i] {
			return false
		}
	}
	return true
}

// asStringSlice decodes a JSON array into option-id strings. Numeric ids
// are stringified so [1,2] and ["1","2"] compare equal.
func asStringSlice(raw json.RawMessage) ([]string, bool) {
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		switch e := v.(type) {
		case string:
			out = append(out, e)
		case float64:
			out = append(out, strconv.FormatFloat(e, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprintf("%v", e))
		}
	}
	return out, true
}

// structurallyEqual compares the decoded shapes of both payloads. Array
// order matters (ordering questions); object key order does not (matching
// questions map prompt ids to option ids).
func structurallyEqual(submitted, correct json.RawMessage) bool {
	var sv, cv interface{}
	if err := json.Unmarshal(submitted, &sv); err != nil {
		return false
	}
	if err := json.Unmarshal(correct, &cv); err != nil {
		return false
	}
	return reflect.DeepEqual(sv, cv)
}

// NormalizeTrueFalse maps the accepted spellings of a true/false answer onto
// the canonical token pair. Unrecognized input is returned unchanged.
func NormalizeTrueFalse(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "dogru", "doğru", "1":
		return TokenTrue
	case "false", "yanlis", "yanlış", "0":
		return TokenFalse
	}
	return v
}
