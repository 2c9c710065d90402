package grading

import (
	"encoding/json"
	"testing"

	"github.com/derslik/derslik-backend/internal/model"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestGradeMultipleChoice(t *testing.T) {
	cases := []struct {
		name      string
		correct   string
		submitted string
		want      bool
	}{
		{"exact match", `"b"`, `"b"`, true},
		{"wrong option", `"b"`, `"c"`, false},
		{"numeric option ids", `"3"`, `"3"`, true},
	}
	for _, c := range cases {
		v := Grade(model.QuestionTypeMultipleChoice, raw(c.correct), raw(c.submitted))
		if v.Manual {
			t.Fatalf("%s: unexpected manual verdict", c.name)
		}
		if v.Correct != c.want {
			t.Fatalf("%s: correct=%v, want %v", c.name, v.Correct, c.want)
		}
	}
}

func TestGradeMultipleSelectOrderInsensitive(t *testing.T) {
	cases := []struct {
		name      string
		correct   string
		submitted string
		want      bool
	}{
		{"same order", `["a","b","c"]`, `["a","b","c"]`, true},
		{"shuffled", `["a","b","c"]`, `["c","a","b"]`, true},
		{"missing one", `["a","b","c"]`, `["a","b"]`, false},
		{"extra one", `["a","b"]`, `["a","b","c"]`, false},
		{"numeric ids equal string ids", `["1","2"]`, `[1,2]`, true},
		{"not an array", `["a"]`, `"a"`, false},
	}
	for _, c := range cases {
		v := Grade(model.QuestionTypeMultipleSelect, raw(c.correct), raw(c.submitted))
		if v.Correct != c.want {
			t.Fatalf("%s: correct=%v, want %v", c.name, v.Correct, c.want)
		}
	}
}

func TestGradeTrueFalse(t *testing.T) {
	correct := `"` + TokenTrue + `"`

	if v := Grade(model.QuestionTypeTrueFalse, raw(correct), raw(`"Doğru"`)); !v.Correct {
		t.Fatal("canonical token should match")
	}
	if v := Grade(model.QuestionTypeTrueFalse, raw(correct), raw(`"Yanlış"`)); v.Correct {
		t.Fatal("opposite token should not match")
	}
	// Submissions are normalized too: every accepted spelling of the same
	// truth value grades as correct.
	for _, sub := range []string{`"true"`, `"dogru"`, `"1"`, `"  Doğru "`} {
		if v := Grade(model.QuestionTypeTrueFalse, raw(correct), raw(sub)); !v.Correct {
			t.Fatalf("submission %s should match after normalization", sub)
		}
	}
	for _, sub := range []string{`"false"`, `"0"`, `"maybe"`} {
		if v := Grade(model.QuestionTypeTrueFalse, raw(correct), raw(sub)); v.Correct {
			t.Fatalf("submission %s should not match", sub)
		}
	}
}

func TestGradeFillBlankCaseAndSpace(t *testing.T) {
	correct := raw(`"Ankara"`)

	for _, sub := range []string{`"ankara"`, `"  Ankara  "`, `"ANKARA"`} {
		if v := Grade(model.QuestionTypeFillBlank, correct, raw(sub)); !v.Correct {
			t.Fatalf("submission %s should match", sub)
		}
	}
	if v := Grade(model.QuestionTypeFillBlank, correct, raw(`"Istanbul"`)); v.Correct {
		t.Fatal("different answer should not match")
	}
}

func TestGradeCalculationTolerance(t *testing.T) {
	correct := raw(`3.14159`)

	cases := []struct {
		submitted string
		want      bool
	}{
		{`3.14159`, true},
		{`3.1411`, true},  // within 0.001
		{`3.1436`, false}, // outside 0.001
		{`"3.14159"`, true},
		{`"not a number"`, false},
	}
	for _, c := range cases {
		if v := Grade(model.QuestionTypeCalculation, correct, raw(c.submitted)); v.Correct != c.want {
			t.Fatalf("calculation %s: correct=%v, want %v", c.submitted, v.Correct, c.want)
		}
	}
}

func TestGradeOrderingIsOrderSensitive(t *testing.T) {
	correct := raw(`["first","second","third"]`)

	if v := Grade(model.QuestionTypeOrdering, correct, raw(`["first","second","third"]`)); !v.Correct {
		t.Fatal("identical order should match")
	}
	if v := Grade(model.QuestionTypeOrdering, correct, raw(`["second","first","third"]`)); v.Correct {
		t.Fatal("swapped order should not match")
	}
}

func TestGradeMatchingIgnoresKeyOrder(t *testing.T) {
	correct := raw(`{"p1":"o2","p2":"o1"}`)

	if v := Grade(model.QuestionTypeMatching, correct, raw(`{"p2":"o1","p1":"o2"}`)); !v.Correct {
		t.Fatal("same pairs in different key order should match")
	}
	if v := Grade(model.QuestionTypeMatching, correct, raw(`{"p1":"o1","p2":"o2"}`)); v.Correct {
		t.Fatal("wrong pairing should not match")
	}
}

func TestGradeManualTypes(t *testing.T) {
	manual := []model.QuestionType{
		model.QuestionTypeShortAnswer,
		model.QuestionTypeLongAnswer,
		model.QuestionTypeFileUpload,
		model.QuestionTypeHotspot,
		model.QuestionTypeCode,
	}
	for _, typ := range manual {
		v := Grade(typ, raw(`"anything"`), raw(`"anything"`))
		if !v.Manual {
			t.Fatalf("%s should defer to manual grading", typ)
		}
		if v.Correct {
			t.Fatalf("%s must never be auto-awarded", typ)
		}
		if AutoGradable(typ) {
			t.Fatalf("%s reported auto-gradable", typ)
		}
	}
}

func TestGradeMissingAnswerIsIncorrect(t *testing.T) {
	v := Grade(model.QuestionTypeMultipleChoice, raw(`"a"`), nil)
	if v.Manual || v.Correct {
		t.Fatalf("missing answer: got %+v, want incorrect", v)
	}
}

func TestNormalizeTrueFalse(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"true", TokenTrue},
		{"Doğru", TokenTrue},
		{"dogru", TokenTrue},
		{"1", TokenTrue},
		{"false", TokenFalse},
		{"Yanlış", TokenFalse},
		{"yanlis", TokenFalse},
		{"0", TokenFalse},
		{"  TRUE  ", TokenTrue},
		{"belki", "belki"}, // unrecognized passes through
	}
	for _, c := range cases {
		if got := NormalizeTrueFalse(c.in); got != c.want {
			t.Fatalf("NormalizeTrueFalse(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}
