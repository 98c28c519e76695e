package surveyengine

import (
	"testing"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveydef"
)

func mustParse(t *testing.T, definition string) *surveydef.SurveyDefinition {
	t.Helper()
	def, err := surveydef.Parse(definition)
	if err != nil {
		t.Fatalf("could not parse definition: %s", err.Error())
	}
	return def
}

func TestVisibilityGate(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"a"},
		{"type":"text","name":"b","visibleIf":"{a} = 'x'"},
		{"type":"text","name":"c"}
	]}`)

	state := NewState(def)
	gated := def.Pages[0].Elements[1]
	unconditional := def.Pages[0].Elements[2]

	t.Run("hidden while condition fails", func(t *testing.T) {
		if state.IsQuestionVisible(gated) {
			t.Error("expected hidden")
		}
	})

	t.Run("visible once condition holds", func(t *testing.T) {
		state.UpdateAnswer("a", "x")
		if !state.IsQuestionVisible(gated) {
			t.Error("expected visible")
		}
	})

	t.Run("loose equality with numeric answer", func(t *testing.T) {
		state.UpdateAnswer("a", 1.0)
		hidden := state.IsQuestionVisible(gated)
		if hidden {
			t.Error("expected hidden for non-matching value")
		}
	})

	t.Run("no condition means always visible", func(t *testing.T) {
		if !state.IsQuestionVisible(unconditional) {
			t.Error("expected visible")
		}
	})
}

func TestRequiredClosure(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"a"},
		{"type":"text","name":"static","isRequired":true},
		{"type":"text","name":"conditional","requiredIf":"{a} = '1'"},
		{"type":"text","name":"never"}
	]}`)
	state := NewState(def)

	statically := def.Pages[0].Elements[1]
	conditionally := def.Pages[0].Elements[2]
	never := def.Pages[0].Elements[3]

	if !state.IsQuestionRequired(statically) {
		t.Error("isRequired flag should make the question required")
	}
	if state.IsQuestionRequired(conditionally) {
		t.Error("requiredIf should not hold yet")
	}
	state.UpdateAnswer("a", "1")
	if !state.IsQuestionRequired(conditionally) {
		t.Error("requiredIf should hold now")
	}
	if state.IsQuestionRequired(never) {
		t.Error("question without requirements should not be required")
	}
}

func TestResetThenDefault(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"trigger"},
		{"type":"text","name":"field","defaultValue":5,"resetValueIf":"{trigger} = '1'"}
	]}`)
	state := NewState(def)

	// default seeded at construction
	if state.Answers["field"] != 5.0 {
		t.Errorf("expected seeded default 5, got %v", state.Answers["field"])
	}

	state.UpdateAnswer("field", 7.0)
	state.UpdateAnswer("trigger", 1.0)

	if state.Answers["field"] != 5.0 {
		t.Errorf("expected reset back to default 5, got %v", state.Answers["field"])
	}
}

func TestResetWithoutDefaultClears(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"trigger"},
		{"type":"text","name":"field","resetValueIf":"{trigger} = '1'"}
	]}`)
	state := NewState(def)

	state.UpdateAnswer("field", "something")
	state.UpdateAnswer("trigger", "1")

	if _, exists := state.Answers["field"]; exists {
		t.Errorf("expected field cleared, got %v", state.Answers["field"])
	}
}

func TestPageSkipBounds(t *testing.T) {
	def := mustParse(t, `{"pages":[
		{"name":"p1","elements":[{"type":"text","name":"q1"}]},
		{"name":"p2","visibleIf":"{never} notempty","elements":[{"type":"text","name":"q2"}]},
		{"name":"p3","elements":[{"type":"text","name":"q3"}]}
	]}`)
	state := NewState(def)

	state.NextPage()
	if state.CurrentPageIndex != 2 {
		t.Errorf("expected index 2 after skipping invisible page, got %d", state.CurrentPageIndex)
	}
	state.NextPage()
	if state.CurrentPageIndex != 2 {
		t.Errorf("expected index to stay at 2, got %d", state.CurrentPageIndex)
	}

	state.PreviousPage()
	if state.CurrentPageIndex != 0 {
		t.Errorf("expected index 0 after skipping back, got %d", state.CurrentPageIndex)
	}
	state.PreviousPage()
	if state.CurrentPageIndex != 0 {
		t.Errorf("expected index to stay at 0, got %d", state.CurrentPageIndex)
	}
}

func TestPageSkipNeverLeavesBounds(t *testing.T) {
	// last page invisible: the skip loop still must not step past it
	def := mustParse(t, `{"pages":[
		{"name":"p1","elements":[{"type":"text","name":"q1"}]},
		{"name":"p2","visibleIf":"{never} notempty","elements":[{"type":"text","name":"q2"}]}
	]}`)
	state := NewState(def)

	state.NextPage()
	if state.CurrentPageIndex != 1 {
		t.Errorf("expected clamped landing on index 1, got %d", state.CurrentPageIndex)
	}
}

func TestHasVisiblePagesAfterCurrent(t *testing.T) {
	def := mustParse(t, `{"pages":[
		{"name":"p1","elements":[{"type":"text","name":"gate"}]},
		{"name":"p2","visibleIf":"{gate} = 'open'","elements":[{"type":"text","name":"q2"}]}
	]}`)
	state := NewState(def)

	if state.HasVisiblePagesAfterCurrent() {
		t.Error("expected no visible pages while gate is closed")
	}
	state.UpdateAnswer("gate", "open")
	if !state.HasVisiblePagesAfterCurrent() {
		t.Error("expected a visible page after opening the gate")
	}
}

func TestDefaultSeedingFromPriorAnswers(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"a"},
		{"type":"text","name":"b"},
		{"type":"expression","name":"total","defaultValueExpression":"sum({a},{b})"}
	]}`)
	state := NewStateWithAnswers(def, map[string]interface{}{"a": 2.0, "b": 3.0})

	if state.Answers["total"] != 5.0 {
		t.Errorf("expected total 5, got %v", state.Answers["total"])
	}
}

func TestDefaultSeedingForwardReference(t *testing.T) {
	// total is declared before its inputs; fixed-point seeding must settle it
	def := mustParse(t, `{"elements":[
		{"type":"expression","name":"total","defaultValueExpression":"sum({a},{b})"},
		{"type":"text","name":"a","defaultValue":2},
		{"type":"text","name":"b","defaultValue":3}
	]}`)
	state := NewState(def)

	if state.Answers["total"] != 5.0 {
		t.Errorf("expected total 5, got %v", state.Answers["total"])
	}
}

func TestDefaultExpressionFallsBackToStaticValue(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"broken","defaultValueExpression":"{a} +","defaultValue":9}
	]}`)
	state := NewState(def)

	if state.Answers["broken"] != 9.0 {
		t.Errorf("expected static fallback 9, got %v", state.Answers["broken"])
	}
}

func TestDependentDefaultReseededOnUpdate(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"a"},
		{"type":"expression","name":"double","defaultValueExpression":"sum({a},{a})"}
	]}`)
	state := NewState(def)

	state.UpdateAnswer("a", 4.0)
	if state.Answers["double"] != 8.0 {
		t.Errorf("expected dependent default 8, got %v", state.Answers["double"])
	}
}

func TestAnsweredQuestionNotReseeded(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"a"},
		{"type":"expression","name":"double","defaultValueExpression":"sum({a},{a})"}
	]}`)
	state := NewState(def)

	state.UpdateAnswer("double", 99.0)
	state.UpdateAnswer("a", 4.0)
	if state.Answers["double"] != 99.0 {
		t.Errorf("explicit answer must not be overwritten, got %v", state.Answers["double"])
	}
}

func TestSetValueExpression(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"qty"},
		{"type":"text","name":"price"},
		{"type":"expression","name":"cost","setValueIf":"{qty} notempty and {price} notempty","setValueExpression":"{qty} * {price}"}
	]}`)
	state := NewState(def)

	state.UpdateAnswer("qty", 3.0)
	if _, exists := state.Answers["cost"]; exists {
		t.Errorf("set value rule should not fire yet, got %v", state.Answers["cost"])
	}
	state.UpdateAnswer("price", 2.5)
	if state.Answers["cost"] != 7.5 {
		t.Errorf("expected cost 7.5, got %v", state.Answers["cost"])
	}
}

func TestFlattenQuestionsIncludesNested(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"panel","name":"p","elements":[
			{"type":"text","name":"inner1"},
			{"type":"text","name":"inner2"}
		]},
		{"type":"text","name":"outer"}
	]}`)

	names := []string{}
	for _, q := range FlattenQuestions(def) {
		names = append(names, q.Name)
	}
	expected := []string{"p", "inner1", "inner2", "outer"}
	if len(names) != len(expected) {
		t.Errorf("unexpected question list: %v", names)
		return
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("unexpected question order: %v", names)
			return
		}
	}
}

func TestExpressionQuestionComputed(t *testing.T) {
	def := mustParse(t, `{"elements":[
		{"type":"text","name":"a"},
		{"type":"text","name":"b"},
		{"type":"expression","name":"total","expression":"sum({a},{b})"}
	]}`)

	state := NewState(def)

	t.Run("computed at creation", func(t *testing.T) {
		if state.Answers["total"] != 0.0 {
			t.Errorf("unexpected total: %v", state.Answers["total"])
		}
	})

	t.Run("recomputed when inputs change", func(t *testing.T) {
		state.UpdateAnswer("a", 2.0)
		state.UpdateAnswer("b", 3.0)
		if state.Answers["total"] != 5.0 {
			t.Errorf("unexpected total: %v", state.Answers["total"])
		}
	})
}
