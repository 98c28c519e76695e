package surveyengine

import "testing"

func TestSetValueTrigger(t *testing.T) {
	def := mustParse(t, `{
		"elements":[{"type":"text","name":"q1"},{"type":"text","name":"q2"}],
		"triggers":[{"type":"setvalue","expression":"{q1} = 'a'","setToName":"q2","setValue":"b"}]}`)
	state := NewState(def)

	state.UpdateAnswer("q1", "x")
	if _, exists := state.Answers["q2"]; exists {
		t.Errorf("trigger should not have fired, got %v", state.Answers["q2"])
	}

	state.UpdateAnswer("q1", "a")
	if state.Answers["q2"] != "b" {
		t.Errorf("expected q2 = b, got %v", state.Answers["q2"])
	}
}

func TestCopyValueTrigger(t *testing.T) {
	def := mustParse(t, `{
		"elements":[
			{"type":"text","name":"same"},
			{"type":"text","name":"billing"},
			{"type":"text","name":"shipping"}
		],
		"triggers":[{"type":"copyvalue","expression":"{same} = 'yes'","fromName":"billing","setToName":"shipping"}]}`)
	state := NewState(def)

	state.UpdateAnswer("billing", "Main St 1")
	state.UpdateAnswer("same", "yes")
	if state.Answers["shipping"] != "Main St 1" {
		t.Errorf("expected copied value, got %v", state.Answers["shipping"])
	}
}

func TestRunExpressionTrigger(t *testing.T) {
	def := mustParse(t, `{
		"elements":[{"type":"text","name":"a"},{"type":"text","name":"b"},{"type":"text","name":"total"}],
		"triggers":[{"type":"runexpression","expression":"{a} notempty and {b} notempty","runExpression":"sum({a},{b})","setToName":"total"}]}`)
	state := NewState(def)

	state.UpdateAnswer("a", 2.0)
	state.UpdateAnswer("b", 3.0)
	if state.Answers["total"] != 5.0 {
		t.Errorf("expected total 5, got %v", state.Answers["total"])
	}
}

func TestSkipTrigger(t *testing.T) {
	def := mustParse(t, `{
		"pages":[
			{"name":"p1","elements":[{"type":"text","name":"q1"}]},
			{"name":"p2","elements":[{"type":"text","name":"q2"}]},
			{"name":"p3","elements":[{"type":"text","name":"q3"}]}
		],
		"triggers":[{"type":"skip","expression":"{q1} = 'jump'","gotoName":"q3"}]}`)
	state := NewState(def)

	state.UpdateAnswer("q1", "jump")
	if state.CurrentPageIndex != 2 {
		t.Errorf("expected jump to page index 2, got %d", state.CurrentPageIndex)
	}
}

func TestSkipTriggerNeverMovesBackwards(t *testing.T) {
	def := mustParse(t, `{
		"pages":[
			{"name":"p1","elements":[{"type":"text","name":"early"}]},
			{"name":"p2","elements":[{"type":"text","name":"late"}]}
		],
		"triggers":[{"type":"skip","expression":"{late} = 'back'","gotoName":"early"}]}`)
	state := NewState(def)

	state.NextPage()
	state.UpdateAnswer("late", "back")
	if state.CurrentPageIndex != 1 {
		t.Errorf("skip must not move backwards, got index %d", state.CurrentPageIndex)
	}
}

func TestCompleteTrigger(t *testing.T) {
	def := mustParse(t, `{
		"elements":[{"type":"text","name":"done"}],
		"triggers":[{"type":"complete","expression":"{done} = 'yes'"}]}`)
	state := NewState(def)

	if state.CompleteRequested {
		t.Error("complete must not be requested initially")
	}
	state.UpdateAnswer("done", "yes")
	if !state.CompleteRequested {
		t.Error("expected complete request")
	}
}

func TestBrokenTriggerGuardFailsClosed(t *testing.T) {
	def := mustParse(t, `{
		"elements":[{"type":"text","name":"q1"},{"type":"text","name":"q2"}],
		"triggers":[{"type":"setvalue","expression":"{q1} = ","setToName":"q2","setValue":"x"}]}`)
	state := NewState(def)

	state.UpdateAnswer("q1", "anything")
	if _, exists := state.Answers["q2"]; exists {
		t.Error("broken guard must not fire the trigger")
	}
}
