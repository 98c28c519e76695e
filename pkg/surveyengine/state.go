package surveyengine

import (
	"log/slog"
	"reflect"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveydef"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveyexpr"
)

// State is the mutable per-session runtime of one survey. It owns the answer
// map and the current page position. It is not safe for concurrent use.
type State struct {
	Def               *surveydef.SurveyDefinition
	CurrentPageIndex  int
	Answers           map[string]interface{}
	CompleteRequested bool

	// flattened question list in declaration order, composites included
	questions []*surveydef.Question

	// answers written by default seeding rather than by the respondent;
	// these stay live and are re-derived when their inputs change
	seededDefaults map[string]bool
}

// NewState builds a fresh session for a parsed definition and seeds default
// values.
func NewState(def *surveydef.SurveyDefinition) *State {
	return NewStateWithAnswers(def, map[string]interface{}{})
}

// NewStateWithAnswers builds a session over pre-existing answers, e.g. when
// re-validating a submission or resuming a saved session. Defaults are seeded
// only for unanswered questions.
func NewStateWithAnswers(def *surveydef.SurveyDefinition, answers map[string]interface{}) *State {
	if answers == nil {
		answers = map[string]interface{}{}
	}
	s := &State{
		Def:            def,
		Answers:        answers,
		questions:      FlattenQuestions(def),
		seededDefaults: map[string]bool{},
	}
	s.seedDefaults()
	return s
}

// FlattenQuestions lists every question of the survey in depth-first
// declaration order, including composite questions and their children.
func FlattenQuestions(def *surveydef.SurveyDefinition) []*surveydef.Question {
	questions := []*surveydef.Question{}
	var walk func(qs []*surveydef.Question)
	walk = func(qs []*surveydef.Question) {
		for _, q := range qs {
			questions = append(questions, q)
			if q.HasElements() {
				walk(q.Elements)
			}
		}
	}
	for _, page := range def.Pages {
		walk(page.Elements)
	}
	return questions
}

// seedDefaults runs default-value seeding as a fixed point: passes repeat
// until no answer changes, so a default expression may reference a default
// declared after it. Only values this seeding wrote are re-evaluated; answers
// that were already present stay untouched. The pass cap terminates circular
// default chains on whatever value they settled first.
func (s *State) seedDefaults() {
	maxPasses := len(s.questions) + 1
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, q := range s.questions {
			if _, answered := s.Answers[q.Name]; answered && !s.seededDefaults[q.Name] {
				continue
			}
			value, ok := s.defaultFor(q)
			if !ok {
				continue
			}
			if prev, exists := s.Answers[q.Name]; exists && reflect.DeepEqual(prev, value) {
				continue
			}
			s.Answers[q.Name] = value
			s.seededDefaults[q.Name] = true
			changed = true
		}
		if !changed {
			return
		}
	}
}

// derivedExpression returns the expression a question's value is computed
// from: defaultValueExpression, or the formula of an expression question.
func derivedExpression(q *surveydef.Question) string {
	if q.DefaultValueExpression != "" {
		return q.DefaultValueExpression
	}
	if q.Type == surveydef.QUESTION_TYPE_EXPRESSION {
		return q.Expression
	}
	return ""
}

// defaultFor computes the seed value for a question: the default value
// expression when present (static defaultValue as fallback on evaluation
// error), else the static defaultValue.
func (s *State) defaultFor(q *surveydef.Question) (interface{}, bool) {
	if expression := derivedExpression(q); expression != "" {
		value, err := surveyexpr.Evaluate(expression, s.Answers)
		if err == nil && value != nil {
			return value, true
		}
		if err != nil {
			slog.Warn("default value expression failed",
				slog.String("question", q.Name),
				slog.String("expression", expression),
				slog.String("error", err.Error()))
		}
		if q.DefaultValue != nil {
			return q.DefaultValue, true
		}
		return nil, false
	}
	if q.DefaultValue != nil {
		return q.DefaultValue, true
	}
	return nil, false
}

// UpdateAnswer records one answer, re-seeds unanswered questions whose default
// expression depends on it, applies reset and set-value rules and finally
// fires the survey triggers.
func (s *State) UpdateAnswer(name string, value interface{}) {
	s.Answers[name] = value
	delete(s.seededDefaults, name)
	s.reseedDependents(name)
	s.CheckResetValues()
	s.applySetValues()
	s.runTriggers()
}

// DeleteAnswer removes an answer, e.g. when a respondent clears a field.
func (s *State) DeleteAnswer(name string) {
	delete(s.Answers, name)
	delete(s.seededDefaults, name)
	s.CheckResetValues()
	s.runTriggers()
}

// reseedDependents re-evaluates the default of every question whose
// defaultValueExpression reads the changed field, unless the respondent has
// answered it explicitly.
func (s *State) reseedDependents(changedName string) {
	for _, q := range s.questions {
		expression := derivedExpression(q)
		if q.Name == changedName || expression == "" {
			continue
		}
		if _, answered := s.Answers[q.Name]; answered && !s.seededDefaults[q.Name] {
			continue
		}
		if !dependsOn(expression, changedName) {
			continue
		}
		if value, ok := s.defaultFor(q); ok {
			s.Answers[q.Name] = value
			s.seededDefaults[q.Name] = true
		}
	}
}

func dependsOn(expression string, fieldName string) bool {
	for _, name := range surveyexpr.FieldNames(expression) {
		if name == fieldName {
			return true
		}
	}
	return false
}

// CheckResetValues clears every answered question whose resetValueIf holds,
// then immediately re-seeds its default. A question with a default is reset to
// that default, not to empty.
func (s *State) CheckResetValues() {
	for _, q := range s.questions {
		if q.ResetValueIf == "" {
			continue
		}
		if _, answered := s.Answers[q.Name]; !answered {
			continue
		}
		if !surveyexpr.EvaluateBool(q.ResetValueIf, s.Answers) {
			continue
		}
		delete(s.Answers, q.Name)
		delete(s.seededDefaults, q.Name)
		if value, ok := s.defaultFor(q); ok {
			s.Answers[q.Name] = value
			s.seededDefaults[q.Name] = true
		}
	}
}

// applySetValues writes computed values into questions whose setValueIf holds.
func (s *State) applySetValues() {
	for _, q := range s.questions {
		if q.SetValueExpression == "" {
			continue
		}
		if q.SetValueIf != "" && !surveyexpr.EvaluateBool(q.SetValueIf, s.Answers) {
			continue
		}
		if q.SetValueIf == "" {
			// without a condition the rule never overrides an explicit answer
			if _, answered := s.Answers[q.Name]; answered && !s.seededDefaults[q.Name] {
				continue
			}
		}
		value, err := surveyexpr.Evaluate(q.SetValueExpression, s.Answers)
		if err != nil {
			slog.Warn("set value expression failed",
				slog.String("question", q.Name),
				slog.String("expression", q.SetValueExpression),
				slog.String("error", err.Error()))
			continue
		}
		s.Answers[q.Name] = value
		s.seededDefaults[q.Name] = true
	}
}

// IsQuestionVisible reports whether the question's visibleIf currently holds.
// Absent conditions are permissive; broken ones hide the question.
func (s *State) IsQuestionVisible(q *surveydef.Question) bool {
	return surveyexpr.EvaluateBool(q.VisibleIf, s.Answers)
}

func (s *State) IsQuestionEnabled(q *surveydef.Question) bool {
	return surveyexpr.EvaluateBool(q.EnableIf, s.Answers)
}

func (s *State) IsQuestionRequired(q *surveydef.Question) bool {
	if q.IsRequired {
		return true
	}
	if q.RequiredIf == "" {
		return false
	}
	return surveyexpr.EvaluateBool(q.RequiredIf, s.Answers)
}

func (s *State) IsPageVisible(page surveydef.Page) bool {
	return surveyexpr.EvaluateBool(page.VisibleIf, s.Answers)
}

// CurrentPage returns the page the session is on.
func (s *State) CurrentPage() surveydef.Page {
	return s.Def.Pages[s.CurrentPageIndex]
}

// NextPage advances one page and keeps skipping invisible pages, but never
// past the last index, even if the landing page is itself invisible.
func (s *State) NextPage() {
	lastIndex := len(s.Def.Pages) - 1
	if s.CurrentPageIndex >= lastIndex {
		return
	}
	s.CurrentPageIndex++
	for s.CurrentPageIndex < lastIndex && !s.IsPageVisible(s.Def.Pages[s.CurrentPageIndex]) {
		s.CurrentPageIndex++
	}
}

// PreviousPage retreats one page, skipping invisible pages, clamped at 0.
func (s *State) PreviousPage() {
	if s.CurrentPageIndex <= 0 {
		return
	}
	s.CurrentPageIndex--
	for s.CurrentPageIndex > 0 && !s.IsPageVisible(s.Def.Pages[s.CurrentPageIndex]) {
		s.CurrentPageIndex--
	}
}

// HasVisiblePagesAfterCurrent tells the presentation layer whether "Next"
// should read as "Complete".
func (s *State) HasVisiblePagesAfterCurrent() bool {
	for i := s.CurrentPageIndex + 1; i < len(s.Def.Pages); i++ {
		if s.IsPageVisible(s.Def.Pages[i]) {
			return true
		}
	}
	return false
}

// ValidateCurrentPage checks the page the session is on.
func (s *State) ValidateCurrentPage() ValidationResult {
	return ValidatePage(s.CurrentPage(), s.Answers)
}

// ValidateAll checks the whole survey with the session's answers.
func (s *State) ValidateAll() ValidationResult {
	return ValidateAll(s.Def, s.Answers)
}
