package surveyengine

import (
	"log/slog"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveydef"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveyexpr"
)

// runTriggers fires every trigger whose guard expression holds, in declaration
// order. Answers written by a trigger re-seed dependent defaults but do not
// re-fire the trigger list within the same update.
func (s *State) runTriggers() {
	for _, trigger := range s.Def.Triggers {
		if !surveyexpr.EvaluateBool(trigger.Expression, s.Answers) {
			continue
		}
		s.fireTrigger(trigger)
	}
}

func (s *State) fireTrigger(trigger surveydef.Trigger) {
	switch trigger.Type {
	case surveydef.TRIGGER_TYPE_COMPLETE:
		s.CompleteRequested = true
	case surveydef.TRIGGER_TYPE_SETVALUE:
		if trigger.SetToName == "" {
			return
		}
		s.Answers[trigger.SetToName] = trigger.SetValue
		delete(s.seededDefaults, trigger.SetToName)
		s.reseedDependents(trigger.SetToName)
	case surveydef.TRIGGER_TYPE_COPYVALUE:
		if trigger.SetToName == "" || trigger.FromName == "" {
			return
		}
		if value, ok := s.Answers[trigger.FromName]; ok {
			s.Answers[trigger.SetToName] = value
		} else {
			delete(s.Answers, trigger.SetToName)
		}
		delete(s.seededDefaults, trigger.SetToName)
		s.reseedDependents(trigger.SetToName)
	case surveydef.TRIGGER_TYPE_RUNEXPRESSION:
		if trigger.RunExpression == "" {
			return
		}
		value, err := surveyexpr.Evaluate(trigger.RunExpression, s.Answers)
		if err != nil {
			slog.Warn("trigger expression failed",
				slog.String("expression", trigger.RunExpression),
				slog.String("error", err.Error()))
			return
		}
		if trigger.SetToName != "" {
			s.Answers[trigger.SetToName] = value
			delete(s.seededDefaults, trigger.SetToName)
			s.reseedDependents(trigger.SetToName)
		}
	case surveydef.TRIGGER_TYPE_SKIP:
		s.skipToQuestion(trigger.GotoName)
	default:
		slog.Warn("unknown trigger type", slog.String("type", trigger.Type))
	}
}

// skipToQuestion jumps forward to the page holding the named question. Skip
// triggers never move backwards.
func (s *State) skipToQuestion(questionName string) {
	if questionName == "" {
		return
	}
	for i := s.CurrentPageIndex + 1; i < len(s.Def.Pages); i++ {
		if pageContainsQuestion(s.Def.Pages[i], questionName) {
			s.CurrentPageIndex = i
			return
		}
	}
}

func pageContainsQuestion(page surveydef.Page, questionName string) bool {
	var contains func(qs []*surveydef.Question) bool
	contains = func(qs []*surveydef.Question) bool {
		for _, q := range qs {
			if q.Name == questionName {
				return true
			}
			if q.HasElements() && contains(q.Elements) {
				return true
			}
		}
		return false
	}
	return contains(page.Elements)
}
