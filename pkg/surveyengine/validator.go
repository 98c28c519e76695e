package surveyengine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveydef"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveyexpr"
)

// ValidationResult is user-facing data, not an error: the caller renders the
// messages directly.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateAll checks every page of the survey against the answers. Pages whose
// visibleIf does not hold are skipped wholesale, required questions included.
func ValidateAll(def *surveydef.SurveyDefinition, answers map[string]interface{}) ValidationResult {
	errors := []string{}
	for _, page := range def.Pages {
		if !surveyexpr.EvaluateBool(page.VisibleIf, answers) {
			continue
		}
		validateQuestions(page.Elements, answers, &errors)
	}
	return ValidationResult{IsValid: len(errors) == 0, Errors: errors}
}

// ValidatePage applies the same rules to a single page.
func ValidatePage(page surveydef.Page, answers map[string]interface{}) ValidationResult {
	errors := []string{}
	if surveyexpr.EvaluateBool(page.VisibleIf, answers) {
		validateQuestions(page.Elements, answers, &errors)
	}
	return ValidationResult{IsValid: len(errors) == 0, Errors: errors}
}

func validateQuestions(questions []*surveydef.Question, answers map[string]interface{}, errors *[]string) {
	for _, q := range questions {
		if !surveyexpr.EvaluateBool(q.VisibleIf, answers) {
			continue
		}
		if !surveyexpr.EvaluateBool(q.EnableIf, answers) {
			continue
		}
		if q.HasElements() {
			// composite questions validate through their children
			validateQuestions(q.Elements, answers, errors)
			continue
		}
		validateQuestion(q, answers, errors)
	}
}

func validateQuestion(q *surveydef.Question, answers map[string]interface{}, errors *[]string) {
	value, hasValue := answers[q.Name]
	if !hasValue || value == nil || value == "" {
		if isRequired(q, answers) {
			*errors = append(*errors, fmt.Sprintf("%s is required", titleOrName(q)))
		}
		return
	}

	switch q.Type {
	case surveydef.QUESTION_TYPE_TEXT:
		validateTextValue(q, value, errors)
	case surveydef.QUESTION_TYPE_COMMENT:
		validateLengthBounds(q, value, errors)
	case surveydef.QUESTION_TYPE_FILE:
		if q.Multiple {
			if _, ok := value.([]interface{}); !ok {
				*errors = append(*errors, fmt.Sprintf("%s must be a list of files", titleOrName(q)))
			}
		}
	case surveydef.QUESTION_TYPE_MICROPHONE:
		if _, ok := value.(string); !ok {
			*errors = append(*errors, fmt.Sprintf("%s must be a recording", titleOrName(q)))
		}
	}
}

func validateTextValue(q *surveydef.Question, value interface{}, errors *[]string) {
	switch q.Variant {
	case "email":
		str, _ := value.(string)
		if !emailRegex.MatchString(str) {
			*errors = append(*errors, fmt.Sprintf("%s must be a valid email", titleOrName(q)))
		}
	case "number":
		if !isNumeric(value) {
			*errors = append(*errors, fmt.Sprintf("%s must be a number", titleOrName(q)))
		}
	}
	validateLengthBounds(q, value, errors)
}

func validateLengthBounds(q *surveydef.Question, value interface{}, errors *[]string) {
	str, ok := value.(string)
	if !ok {
		return
	}
	if q.MinLength > 0 && len(str) < q.MinLength {
		*errors = append(*errors, fmt.Sprintf("%s must be at least %d characters", titleOrName(q), q.MinLength))
	}
	if q.MaxLength > 0 && len(str) > q.MaxLength {
		*errors = append(*errors, fmt.Sprintf("%s must be at most %d characters", titleOrName(q), q.MaxLength))
	}
}

func isRequired(q *surveydef.Question, answers map[string]interface{}) bool {
	if q.IsRequired {
		return true
	}
	if q.RequiredIf == "" {
		return false
	}
	return surveyexpr.EvaluateBool(q.RequiredIf, answers)
}

func isNumeric(value interface{}) bool {
	switch v := value.(type) {
	case float64, float32, int, int32, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	default:
		return false
	}
}

func titleOrName(q *surveydef.Question) string {
	if q.Title != "" {
		return q.Title
	}
	return q.Name
}
