package surveydef

import "fmt"

// ParseError is returned when the survey JSON cannot be turned into a
// SurveyDefinition. Parsing is all-or-nothing, there is no partial survey.
type ParseError struct {
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause.Error())
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newParseError(msg string, cause error) *ParseError {
	return &ParseError{Msg: msg, Cause: cause}
}
