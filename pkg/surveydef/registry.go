package surveydef

// typeInfo describes parser behavior for one question type: where its variant
// selector lives in the source JSON and which values are accepted.
type typeInfo struct {
	variantKey      string
	allowedVariants []string
}

const DEFAULT_VARIANT = "default"

// questionTypeRegistry lists every supported question type. Types without a
// variantKey have no variant at all.
var questionTypeRegistry = map[string]typeInfo{
	QUESTION_TYPE_TEXT: {
		variantKey: "inputType",
		allowedVariants: []string{
			"text", "number", "email", "date", "datetime-local", "time",
			"tel", "url", "password", "color", "range", "month", "week",
		},
	},
	QUESTION_TYPE_COMMENT:    {},
	QUESTION_TYPE_RADIOGROUP: {},
	QUESTION_TYPE_CHECKBOX:   {},
	QUESTION_TYPE_DROPDOWN:   {},
	QUESTION_TYPE_TAGBOX:     {},
	QUESTION_TYPE_BOOLEAN:    {},
	QUESTION_TYPE_RATING: {
		variantKey:      "rateType",
		allowedVariants: []string{"labels", "stars", "smileys"},
	},
	QUESTION_TYPE_FILE:           {},
	QUESTION_TYPE_IMAGEPICKER:    {},
	QUESTION_TYPE_RANKING:        {},
	QUESTION_TYPE_MULTIPLETEXT:   {},
	QUESTION_TYPE_MATRIX:         {},
	QUESTION_TYPE_MATRIXDROPDOWN: {},
	QUESTION_TYPE_MATRIXDYNAMIC:  {},
	QUESTION_TYPE_HTML:           {},
	QUESTION_TYPE_PANEL:          {},
	QUESTION_TYPE_PANELDYNAMIC:   {},
	QUESTION_TYPE_EXPRESSION:     {},
	QUESTION_TYPE_IMAGE:          {},
	QUESTION_TYPE_SIGNATUREPAD:   {},
	QUESTION_TYPE_GEOPOINT: {
		variantKey:      "geoFormat",
		allowedVariants: []string{"default", "manual", "map"},
	},
	QUESTION_TYPE_MICROPHONE: {},
}

// getQuestionVariant resolves the variant for a raw question object. Types
// with a variant key fall back to "default" when the key is absent or its
// value is not in the allow-list; types without a variant key yield "".
func getQuestionVariant(questionType string, raw map[string]interface{}) string {
	info, ok := questionTypeRegistry[questionType]
	if !ok || info.variantKey == "" {
		return ""
	}
	value, ok := raw[info.variantKey].(string)
	if !ok {
		return DEFAULT_VARIANT
	}
	for _, allowed := range info.allowedVariants {
		if value == allowed {
			return value
		}
	}
	return DEFAULT_VARIANT
}

func isKnownQuestionType(questionType string) bool {
	_, ok := questionTypeRegistry[questionType]
	return ok
}
