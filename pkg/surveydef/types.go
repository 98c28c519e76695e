package surveydef

// Question types understood by the parser.
const (
	QUESTION_TYPE_TEXT           = "text"
	QUESTION_TYPE_COMMENT        = "comment"
	QUESTION_TYPE_RADIOGROUP     = "radiogroup"
	QUESTION_TYPE_CHECKBOX       = "checkbox"
	QUESTION_TYPE_DROPDOWN       = "dropdown"
	QUESTION_TYPE_TAGBOX         = "tagbox"
	QUESTION_TYPE_BOOLEAN        = "boolean"
	QUESTION_TYPE_RATING         = "rating"
	QUESTION_TYPE_FILE           = "file"
	QUESTION_TYPE_IMAGEPICKER    = "imagepicker"
	QUESTION_TYPE_RANKING        = "ranking"
	QUESTION_TYPE_MULTIPLETEXT   = "multipletext"
	QUESTION_TYPE_MATRIX         = "matrix"
	QUESTION_TYPE_MATRIXDROPDOWN = "matrixdropdown"
	QUESTION_TYPE_MATRIXDYNAMIC  = "matrixdynamic"
	QUESTION_TYPE_HTML           = "html"
	QUESTION_TYPE_PANEL          = "panel"
	QUESTION_TYPE_PANELDYNAMIC   = "paneldynamic"
	QUESTION_TYPE_EXPRESSION     = "expression"
	QUESTION_TYPE_IMAGE          = "image"
	QUESTION_TYPE_SIGNATUREPAD   = "signaturepad"
	QUESTION_TYPE_GEOPOINT       = "geopoint"
	QUESTION_TYPE_MICROPHONE     = "microphone"
)

// Trigger types.
const (
	TRIGGER_TYPE_COMPLETE       = "complete"
	TRIGGER_TYPE_SETVALUE       = "setvalue"
	TRIGGER_TYPE_COPYVALUE      = "copyvalue"
	TRIGGER_TYPE_RUNEXPRESSION  = "runexpression"
	TRIGGER_TYPE_SKIP           = "skip"
)

// SurveyDefinition is the parsed, immutable form of a survey JSON document.
type SurveyDefinition struct {
	ID          string
	Title       string
	Description string
	Pages       []Page
	Triggers    []Trigger

	ShowProgressBar     bool
	ShowTitle           bool
	ShowPageTitles      bool
	ShowQuestionNumbers bool
	ShowErrorLocation   string
	GoNextPageAutomatic bool
	AllowCompleteSurveyAutomatic bool
}

type Page struct {
	Name        string
	Title       string
	Description string
	VisibleIf   string
	Elements    []*Question
}

// Question carries the union of all per-type payloads; Type selects which
// fields are meaningful. ID is the dotted path reflecting panel nesting,
// Name stays the flat answer-map key even for nested questions.
type Question struct {
	ID      string
	Name    string
	Type    string
	Variant string

	Title       string
	Description string
	Placeholder string
	IsRequired  bool

	VisibleIf              string
	EnableIf               string
	RequiredIf             string
	SetValueIf             string
	SetValueExpression     string
	DefaultValueExpression string
	ResetValueIf           string
	DefaultValue           interface{}

	// choice-bearing types
	Choices []Choice

	// matrix types
	Rows    []Choice
	Columns []Choice

	// numeric and length bounds
	Min       *float64
	Max       *float64
	Step      *float64
	MinLength int
	MaxLength int

	// rating bounds
	RateMin   int
	RateMax   int
	RateCount int

	// file constraints
	Multiple      bool
	MaxFileSize   int64
	AcceptedTypes string

	// dynamic rows / panels
	RowCount    int
	MinRowCount int
	MaxRowCount int

	// composite types (panel, paneldynamic, multipletext)
	Elements []*Question

	// html / image payloads
	HTML      string
	ImageLink string

	// expression questions
	Expression string
}

// Choice is the normalized shape for options, image picker items and matrix
// rows/columns.
type Choice struct {
	Value     string
	Text      string
	VisibleIf string
	EnableIf  string
	ImageLink string
}

// Trigger is a survey-level reactive rule, fired on answer changes.
type Trigger struct {
	Type          string
	Expression    string
	SetToName     string
	SetValue      interface{}
	FromName      string
	GotoName      string
	RunExpression string
}

// HasElements reports whether the question is a composite that nests child
// questions.
func (q *Question) HasElements() bool {
	return len(q.Elements) > 0
}
