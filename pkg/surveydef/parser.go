package surveydef

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Parse converts a survey definition into its internal representation. The
// input may be a JSON string, raw bytes or an already decoded object.
func Parse(raw interface{}) (*SurveyDefinition, error) {
	var root map[string]interface{}
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &root); err != nil {
			return nil, newParseError("could not parse survey JSON", err)
		}
	case []byte:
		if err := json.Unmarshal(v, &root); err != nil {
			return nil, newParseError("could not parse survey JSON", err)
		}
	case map[string]interface{}:
		root = v
	default:
		return nil, newParseError(fmt.Sprintf("unsupported survey input type %T", raw), nil)
	}
	if root == nil {
		return nil, newParseError("survey definition is empty", nil)
	}

	p := &defParser{seenNames: map[string]string{}}
	def, err := p.parseRoot(root)
	if err != nil {
		return nil, err
	}
	return def, nil
}

type defParser struct {
	// question name -> dotted id of first occurrence, for duplicate detection
	seenNames map[string]string
}

func (p *defParser) parseRoot(root map[string]interface{}) (*SurveyDefinition, error) {
	def := &SurveyDefinition{
		ID:                           getString(root, "id"),
		Title:                        getString(root, "title"),
		Description:                  getString(root, "description"),
		ShowProgressBar:              getFlag(root, "showProgressBar"),
		ShowTitle:                    getFlag(root, "showTitle"),
		ShowPageTitles:               getFlag(root, "showPageTitles"),
		ShowQuestionNumbers:          getFlag(root, "showQuestionNumbers"),
		ShowErrorLocation:            getString(root, "questionErrorLocation"),
		GoNextPageAutomatic:          getFlag(root, "goNextPageAutomatic"),
		AllowCompleteSurveyAutomatic: getFlag(root, "allowCompleteSurveyAutomatic"),
	}

	rawPages, hasPages := root["pages"].([]interface{})
	if !hasPages {
		// a bare elements array becomes a single implicit page
		if _, hasElements := root["elements"].([]interface{}); !hasElements {
			return nil, newParseError("survey definition has neither pages nor elements", nil)
		}
		rawPages = []interface{}{map[string]interface{}{
			"name":     "page1",
			"elements": root["elements"],
		}}
	}

	for i, rawPage := range rawPages {
		pageObj, ok := rawPage.(map[string]interface{})
		if !ok {
			return nil, newParseError(fmt.Sprintf("page at index %d is not an object", i), nil)
		}
		page, err := p.parsePage(pageObj, i)
		if err != nil {
			return nil, err
		}
		def.Pages = append(def.Pages, page)
	}

	if rawTriggers, ok := root["triggers"].([]interface{}); ok {
		for i, rawTrigger := range rawTriggers {
			triggerObj, ok := rawTrigger.(map[string]interface{})
			if !ok {
				return nil, newParseError(fmt.Sprintf("trigger at index %d is not an object", i), nil)
			}
			def.Triggers = append(def.Triggers, parseTrigger(triggerObj))
		}
	}

	return def, nil
}

func (p *defParser) parsePage(raw map[string]interface{}, index int) (Page, error) {
	page := Page{
		Name:        getString(raw, "name"),
		Title:       getString(raw, "title"),
		Description: getString(raw, "description"),
		VisibleIf:   getString(raw, "visibleIf"),
	}
	if page.Name == "" {
		page.Name = fmt.Sprintf("page%d", index+1)
	}

	rawElements, _ := raw["elements"].([]interface{})
	for i, rawElement := range rawElements {
		elementObj, ok := rawElement.(map[string]interface{})
		if !ok {
			return page, newParseError(fmt.Sprintf("element at index %d of page %s is not an object", i, page.Name), nil)
		}
		question, err := p.parseQuestion(elementObj, "")
		if err != nil {
			return page, err
		}
		page.Elements = append(page.Elements, question)
	}
	return page, nil
}

func (p *defParser) parseQuestion(raw map[string]interface{}, parentID string) (*Question, error) {
	name := getString(raw, "name")
	if name == "" {
		return nil, newParseError("question without a name", nil)
	}
	questionType := getString(raw, "type")
	if !isKnownQuestionType(questionType) {
		return nil, newParseError(fmt.Sprintf("unknown question type %q for question %s", questionType, name), nil)
	}

	id := name
	if parentID != "" {
		id = parentID + "." + name
	}
	if firstID, exists := p.seenNames[name]; exists {
		return nil, newParseError(fmt.Sprintf("duplicate question name %q (first used by %s)", name, firstID), nil)
	}
	p.seenNames[name] = id

	q := &Question{
		ID:      id,
		Name:    name,
		Type:    questionType,
		Variant: getQuestionVariant(questionType, raw),

		Title:       getString(raw, "title"),
		Description: getString(raw, "description"),
		Placeholder: getString(raw, "placeholder"),
		IsRequired:  getFlag(raw, "isRequired"),

		VisibleIf:              getString(raw, "visibleIf"),
		EnableIf:               getString(raw, "enableIf"),
		RequiredIf:             getString(raw, "requiredIf"),
		SetValueIf:             getString(raw, "setValueIf"),
		SetValueExpression:     getString(raw, "setValueExpression"),
		DefaultValueExpression: getString(raw, "defaultValueExpression"),
		ResetValueIf:           getString(raw, "resetValueIf"),
		DefaultValue:           raw["defaultValue"],
	}

	switch questionType {
	case QUESTION_TYPE_RADIOGROUP, QUESTION_TYPE_CHECKBOX, QUESTION_TYPE_DROPDOWN,
		QUESTION_TYPE_TAGBOX, QUESTION_TYPE_RANKING, QUESTION_TYPE_IMAGEPICKER:
		q.Choices = parseChoices(raw["choices"])
	case QUESTION_TYPE_MATRIX, QUESTION_TYPE_MATRIXDROPDOWN:
		q.Rows = parseChoices(raw["rows"])
		q.Columns = parseChoices(raw["columns"])
	case QUESTION_TYPE_MATRIXDYNAMIC:
		q.Rows = parseChoices(raw["rows"])
		q.Columns = parseChoices(raw["columns"])
		q.RowCount = getInt(raw, "rowCount")
		q.MinRowCount = getInt(raw, "minRowCount")
		q.MaxRowCount = getInt(raw, "maxRowCount")
	case QUESTION_TYPE_TEXT, QUESTION_TYPE_COMMENT:
		q.Min = getFloatPtr(raw, "min")
		q.Max = getFloatPtr(raw, "max")
		q.Step = getFloatPtr(raw, "step")
		q.MinLength = getInt(raw, "minLength")
		q.MaxLength = getInt(raw, "maxLength")
	case QUESTION_TYPE_RATING:
		q.RateMin = getInt(raw, "rateMin")
		q.RateMax = getInt(raw, "rateMax")
		q.RateCount = getInt(raw, "rateCount")
	case QUESTION_TYPE_FILE:
		q.Multiple = getFlag(raw, "allowMultiple") || getFlag(raw, "multiple")
		q.MaxFileSize = int64(getInt(raw, "maxSize"))
		q.AcceptedTypes = getString(raw, "acceptedTypes")
	case QUESTION_TYPE_HTML:
		q.HTML = getString(raw, "html")
	case QUESTION_TYPE_IMAGE:
		q.ImageLink = getString(raw, "imageLink")
	case QUESTION_TYPE_EXPRESSION:
		q.Expression = getString(raw, "expression")
	case QUESTION_TYPE_PANEL:
		if err := p.parseChildren(raw["elements"], id, q); err != nil {
			return nil, err
		}
	case QUESTION_TYPE_PANELDYNAMIC:
		if err := p.parseChildren(raw["elements"], id, q); err != nil {
			return nil, err
		}
		q.RowCount = getInt(raw, "panelCount")
		q.MinRowCount = getInt(raw, "minPanelCount")
		q.MaxRowCount = getInt(raw, "maxPanelCount")
	case QUESTION_TYPE_MULTIPLETEXT:
		children := raw["items"]
		if children == nil {
			children = raw["elements"]
		}
		if err := p.parseChildren(children, id, q); err != nil {
			return nil, err
		}
	}

	return q, nil
}

// parseChildren recurses into a composite question's nested elements. Children
// keep their own name as answer-map key; only the id reflects nesting.
func (p *defParser) parseChildren(rawChildren interface{}, parentID string, parent *Question) error {
	children, ok := rawChildren.([]interface{})
	if !ok {
		return nil
	}
	for i, rawChild := range children {
		childObj, ok := rawChild.(map[string]interface{})
		if !ok {
			return newParseError(fmt.Sprintf("nested element at index %d of %s is not an object", i, parentID), nil)
		}
		// multipletext items carry no type of their own
		if getString(childObj, "type") == "" {
			childObj["type"] = QUESTION_TYPE_TEXT
		}
		child, err := p.parseQuestion(childObj, parentID)
		if err != nil {
			return err
		}
		parent.Elements = append(parent.Elements, child)
	}
	return nil
}

// parseChoices normalizes the heterogeneous choice representations: a bare
// primitive, or an object using value/name and text/title in that precedence.
func parseChoices(raw interface{}) []Choice {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	choices := make([]Choice, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]interface{}:
			value := coerceToString(v["value"])
			if value == "" {
				value = getString(v, "name")
			}
			text := getString(v, "text")
			if text == "" {
				text = getString(v, "title")
			}
			if text == "" {
				text = value
			}
			choices = append(choices, Choice{
				Value:     value,
				Text:      text,
				VisibleIf: getString(v, "visibleIf"),
				EnableIf:  getString(v, "enableIf"),
				ImageLink: getString(v, "imageLink"),
			})
		default:
			value := coerceToString(v)
			choices = append(choices, Choice{Value: value, Text: value})
		}
	}
	return choices
}

func parseTrigger(raw map[string]interface{}) Trigger {
	return Trigger{
		Type:          getString(raw, "type"),
		Expression:    getString(raw, "expression"),
		SetToName:     getString(raw, "setToName"),
		SetValue:      raw["setValue"],
		FromName:      getString(raw, "fromName"),
		GotoName:      getString(raw, "gotoName"),
		RunExpression: getString(raw, "runExpression"),
	}
}
