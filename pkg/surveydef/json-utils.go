package surveydef

import "strconv"

func getString(raw map[string]interface{}, key string) string {
	value, _ := raw[key].(string)
	return value
}

// getFlag accepts JSON booleans and the string forms some authoring tools
// emit ("true"/"false", or a placement value like "top" for progress bars).
func getFlag(raw map[string]interface{}, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "off" && v != "none"
	default:
		return false
	}
}

func getInt(raw map[string]interface{}, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case string:
		num, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return num
	default:
		return 0
	}
}

func getFloatPtr(raw map[string]interface{}, key string) *float64 {
	switch v := raw[key].(type) {
	case float64:
		return &v
	case string:
		num, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &num
	default:
		return nil
	}
}

func coerceToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
