package utils

import (
	"fmt"
	"time"
)

// GenerateFormVersionID produces a new version ID of the form "YY-MM-N",
// where N is incremented until the ID is not present in existingVersionIDs.
func GenerateFormVersionID(existingVersionIDs []string) string {
	t := time.Now()

	date := t.Format("06-01")

	counter := 1
	newID := fmt.Sprintf("%s-%d", date, counter)
	for ContainsString(existingVersionIDs, newID) {
		counter += 1
		newID = fmt.Sprintf("%s-%d", date, counter)
	}

	return newID
}
