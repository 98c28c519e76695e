package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"

	surveyDB "github.com/friendlylabs/surveyr-app-sub000/pkg/db/survey"
)

func main() {
	slog.Info("Starting submission export job")
	start := time.Now()

	for _, task := range conf.ExportTasks {
		if err := runExportTask(task); err != nil {
			slog.Error("Export task failed", slog.String("instanceID", task.InstanceID), slog.String("formKey", task.FormKey), slog.String("error", err.Error()))
			continue
		}
	}

	if err := surveyDBService.DBClient.Disconnect(context.Background()); err != nil {
		slog.Error("Error closing DB connection", slog.String("error", err.Error()))
	}
	slog.Info("Submission export job completed", slog.String("duration", time.Since(start).String()))
}

// runExportTask writes the matching submissions of one form as a JSON lines
// file into the export path.
func runExportTask(task SubmissionExportTask) error {
	filter := bson.M{"formKey": task.FormKey}
	if task.LookbackDays > 0 {
		earliest := time.Now().AddDate(0, 0, -task.LookbackDays).Unix()
		filter["arrivedAt"] = bson.M{"$gte": earliest}
	}

	filename := fmt.Sprintf("%s_%s_%s.jsonl", task.InstanceID, task.FormKey, time.Now().Format("2006-01-02"))
	file, err := os.Create(filepath.Join(conf.ExportPath, filename))
	if err != nil {
		return err
	}
	defer file.Close()

	count := 0
	err = surveyDBService.FindSubmissions(task.InstanceID, filter, func(submission surveyDB.Submission) error {
		line, err := json.Marshal(submission)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Export file written", slog.String("filename", filename), slog.Int("count", count))
	return nil
}
