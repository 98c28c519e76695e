package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/db"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/utils"
	"gopkg.in/yaml.v2"

	surveyDB "github.com/friendlylabs/surveyr-app-sub000/pkg/db/survey"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_SURVEY_DB_USERNAME = "SURVEY_DB_USERNAME"
	ENV_SURVEY_DB_PASSWORD = "SURVEY_DB_PASSWORD"
)

type SubmissionExportTask struct {
	InstanceID string `json:"instance_id" yaml:"instance_id"`
	FormKey    string `json:"form_key" yaml:"form_key"`
	// Export submissions that arrived in the last N days, 0 exports everything
	LookbackDays int `json:"lookback_days" yaml:"lookback_days"`
}

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		SurveyDB db.DBConfigYaml `json:"survey_db" yaml:"survey_db"`
	} `json:"db_configs" yaml:"db_configs"`

	ExportPath string `json:"export_path" yaml:"export_path"`

	InstanceIDs []string `json:"instance_ids" yaml:"instance_ids"`

	ExportTasks []SubmissionExportTask `json:"export_tasks" yaml:"export_tasks"`
}

var conf config

var (
	surveyDBService *surveyDB.SurveyDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
		conf.Logging.IncludeBuildInfo,
	)

	// Override secrets from environment variables
	secretsOverride()

	// init db
	initDBs()

	if conf.ExportPath == "" {
		err := fmt.Errorf("export path must be set to define where to store the export files")
		slog.Error("Error reading config", slog.String("error", err.Error()))
		panic(err)
	}

	if _, err := os.Stat(conf.ExportPath); os.IsNotExist(err) {
		// create folder
		err = os.MkdirAll(conf.ExportPath, os.ModePerm)
		if err != nil {
			slog.Error("Error creating export path", slog.String("error", err.Error()))
			panic(err)
		}
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_SURVEY_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.SurveyDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_SURVEY_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.SurveyDB.Password = dbPassword
	}
}

func initDBs() {
	var err error
	surveyDBService, err = surveyDB.NewSurveyDBService(db.DBConfigFromYamlObj(conf.DBConfigs.SurveyDB, conf.InstanceIDs))
	if err != nil {
		slog.Error("Error connecting to Survey DB", slog.String("error", err.Error()))
		panic(err)
	}
}
