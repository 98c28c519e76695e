package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/apihelpers"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/db"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	surveyDB "github.com/friendlylabs/surveyr-app-sub000/pkg/db/survey"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_SURVEY_DB_USERNAME = "SURVEY_DB_USERNAME"
	ENV_SURVEY_DB_PASSWORD = "SURVEY_DB_PASSWORD"

	ENV_RESPONDENT_JWT_SIGN_KEY   = "RESPONDENT_JWT_SIGN_KEY"
	ENV_RESPONDENT_JWT_EXPIRES_IN = "RESPONDENT_JWT_EXPIRES_IN"

	ENV_MANAGEMENT_API_KEYS = "MANAGEMENT_API_KEYS"
)

type SurveyApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	AllowedInstanceIDs []string `json:"allowed_instance_ids" yaml:"allowed_instance_ids"`

	// DB configs
	DBConfigs struct {
		SurveyDB db.DBConfigYaml `json:"survey_db" yaml:"survey_db"`
	} `json:"db_configs" yaml:"db_configs"`

	RespondentJWTConfig struct {
		SignKey   string        `json:"sign_key" yaml:"sign_key"`
		ExpiresIn time.Duration `json:"expires_in" yaml:"expires_in"`
	} `json:"respondent_jwt_config" yaml:"respondent_jwt_config"`

	ManagementAPIKeys []string `json:"management_api_keys" yaml:"management_api_keys"`
}

var (
	surveyDBService *surveyDB.SurveyDBService
)

func init() {
	// Optional .env file for local development
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded")
	}

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

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if conf.RespondentJWTConfig.SignKey == "" {
		slog.Error("respondent JWT sign key not set")
		panic("respondent JWT sign key not set")
	}

	if len(conf.ManagementAPIKeys) == 0 {
		slog.Warn("no management API keys configured, management endpoints will reject all requests")
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_SURVEY_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.SurveyDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_SURVEY_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.SurveyDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_RESPONDENT_JWT_SIGN_KEY); signKey != "" {
		conf.RespondentJWTConfig.SignKey = signKey
	}

	if expiresIn := os.Getenv(ENV_RESPONDENT_JWT_EXPIRES_IN); expiresIn != "" {
		d, err := utils.ParseDurationString(expiresIn)
		if err != nil {
			slog.Error("could not parse token expiration override", slog.String("error", err.Error()))
			panic(err)
		}
		conf.RespondentJWTConfig.ExpiresIn = d
	}

	if apiKeys := os.Getenv(ENV_MANAGEMENT_API_KEYS); apiKeys != "" {
		conf.ManagementAPIKeys = strings.Split(apiKeys, ",")
	}
}

func initDBs() {
	var err error
	surveyDBService, err = surveyDB.NewSurveyDBService(db.DBConfigFromYamlObj(conf.DBConfigs.SurveyDB, conf.AllowedInstanceIDs))
	if err != nil {
		slog.Error("Error connecting to Survey DB", slog.String("error", err.Error()))
		return
	}
}
