package survey

import (
	"context"
	"log/slog"
	"time"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_FORMS       = "forms"
	COLLECTION_NAME_SUBMISSIONS = "submissions"
)

type SurveyDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
	InstanceIDs     []string
}

func NewSurveyDBService(configs db.DBConfig) (*SurveyDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	surveyDBSc := &SurveyDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
		InstanceIDs:     configs.InstanceIDs,
	}

	if configs.RunIndexCreation {
		if err := surveyDBSc.ensureIndexes(); err != nil {
			slog.Error("Error ensuring indexes for survey DB", slog.String("error", err.Error()))
		}
	}

	return surveyDBSc, nil
}

func (dbService *SurveyDBService) getDBName(instanceID string) string {
	return dbService.DBNamePrefix + instanceID + "_surveyDB"
}

func (dbService *SurveyDBService) collectionForms(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_FORMS)
}

func (dbService *SurveyDBService) collectionSubmissions(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_SUBMISSIONS)
}

func (dbService *SurveyDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *SurveyDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for survey DB")
	for _, instanceID := range dbService.InstanceIDs {
		ctx, cancel := dbService.getContext()
		defer cancel()

		_, err := dbService.collectionForms(instanceID).Indexes().CreateMany(ctx, indexesForFormsCollection)
		if err != nil {
			slog.Error("Error creating indexes for forms collection", slog.String("error", err.Error()), slog.String("instanceID", instanceID))
		}

		_, err = dbService.collectionSubmissions(instanceID).Indexes().CreateMany(ctx, indexesForSubmissionsCollection)
		if err != nil {
			slog.Error("Error creating indexes for submissions collection", slog.String("error", err.Error()), slog.String("instanceID", instanceID))
		}

		dbService.warnAboutUnexpectedIndexes(ctx, instanceID)
	}
	return nil
}

// warnAboutUnexpectedIndexes reports indexes that are neither the default _id
// index nor one of the managed ones, e.g. leftovers from older deployments.
func (dbService *SurveyDBService) warnAboutUnexpectedIndexes(ctx context.Context, instanceID string) {
	expected := map[string]bool{"_id_": true}
	for _, index := range indexesForFormsCollection {
		expected[*index.Options.Name] = true
	}
	for _, index := range indexesForSubmissionsCollection {
		expected[*index.Options.Name] = true
	}

	for _, collection := range []*mongo.Collection{
		dbService.collectionForms(instanceID),
		dbService.collectionSubmissions(instanceID),
	} {
		indexes, err := db.ListCollectionIndexes(ctx, collection)
		if err != nil {
			slog.Error("Error listing indexes", slog.String("error", err.Error()), slog.String("instanceID", instanceID), slog.String("collection", collection.Name()))
			continue
		}
		for _, index := range indexes {
			name, ok := index["name"].(string)
			if ok && !expected[name] {
				slog.Warn("Unexpected index on collection", slog.String("instanceID", instanceID), slog.String("collection", collection.Name()), slog.String("index", name))
			}
		}
	}
}
