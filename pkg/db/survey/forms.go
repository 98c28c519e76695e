package survey

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var indexesForFormsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "formKey", Value: 1},
			{Key: "unpublished", Value: 1},
			{Key: "published", Value: -1},
		},
		Options: options.Index().SetName("formKey_unpublished_published_1"),
	},
	{
		Keys: bson.D{
			{Key: "formKey", Value: 1},
			{Key: "versionID", Value: 1},
		},
		Options: options.Index().SetName("formKey_versionID_1").SetUnique(true),
	},
}

// SaveFormVersion stores a new version of a form and closes the previously
// published one.
func (dbService *SurveyDBService) SaveFormVersion(instanceID string, form FormInfo) error {
	if form.FormKey == "" {
		return errors.New("form key must not be empty")
	}

	now := time.Now().Unix()
	if form.Published == 0 {
		form.Published = now
	}

	if err := dbService.UnpublishForm(instanceID, form.FormKey); err != nil {
		return err
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionForms(instanceID).InsertOne(ctx, form)
	return err
}

// GetCurrentFormVersion returns the latest published, not yet unpublished
// version of the form.
func (dbService *SurveyDBService) GetCurrentFormVersion(instanceID string, formKey string) (form FormInfo, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"formKey":     formKey,
		"unpublished": bson.M{"$in": []interface{}{nil, int64(0)}},
	}
	opts := options.FindOne().SetSort(bson.M{"published": -1})

	err = dbService.collectionForms(instanceID).FindOne(ctx, filter, opts).Decode(&form)
	return form, err
}

// GetFormVersions lists all stored versions of the form, newest first.
func (dbService *SurveyDBService) GetFormVersions(instanceID string, formKey string) (forms []FormInfo, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	opts := options.Find().SetSort(bson.M{"published": -1})
	cursor, err := dbService.collectionForms(instanceID).Find(ctx, bson.M{"formKey": formKey}, opts)
	if err != nil {
		return forms, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &forms)
	return forms, err
}

// GetFormVersion fetches one specific version of the form.
func (dbService *SurveyDBService) GetFormVersion(instanceID string, formKey string, versionID string) (form FormInfo, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"formKey": formKey, "versionID": versionID}
	err = dbService.collectionForms(instanceID).FindOne(ctx, filter).Decode(&form)
	return form, err
}

// UnpublishForm closes the currently published version, if any.
func (dbService *SurveyDBService) UnpublishForm(instanceID string, formKey string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"formKey":     formKey,
		"unpublished": bson.M{"$in": []interface{}{nil, int64(0)}},
	}
	update := bson.M{"$set": bson.M{"unpublished": time.Now().Unix()}}

	_, err := dbService.collectionForms(instanceID).UpdateMany(ctx, filter, update)
	return err
}

// DeleteFormVersions removes every stored version of the form and returns the
// number of deleted documents.
func (dbService *SurveyDBService) DeleteFormVersions(instanceID string, formKey string) (count int64, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionForms(instanceID).DeleteMany(ctx, bson.M{"formKey": formKey})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
