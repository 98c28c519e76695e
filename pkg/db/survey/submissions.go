package survey

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var indexesForSubmissionsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "formKey", Value: 1},
			{Key: "arrivedAt", Value: -1},
		},
		Options: options.Index().SetName("formKey_arrivedAt_1"),
	},
	{
		Keys: bson.D{
			{Key: "submissionID", Value: 1},
		},
		Options: options.Index().SetName("submissionID_1").SetUnique(true),
	},
	{
		Keys: bson.D{
			{Key: "respondentID", Value: 1},
		},
		Options: options.Index().SetName("respondentID_1"),
	},
}

// SaveSubmission stores one validated answer set. A missing submission ID or
// arrival time is filled in here.
func (dbService *SurveyDBService) SaveSubmission(instanceID string, submission Submission) (Submission, error) {
	if submission.FormKey == "" {
		return submission, errors.New("form key must not be empty")
	}
	if submission.SubmissionID == "" {
		submission.SubmissionID = uuid.NewString()
	}
	if submission.ArrivedAt == 0 {
		submission.ArrivedAt = time.Now().Unix()
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionSubmissions(instanceID).InsertOne(ctx, submission)
	return submission, err
}

func (dbService *SurveyDBService) GetSubmissionsCount(instanceID string, filter bson.M) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	return dbService.collectionSubmissions(instanceID).CountDocuments(ctx, filter)
}

// GetSubmissions returns one page of submissions for the filter, newest first
// unless the sort says otherwise.
func (dbService *SurveyDBService) GetSubmissions(instanceID string, filter bson.M, sort bson.M, page int64, limit int64) (submissions []Submission, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	totalCount, err := dbService.GetSubmissionsCount(instanceID, filter)
	if err != nil {
		return submissions, nil, err
	}

	paginationInfo = prepPaginationInfos(
		totalCount,
		page,
		limit,
	)

	if len(sort) == 0 {
		sort = bson.M{"arrivedAt": -1}
	}

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(paginationInfo.PageSize)
	cursor, err := dbService.collectionSubmissions(instanceID).Find(ctx, filter, opts)
	if err != nil {
		return submissions, nil, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &submissions)
	if err != nil {
		return submissions, nil, err
	}

	return submissions, paginationInfo, nil
}

// FindSubmissions streams every submission matching the filter to the
// callback, e.g. for exports.
func (dbService *SurveyDBService) FindSubmissions(instanceID string, filter bson.M, callback func(submission Submission) error) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	opts := options.Find().SetSort(bson.M{"arrivedAt": 1})
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}

	cursor, err := dbService.collectionSubmissions(instanceID).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var submission Submission
		if err := cursor.Decode(&submission); err != nil {
			return err
		}
		if err := callback(submission); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// DeleteSubmissions removes every submission of a form and returns the count.
func (dbService *SurveyDBService) DeleteSubmissions(instanceID string, formKey string) (count int64, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionSubmissions(instanceID).DeleteMany(ctx, bson.M{"formKey": formKey})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
