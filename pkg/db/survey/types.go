package survey

import "go.mongodb.org/mongo-driver/bson/primitive"

// FormInfo is one stored version of a form definition. The definition itself
// is kept as the raw JSON document, parsing happens in the interpreter.
type FormInfo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FormKey     string             `bson:"formKey" json:"formKey"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty"`
	Definition  string             `bson:"definition" json:"definition"`
	VersionID   string             `bson:"versionID" json:"versionId"`
	Published   int64              `bson:"published,omitempty" json:"published,omitempty"`
	Unpublished int64              `bson:"unpublished,omitempty" json:"unpublished,omitempty"`
	Metadata    map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Submission is one completed answer set for a form version.
type Submission struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	SubmissionID string                 `bson:"submissionID" json:"submissionId"`
	FormKey      string                 `bson:"formKey" json:"formKey"`
	VersionID    string                 `bson:"versionID,omitempty" json:"versionId,omitempty"`
	RespondentID string                 `bson:"respondentID,omitempty" json:"respondentId,omitempty"`
	Answers      map[string]interface{} `bson:"answers" json:"answers"`
	ArrivedAt    int64                  `bson:"arrivedAt" json:"arrivedAt"`
}

type PaginationInfos struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	PageSize    int64 `json:"pageSize"`
}
