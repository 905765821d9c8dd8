package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseType holds the structure for the casetypes collection in mongo
type CaseType struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseTypeDetails    `json:"caseType" bson:"caseType"`
	Version int32              `json:"__v" bson:"__v"`
}

// CaseTypeDetails holds the structure for the inner case type details
type CaseTypeDetails struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
