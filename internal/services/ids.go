package services

import (
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// resourceID parses a path id. A malformed id can never match a document, so it is NotFound.
func resourceID(op, id, notFoundMsg string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, utils.E(utils.CodeNotFound, op, notFoundMsg, err)
	}
	return oid, nil
}

// identityID parses the caller id carried by a verified token.
func identityID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, utils.E(utils.CodeUnauthorized, op, "Token is not valid", err)
	}
	return oid, nil
}
