package models

// DefaultRole is reported by the self-profile fallback when the caller has no group claim.
const DefaultRole = "user"

// User is the metadata record kept in the user table, keyed by the
// identity provider's subject identifier.
type User struct {
	ID    string `json:"id" dynamodbav:"id" bson:"_id"`
	Name  string `json:"name" dynamodbav:"name" bson:"name"`
	Email string `json:"email" dynamodbav:"email" bson:"email"`
	Role  string `json:"role" dynamodbav:"role" bson:"role"`
}
