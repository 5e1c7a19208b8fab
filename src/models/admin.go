package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin staff account with direct marking rights.
type Admin struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
}
