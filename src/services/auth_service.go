package services

import (
	"context"
	"fmt"

	DB "Backend-Attendly-101/src/database"
	"Backend-Attendly-101/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// AuthenticateAdmin checks credentials against the admins collection.
func AuthenticateAdmin(email, password string) (*models.Admin, error) {
	var admin models.Admin
	err := DB.AdminCollection.FindOne(context.TODO(), bson.M{"email": email}).Decode(&admin)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	admin.Password = ""
	return &admin, nil
}

// HashPassword hashes an admin password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
