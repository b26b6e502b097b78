package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Profile(t *testing.T) {
	tok := "secret"
	u := &User{
		ID:           "u-1",
		Email:        "a@b.c",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Ann",
		LastName:     "Lee",
		Active:       true,
		ResetToken:   &tok,
	}

	assert.Equal(t, PublicProfile{ID: "u-1", FirstName: "Ann", LastName: "Lee", Email: "a@b.c"}, u.Profile())
}
