package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Age   int    `bson:"age" json:"age"`

	// Never returned in JSON
	Password string   `bson:"password" json:"-"`
	Tokens   []string `bson:"tokens" json:"-"`
	Avatar   []byte   `bson:"avatar,omitempty" json:"-"`
}

// HasToken reports whether token is in the user's active token set (exact match).
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}
