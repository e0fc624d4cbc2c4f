package domain

import "time"

type User struct {
	ID        string    `bson:"_id" json:"id"`
	Phone     string    `bson:"phone" json:"phone"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
