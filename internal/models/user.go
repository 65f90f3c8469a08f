package models

import (
	"fmt"
	"time"
)

type User struct {
	ID        int64     `json:"id" dynamodbav:"ID"`
	Username  string    `json:"username" dynamodbav:"Username"`
	Password  string    `json:"-" dynamodbav:"Password"`
	Email     string    `json:"email,omitempty" dynamodbav:"Email,omitempty"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"UpdatedAt"`
}

func (u *User) GetPK() string {
	return UserPK(u.Username)
}

func (u *User) GetSK() string {
	return "METADATA"
}

func UserPK(username string) string {
	return fmt.Sprintf("USER#%s", username)
}
