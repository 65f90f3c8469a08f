package models

import (
	"fmt"
	"time"
)

type ToDo struct {
	ID        int64     `json:"id" dynamodbav:"ID"`
	UserID    int64     `json:"user_id,omitempty" dynamodbav:"UserID"`
	Contents  string    `json:"contents" dynamodbav:"Contents"`
	IsDone    bool      `json:"is_done" dynamodbav:"IsDone"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"UpdatedAt"`
}

func (t *ToDo) GetPK() string {
	return ToDoPK(t.ID)
}

func (t *ToDo) GetSK() string {
	return "METADATA"
}

func ToDoPK(id int64) string {
	return fmt.Sprintf("TODO#%d", id)
}
