package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/apperr"
	"github.com/todolite/todolite/internal/models"
)

type ToDoRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewToDoRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *ToDoRepository {
	return &ToDoRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *ToDoRepository) Create(ctx context.Context, todo *models.ToDo) error {
	id, err := nextID(ctx, r.client, r.tableName, "todos")
	if err != nil {
		return err
	}

	now := time.Now()
	todo.ID = id
	todo.CreatedAt = now
	todo.UpdatedAt = now

	item, err := attributevalue.MarshalMap(todo)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal to-do for DynamoDB")
		return fmt.Errorf("failed to marshal to-do: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: todo.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: todo.GetSK()}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to create to-do in DynamoDB")
		return fmt.Errorf("failed to create to-do: %w", err)
	}

	return nil
}

func (r *ToDoRepository) GetByID(ctx context.Context, id int64) (*models.ToDo, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ToDoPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get to-do: %w", err)
	}

	if result.Item == nil {
		return nil, apperr.ErrNotFound
	}

	var todo models.ToDo
	if err := attributevalue.UnmarshalMap(result.Item, &todo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to-do: %w", err)
	}

	return &todo, nil
}

// ListByUserID returns the user's to-dos in insertion order (ascending id).
func (r *ToDoRepository) ListByUserID(ctx context.Context, userID int64) ([]models.ToDo, error) {
	result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("begins_with(PK, :pk_prefix) AND UserID = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk_prefix": &types.AttributeValueMemberS{Value: "TODO#"},
			":user_id":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", userID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list to-dos: %w", err)
	}

	var todos []models.ToDo
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &todos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to-dos: %w", err)
	}

	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })

	return todos, nil
}

func (r *ToDoRepository) Update(ctx context.Context, todo *models.ToDo) error {
	todo.UpdatedAt = time.Now()

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: todo.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: todo.GetSK()},
		},
		UpdateExpression: aws.String("SET IsDone = :is_done, UpdatedAt = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":is_done":    &types.AttributeValueMemberBOOL{Value: todo.IsDone},
			":updated_at": &types.AttributeValueMemberS{Value: todo.UpdatedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to update to-do in DynamoDB")
		return fmt.Errorf("failed to update to-do: %w", err)
	}

	return nil
}

func (r *ToDoRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ToDoPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete to-do: %w", err)
	}

	return nil
}
