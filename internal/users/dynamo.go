package users

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
)

const (
	// UserTableID is the name of the hash key column.
	UserTableID = "id"
	// UserTableRole is the name of the 'role' column.
	UserTableRole = "role"
)

// UserTableKey is the definition of the hash key for the User table.
func UserTableKey(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		UserTableID: {
			S: aws.String(id),
		},
	}
}

// DynamoUserRepository stores user records in a DynamoDB table.
type DynamoUserRepository struct {
	Client    dynamodbiface.DynamoDBAPI
	TableName string
}

// NewDynamoUserRepository creates a DynamoUserRepository using the given session.
func NewDynamoUserRepository(sess *session.Session, tableName string) *DynamoUserRepository {
	return &DynamoUserRepository{
		Client:    dynamodb.New(sess),
		TableName: tableName,
	}
}

// Put upserts the record.
func (r *DynamoUserRepository) Put(ctx context.Context, u *models.User) error {
	item, err := dynamodbattribute.MarshalMap(u)
	if err != nil {
		return err
	}
	_, err = r.Client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.TableName),
		Item:      item,
	})
	return err
}

func (r *DynamoUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	out, err := r.Client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.TableName),
		Key:       UserTableKey(id),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var u models.User
	if err := dynamodbattribute.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateRole sets only the role attribute.
func (r *DynamoUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	_, err := r.Client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.TableName),
		Key:              UserTableKey(id),
		UpdateExpression: aws.String("SET #r = :r"),
		ExpressionAttributeNames: map[string]*string{
			"#r": aws.String(UserTableRole),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":r": {S: aws.String(role)},
		},
	})
	return err
}

// List scans the whole table, following LastEvaluatedKey across pages.
func (r *DynamoUserRepository) List(ctx context.Context) ([]*models.User, error) {
	out := []*models.User{}
	var decodeErr error
	err := r.Client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.TableName),
	}, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		var batch []*models.User
		if decodeErr = dynamodbattribute.UnmarshalListOfMaps(page.Items, &batch); decodeErr != nil {
			return false
		}
		out = append(out, batch...)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}
