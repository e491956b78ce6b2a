package profiles

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore persists profiles to DynamoDB. Put replaces the whole item;
// partial edits are merged by the service before writing.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a profile store backed by the provided client.
func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("profiles: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("profiles: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName}
}

func (s *DynamoStore) Put(ctx context.Context, p *UserProfile) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("profiles: failed to marshal profile: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("profiles: failed to persist profile: %w", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, uid string) (*UserProfile, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"uid": &types.AttributeValueMemberS{Value: uid},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("profiles: failed to fetch profile: %w", err)
	}
	if out.Item == nil {
		return nil, ErrProfileNotFound
	}

	var p UserProfile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("profiles: failed to decode profile: %w", err)
	}
	return &p, nil
}
