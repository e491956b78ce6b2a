package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/careconnect/guardian-api/pkg/logging"
)

// userIndex is the GSI keyed on userId.
const userIndex = "userId-index"

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore persists visits to DynamoDB.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("visits: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("visits: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{client: client, tableName: tableName, logger: logger}
}

func (s *DynamoStore) Create(ctx context.Context, v *Visit) error {
	if v == nil {
		return errors.New("visits: visit cannot be nil")
	}
	v.ID = uuid.New().String()
	v.CreatedAt = time.Now().UTC()

	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("visits: failed to marshal visit: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("visits: failed to persist visit: %w", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (*Visit, error) {
	if id == "" {
		return nil, errors.New("visits: id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       visitKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("visits: failed to fetch visit: %w", err)
	}
	if out.Item == nil {
		return nil, ErrVisitNotFound
	}

	var v Visit
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, fmt.Errorf("visits: failed to decode visit: %w", err)
	}
	return &v, nil
}

func (s *DynamoStore) ListByUser(ctx context.Context, userID string) ([]Visit, error) {
	return s.queryWith(ctx, userID, nil, nil, nil)
}

func (s *DynamoStore) ListByUserAndStatus(ctx context.Context, userID string, status Status) ([]Visit, error) {
	// "status" is a DynamoDB reserved word.
	filter := aws.String("#status = :status")
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: string(status)},
	}
	return s.queryWith(ctx, userID, filter, names, values)
}

func (s *DynamoStore) ListByUserAndDateRange(ctx context.Context, userID, from, to string) ([]Visit, error) {
	filter := aws.String("scheduledDate >= :from AND scheduledDate < :to")
	values := map[string]types.AttributeValue{
		":from": &types.AttributeValueMemberS{Value: from},
		":to":   &types.AttributeValueMemberS{Value: to},
	}
	return s.queryWith(ctx, userID, filter, nil, values)
}

func (s *DynamoStore) queryWith(ctx context.Context, userID string, filter *string, names map[string]string, values map[string]types.AttributeValue) ([]Visit, error) {
	if userID == "" {
		return nil, errors.New("visits: userID required")
	}
	if values == nil {
		values = map[string]types.AttributeValue{}
	}
	values[":userId"] = &types.AttributeValueMemberS{Value: userID}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(userIndex),
		KeyConditionExpression:    aws.String("userId = :userId"),
		FilterExpression:          filter,
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	out := []Visit{}
	for {
		page, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("visits: failed to query visits: %w", err)
		}
		var batch []Visit
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("visits: failed to decode visits: %w", err)
		}
		out = append(out, batch...)
		if page.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	return out, nil
}

// ListScheduledUserIDs scans for the distinct owners of visits still in the
// scheduled status. Used by the background sweep loop.
func (s *DynamoStore) ListScheduledUserIDs(ctx context.Context) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.tableName),
		IndexName:                aws.String(userIndex),
		FilterExpression:         aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(StatusScheduled)},
		},
		ProjectionExpression: aws.String("userId"),
	}

	seen := map[string]struct{}{}
	var out []string
	for {
		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("visits: failed to scan scheduled visits: %w", err)
		}
		for _, item := range page.Items {
			var row struct {
				UserID string `dynamodbav:"userId"`
			}
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				continue
			}
			if row.UserID == "" {
				continue
			}
			if _, ok := seen[row.UserID]; ok {
				continue
			}
			seen[row.UserID] = struct{}{}
			out = append(out, row.UserID)
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	return out, nil
}

func (s *DynamoStore) Update(ctx context.Context, id string, upd Update) error {
	if id == "" {
		return errors.New("visits: id required")
	}

	expr := ""
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	set := func(attr string, value types.AttributeValue) {
		placeholder := "#" + attr
		names[placeholder] = attr
		if expr != "" {
			expr += ", "
		}
		expr += fmt.Sprintf("%s = :%s", placeholder, attr)
		values[":"+attr] = value
	}

	if upd.CaregiverName != nil {
		set("caregiverName", &types.AttributeValueMemberS{Value: *upd.CaregiverName})
	}
	if upd.ScheduledDate != nil {
		set("scheduledDate", &types.AttributeValueMemberS{Value: *upd.ScheduledDate})
	}
	if upd.ScheduledTime != nil {
		set("scheduledTime", &types.AttributeValueMemberS{Value: *upd.ScheduledTime})
	}
	if upd.ActualArrival != nil {
		set("actualArrival", &types.AttributeValueMemberS{Value: *upd.ActualArrival})
	}
	if upd.Status != nil {
		set("status", &types.AttributeValueMemberS{Value: string(*upd.Status)})
	}
	if upd.Notes != nil {
		set("notes", &types.AttributeValueMemberS{Value: *upd.Notes})
	}
	if upd.Acknowledged != nil {
		set("acknowledged", &types.AttributeValueMemberBOOL{Value: *upd.Acknowledged})
	}
	if expr == "" {
		return nil
	}

	return s.updateVisit(ctx, id, "SET "+expr, names, values)
}

func (s *DynamoStore) MarkMissed(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("visits: id required")
	}
	return s.updateVisit(
		ctx,
		id,
		"SET #status = :status, acknowledged = :acknowledged",
		map[string]string{"#status": "status"},
		map[string]types.AttributeValue{
			":status":       &types.AttributeValueMemberS{Value: string(StatusMissed)},
			":acknowledged": &types.AttributeValueMemberBOOL{Value: false},
		},
	)
}

func (s *DynamoStore) SetAcknowledged(ctx context.Context, id string, acknowledged bool) error {
	if id == "" {
		return errors.New("visits: id required")
	}
	return s.updateVisit(
		ctx,
		id,
		"SET acknowledged = :acknowledged",
		nil,
		map[string]types.AttributeValue{
			":acknowledged": &types.AttributeValueMemberBOOL{Value: acknowledged},
		},
	)
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("visits: id required")
	}
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       visitKey(id),
	})
	if err != nil {
		return fmt.Errorf("visits: failed to delete visit %s: %w", id, err)
	}
	return nil
}

func (s *DynamoStore) updateVisit(ctx context.Context, id, expression string, names map[string]string, values map[string]types.AttributeValue) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       visitKey(id),
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(id)"),
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrVisitNotFound
		}
		return fmt.Errorf("visits: failed to update visit %s: %w", id, err)
	}
	return nil
}

func visitKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}
