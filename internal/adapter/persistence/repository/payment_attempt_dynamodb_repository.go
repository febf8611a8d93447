package repository

import (
	"context"
	"encoding/json"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultAttemptsTableName = "payment_attempts"
	attemptPaymentIndex      = "payment_id-index"
)

type paymentAttemptItem struct {
	ID             string `dynamodbav:"id"`
	PaymentID      string `dynamodbav:"payment_id"`
	RequestID      string `dynamodbav:"request_id"`
	IdempotencyKey string `dynamodbav:"idempotency_key"`
	RequestBody    string `dynamodbav:"request_body,omitempty"`
	ResponseBody   string `dynamodbav:"response_body,omitempty"`
	HTTPStatus     int    `dynamodbav:"http_status,omitempty"`
	Success        bool   `dynamodbav:"success"`
	ErrorMessage   string `dynamodbav:"error_message,omitempty"`
	CreatedAt      string `dynamodbav:"created_at"`
	UpdatedAt      string `dynamodbav:"updated_at"`
}

// PaymentAttemptDynamoRepository persists the provider-call ledger. Writes
// are append-mostly: one create per attempt plus a single outcome update; no
// version guard needed since each attempt has a single writer.
//
// Table requirements:
//   - PK: id (string)
//   - GSI payment_id-index: payment_id
type PaymentAttemptDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentAttemptRepository = (*PaymentAttemptDynamoRepository)(nil)

func NewPaymentAttemptDynamoRepository(ddb *dynamodb.Client) *PaymentAttemptDynamoRepository {
	return &PaymentAttemptDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENT_ATTEMPTS_TABLE", defaultAttemptsTableName),
	}
}

func (r *PaymentAttemptDynamoRepository) Create(ctx context.Context, a *entities.PaymentAttempt) error {
	av, err := attributevalue.MarshalMap(toAttemptItem(a))
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	return err
}

func (r *PaymentAttemptDynamoRepository) Update(ctx context.Context, a *entities.PaymentAttempt) error {
	av, err := attributevalue.MarshalMap(toAttemptItem(a))
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	return err
}

func (r *PaymentAttemptDynamoRepository) ListByPaymentID(ctx context.Context, paymentID string) ([]*entities.PaymentAttempt, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(attemptPaymentIndex),
		KeyConditionExpression: aws.String("#pid = :pid"),
		ExpressionAttributeNames: map[string]string{
			"#pid": "payment_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: paymentID},
		},
	})
	if err != nil {
		return nil, err
	}
	attempts := make([]*entities.PaymentAttempt, 0, len(out.Items))
	for _, item := range out.Items {
		var it paymentAttemptItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		attempts = append(attempts, fromAttemptItem(it))
	}
	return attempts, nil
}

func toAttemptItem(a *entities.PaymentAttempt) paymentAttemptItem {
	return paymentAttemptItem{
		ID:             a.ID,
		PaymentID:      a.PaymentID,
		RequestID:      a.RequestID,
		IdempotencyKey: a.IdempotencyKey,
		RequestBody:    string(a.RequestBody),
		ResponseBody:   string(a.ResponseBody),
		HTTPStatus:     a.HTTPStatus,
		Success:        a.Success,
		ErrorMessage:   a.ErrorMessage,
		CreatedAt:      timeToString(a.CreatedAt),
		UpdatedAt:      timeToString(a.UpdatedAt),
	}
}

func fromAttemptItem(it paymentAttemptItem) *entities.PaymentAttempt {
	a := &entities.PaymentAttempt{
		ID:             it.ID,
		PaymentID:      it.PaymentID,
		RequestID:      it.RequestID,
		IdempotencyKey: it.IdempotencyKey,
		HTTPStatus:     it.HTTPStatus,
		Success:        it.Success,
		ErrorMessage:   it.ErrorMessage,
		CreatedAt:      stringToTime(it.CreatedAt),
		UpdatedAt:      stringToTime(it.UpdatedAt),
	}
	if it.RequestBody != "" {
		a.RequestBody = json.RawMessage(it.RequestBody)
	}
	if it.ResponseBody != "" {
		a.ResponseBody = json.RawMessage(it.ResponseBody)
	}
	return a
}
