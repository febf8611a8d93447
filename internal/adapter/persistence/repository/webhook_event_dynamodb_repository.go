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
	defaultWebhookEventsTableName = "webhook_events"
	webhookProviderRequestIndex   = "provider_request_id-index"
)

type webhookEventItem struct {
	ID                  string            `dynamodbav:"id"`
	ProviderPaymentID   string            `dynamodbav:"provider_payment_id"`
	ProviderRequestID   string            `dynamodbav:"provider_request_id,omitempty"`
	Type                string            `dynamodbav:"type,omitempty"`
	Action              string            `dynamodbav:"action,omitempty"`
	RawBody             string            `dynamodbav:"raw_body,omitempty"`
	RawQuery            string            `dynamodbav:"raw_query,omitempty"`
	Headers             map[string]string `dynamodbav:"headers,omitempty"`
	ContentType         string            `dynamodbav:"content_type,omitempty"`
	ContentLength       int64             `dynamodbav:"content_length,omitempty"`
	SourceIP            string            `dynamodbav:"source_ip,omitempty"`
	IsDuplicate         bool              `dynamodbav:"is_duplicate"`
	IsProcessed         bool              `dynamodbav:"is_processed"`
	ProcessingError     string            `dynamodbav:"processing_error,omitempty"`
	PaymentStatus       string            `dynamodbav:"payment_status,omitempty"`
	PaymentStatusDetail string            `dynamodbav:"payment_status_detail,omitempty"`
	CreatedAt           string            `dynamodbav:"created_at"`
	UpdatedAt           string            `dynamodbav:"updated_at"`
}

// WebhookEventDynamoRepository persists inbound notification records.
//
// Table requirements:
//   - PK: id (string)
//   - GSI provider_request_id-index: provider_request_id
type WebhookEventDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IWebhookEventRepository = (*WebhookEventDynamoRepository)(nil)

func NewWebhookEventDynamoRepository(ddb *dynamodb.Client) *WebhookEventDynamoRepository {
	return &WebhookEventDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("WEBHOOK_EVENTS_TABLE", defaultWebhookEventsTableName),
	}
}

func (r *WebhookEventDynamoRepository) Create(ctx context.Context, e *entities.WebhookEvent) error {
	av, err := attributevalue.MarshalMap(toWebhookEventItem(e))
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

func (r *WebhookEventDynamoRepository) GetByProviderRequestID(ctx context.Context, providerRequestID string) (*entities.WebhookEvent, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(webhookProviderRequestIndex),
		KeyConditionExpression: aws.String("#prid = :prid"),
		ExpressionAttributeNames: map[string]string{
			"#prid": "provider_request_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prid": &types.AttributeValueMemberS{Value: providerRequestID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var it webhookEventItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, err
	}
	return fromWebhookEventItem(it), nil
}

func (r *WebhookEventDynamoRepository) Update(ctx context.Context, e *entities.WebhookEvent) error {
	av, err := attributevalue.MarshalMap(toWebhookEventItem(e))
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

func toWebhookEventItem(e *entities.WebhookEvent) webhookEventItem {
	return webhookEventItem{
		ID:                  e.ID,
		ProviderPaymentID:   e.ProviderPaymentID,
		ProviderRequestID:   e.ProviderRequestID,
		Type:                e.Type,
		Action:              e.Action,
		RawBody:             string(e.RawBody),
		RawQuery:            e.RawQuery,
		Headers:             e.Headers,
		ContentType:         e.ContentType,
		ContentLength:       e.ContentLength,
		SourceIP:            e.SourceIP,
		IsDuplicate:         e.IsDuplicate,
		IsProcessed:         e.IsProcessed,
		ProcessingError:     e.ProcessingError,
		PaymentStatus:       e.PaymentStatus,
		PaymentStatusDetail: e.PaymentStatusDetail,
		CreatedAt:           timeToString(e.CreatedAt),
		UpdatedAt:           timeToString(e.UpdatedAt),
	}
}

func fromWebhookEventItem(it webhookEventItem) *entities.WebhookEvent {
	e := &entities.WebhookEvent{
		ID:                  it.ID,
		ProviderPaymentID:   it.ProviderPaymentID,
		ProviderRequestID:   it.ProviderRequestID,
		Type:                it.Type,
		Action:              it.Action,
		RawQuery:            it.RawQuery,
		Headers:             it.Headers,
		ContentType:         it.ContentType,
		ContentLength:       it.ContentLength,
		SourceIP:            it.SourceIP,
		IsDuplicate:         it.IsDuplicate,
		IsProcessed:         it.IsProcessed,
		ProcessingError:     it.ProcessingError,
		PaymentStatus:       it.PaymentStatus,
		PaymentStatusDetail: it.PaymentStatusDetail,
		CreatedAt:           stringToTime(it.CreatedAt),
		UpdatedAt:           stringToTime(it.UpdatedAt),
	}
	if it.RawBody != "" {
		e.RawBody = json.RawMessage(it.RawBody)
	}
	return e
}
