package repository

import (
	"context"
	"errors"
	"strconv"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName = "payments"
	paymentRequestIndex      = "request_id-index"
	paymentExternalIndex     = "external_id-index"
)

type paymentItem struct {
	ID           string `dynamodbav:"id"`
	RequestID    string `dynamodbav:"request_id"`
	PatientID    string `dynamodbav:"patient_id"`
	Amount       string `dynamodbav:"amount"`
	Method       string `dynamodbav:"method"`
	Status       string `dynamodbav:"status"`
	ExternalID   string `dynamodbav:"external_id,omitempty"`
	PixQRCode    string `dynamodbav:"pix_qr_code,omitempty"`
	PixCopyPaste string `dynamodbav:"pix_copy_paste,omitempty"`
	CheckoutURL  string `dynamodbav:"checkout_url,omitempty"`
	Version      int64  `dynamodbav:"version"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

// PaymentDynamoRepository persists Payment aggregates in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI request_id-index: request_id
//   - GSI external_id-index: external_id
type PaymentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p *entities.Payment) error {
	p.Version = 1
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
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

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) GetByExternalID(ctx context.Context, externalID string) (*entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentExternalIndex),
		KeyConditionExpression: aws.String("#eid = :eid"),
		ExpressionAttributeNames: map[string]string{
			"#eid": "external_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":eid": &types.AttributeValueMemberS{Value: externalID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) GetPendingByRequestID(ctx context.Context, requestID string) (*entities.Payment, error) {
	payments, err := r.ListByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.Status == entities.PaymentStatusPending {
			return p, nil
		}
	}
	return nil, nil
}

func (r *PaymentDynamoRepository) ListByRequestID(ctx context.Context, requestID string) ([]*entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentRequestIndex),
		KeyConditionExpression: aws.String("#rid = :rid"),
		ExpressionAttributeNames: map[string]string{
			"#rid": "request_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: requestID},
		},
	})
	if err != nil {
		return nil, err
	}
	payments := make([]*entities.Payment, 0, len(out.Items))
	for _, item := range out.Items {
		var it paymentItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		payments = append(payments, fromPaymentItem(it))
	}
	return payments, nil
}

func (r *PaymentDynamoRepository) Update(ctx context.Context, p *entities.Payment) error {
	expectedVersion := p.Version
	p.Version++
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		p.Version = expectedVersion
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{"#id": "id", "#version": "version"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		},
	})
	if err != nil {
		p.Version = expectedVersion
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return interfaces.ErrVersionConflict
		}
		return err
	}
	return nil
}

func toPaymentItem(p *entities.Payment) paymentItem {
	return paymentItem{
		ID:           p.ID,
		RequestID:    p.RequestID,
		PatientID:    p.PatientID,
		Amount:       floatToString(p.Amount),
		Method:       string(p.Method),
		Status:       string(p.Status),
		ExternalID:   p.ExternalID,
		PixQRCode:    p.PixQRCode,
		PixCopyPaste: p.PixCopyPaste,
		CheckoutURL:  p.CheckoutURL,
		Version:      p.Version,
		CreatedAt:    timeToString(p.CreatedAt),
		UpdatedAt:    timeToString(p.UpdatedAt),
	}
}

func fromPaymentItem(it paymentItem) *entities.Payment {
	return &entities.Payment{
		ID:           it.ID,
		RequestID:    it.RequestID,
		PatientID:    it.PatientID,
		Amount:       stringToFloat(it.Amount),
		Method:       entities.PaymentMethod(it.Method),
		Status:       entities.PaymentStatus(it.Status),
		ExternalID:   it.ExternalID,
		PixQRCode:    it.PixQRCode,
		PixCopyPaste: it.PixCopyPaste,
		CheckoutURL:  it.CheckoutURL,
		Version:      it.Version,
		CreatedAt:    stringToTime(it.CreatedAt),
		UpdatedAt:    stringToTime(it.UpdatedAt),
	}
}
