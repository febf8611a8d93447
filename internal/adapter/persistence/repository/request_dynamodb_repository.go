package repository

import (
	"context"
	"encoding/json"
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
	defaultRequestsTableName = "requests"
	requestPatientIndex      = "patient_id-index"
)

type requestItem struct {
	ID        string `dynamodbav:"id"`
	Kind      string `dynamodbav:"kind"`
	PatientID string `dynamodbav:"patient_id"`
	DoctorID  string `dynamodbav:"doctor_id,omitempty"`
	Status    string `dynamodbav:"status"`

	// Kind-specific payloads are stored as JSON blobs so the schema stays
	// stable across kinds.
	Prescription string `dynamodbav:"prescription,omitempty"`
	Exam         string `dynamodbav:"exam,omitempty"`
	Consultation string `dynamodbav:"consultation,omitempty"`

	Price           string `dynamodbav:"price,omitempty"`
	DoctorNotes     string `dynamodbav:"doctor_notes,omitempty"`
	RejectionReason string `dynamodbav:"rejection_reason,omitempty"`

	AccessCode        string `dynamodbav:"access_code"`
	SignedDocumentURL string `dynamodbav:"signed_document_url,omitempty"`
	SignatureID       string `dynamodbav:"signature_id,omitempty"`
	SignedAt          string `dynamodbav:"signed_at,omitempty"`

	AISummary     string `dynamodbav:"ai_summary,omitempty"`
	AIExtraction  string `dynamodbav:"ai_extraction,omitempty"`
	AIRisk        string `dynamodbav:"ai_risk,omitempty"`
	AIUserMessage string `dynamodbav:"ai_user_message,omitempty"`

	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// RequestDynamoRepository persists Request aggregates in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI patient_id-index: patient_id
//
// Every write is conditional: creates require the id to be absent, updates
// require the stored version to match the one the caller read. A lost race
// surfaces as interfaces.ErrVersionConflict.
type RequestDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IRequestRepository = (*RequestDynamoRepository)(nil)

func NewRequestDynamoRepository(ddb *dynamodb.Client) *RequestDynamoRepository {
	return &RequestDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("REQUESTS_TABLE", defaultRequestsTableName),
	}
}

func (r *RequestDynamoRepository) Create(ctx context.Context, req *entities.Request) error {
	req.Version = 1
	av, err := attributevalue.MarshalMap(toRequestItem(req))
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

func (r *RequestDynamoRepository) GetByID(ctx context.Context, id string) (*entities.Request, error) {
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
	var it requestItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return fromRequestItem(it), nil
}

func (r *RequestDynamoRepository) ListByPatientID(ctx context.Context, patientID string) ([]*entities.Request, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(requestPatientIndex),
		KeyConditionExpression: aws.String("#pid = :pid"),
		ExpressionAttributeNames: map[string]string{
			"#pid": "patient_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: patientID},
		},
	})
	if err != nil {
		return nil, err
	}
	requests := make([]*entities.Request, 0, len(out.Items))
	for _, item := range out.Items {
		var it requestItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		requests = append(requests, fromRequestItem(it))
	}
	return requests, nil
}

func (r *RequestDynamoRepository) Update(ctx context.Context, req *entities.Request) error {
	expectedVersion := req.Version
	req.Version++
	av, err := attributevalue.MarshalMap(toRequestItem(req))
	if err != nil {
		req.Version = expectedVersion
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
		req.Version = expectedVersion
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return interfaces.ErrVersionConflict
		}
		return err
	}
	return nil
}

func toRequestItem(req *entities.Request) requestItem {
	it := requestItem{
		ID:                req.ID,
		Kind:              string(req.Kind),
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		Status:            string(req.Status),
		DoctorNotes:       req.DoctorNotes,
		RejectionReason:   req.RejectionReason,
		AccessCode:        req.AccessCode,
		SignedDocumentURL: req.SignedDocumentURL,
		SignatureID:       req.SignatureID,
		AISummary:         req.AISummary,
		AIExtraction:      string(req.AIExtraction),
		AIRisk:            req.AIRisk,
		AIUserMessage:     req.AIUserMessage,
		Version:           req.Version,
		CreatedAt:         timeToString(req.CreatedAt),
		UpdatedAt:         timeToString(req.UpdatedAt),
	}
	if req.Price > 0 {
		it.Price = floatToString(req.Price)
	}
	if req.SignedAt != nil {
		it.SignedAt = timeToString(*req.SignedAt)
	}
	if req.Prescription != nil {
		if b, err := json.Marshal(req.Prescription); err == nil {
			it.Prescription = string(b)
		}
	}
	if req.Exam != nil {
		if b, err := json.Marshal(req.Exam); err == nil {
			it.Exam = string(b)
		}
	}
	if req.Consultation != nil {
		if b, err := json.Marshal(req.Consultation); err == nil {
			it.Consultation = string(b)
		}
	}
	return it
}

func fromRequestItem(it requestItem) *entities.Request {
	req := &entities.Request{
		ID:                it.ID,
		Kind:              entities.RequestKind(it.Kind),
		PatientID:         it.PatientID,
		DoctorID:          it.DoctorID,
		Status:            entities.RequestStatus(it.Status),
		Price:             stringToFloat(it.Price),
		DoctorNotes:       it.DoctorNotes,
		RejectionReason:   it.RejectionReason,
		AccessCode:        it.AccessCode,
		SignedDocumentURL: it.SignedDocumentURL,
		SignatureID:       it.SignatureID,
		AISummary:         it.AISummary,
		AIRisk:            it.AIRisk,
		AIUserMessage:     it.AIUserMessage,
		Version:           it.Version,
		CreatedAt:         stringToTime(it.CreatedAt),
		UpdatedAt:         stringToTime(it.UpdatedAt),
	}
	if it.SignedAt != "" {
		t := stringToTime(it.SignedAt)
		req.SignedAt = &t
	}
	if it.AIExtraction != "" {
		req.AIExtraction = json.RawMessage(it.AIExtraction)
	}
	if it.Prescription != "" {
		var p entities.PrescriptionData
		if err := json.Unmarshal([]byte(it.Prescription), &p); err == nil {
			req.Prescription = &p
		}
	}
	if it.Exam != "" {
		var e entities.ExamData
		if err := json.Unmarshal([]byte(it.Exam), &e); err == nil {
			req.Exam = &e
		}
	}
	if it.Consultation != "" {
		var c entities.ConsultationData
		if err := json.Unmarshal([]byte(it.Consultation), &c); err == nil {
			req.Consultation = &c
		}
	}
	return req
}
