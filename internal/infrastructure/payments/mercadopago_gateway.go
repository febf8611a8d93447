package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"
)

var (
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrUnsupportedPaymentMethod        = errors.New("payment method not supported by gateway")
)

// MercadoPagoGateway integrates with Mercado Pago through the official SDK:
// the payment client for pix/card creation and authoritative status fetches,
// the preference client for checkout-pro flows. Mock mode (env-flagged)
// fabricates approved responses so the service runs locally without provider
// credentials.
type MercadoPagoGateway struct {
	payments    payment.Client
	preferences preference.Client
	mockMode    bool
	log         *zap.Logger
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, log *zap.Logger) (*MercadoPagoGateway, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if isPaymentGatewayMockEnabled() {
		log.Info("payment gateway mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, log: log}, nil
	}

	if accessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, err
	}
	log.Info("mercado pago client initialized")

	return &MercadoPagoGateway{
		payments:    payment.NewClient(cfg),
		preferences: preference.NewClient(cfg),
		log:         log,
	}, nil
}

func (g *MercadoPagoGateway) CreatePayment(ctx context.Context, input interfaces.CreatePaymentInput) (interfaces.CreatePaymentOutput, error) {
	if g != nil && g.mockMode {
		return g.mockCreate(input)
	}
	if g == nil || g.payments == nil {
		return interfaces.CreatePaymentOutput{}, ErrMercadoPagoGatewayNotConfigured
	}

	if input.Method == entities.PaymentMethodCheckoutPro {
		return g.createPreference(ctx, input)
	}

	req := payment.Request{
		TransactionAmount: input.Amount,
		Description:       input.Description,
		ExternalReference: input.ExternalReference,
	}
	if input.PayerEmail != "" {
		req.Payer = &payment.PayerRequest{Email: input.PayerEmail}
	}
	switch input.Method {
	case entities.PaymentMethodPix:
		req.PaymentMethodID = "pix"
	case entities.PaymentMethodCreditCard, entities.PaymentMethodDebitCard:
		req.Token = input.CardToken
		req.Installments = 1
	default:
		return interfaces.CreatePaymentOutput{}, ErrUnsupportedPaymentMethod
	}

	resp, err := g.payments.Create(ctx, req)
	if err != nil {
		g.log.Warn("sdk payment create failed", zap.Error(err))
		return interfaces.CreatePaymentOutput{}, err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.CreatePaymentOutput{}, err
	}
	g.log.Info("payment created at provider",
		zap.Int("provider_payment_id", resp.ID), zap.String("provider_status", resp.Status))

	out := interfaces.CreatePaymentOutput{
		ExternalID:  strconv.Itoa(resp.ID),
		Status:      resp.Status,
		RawResponse: raw,
		HTTPStatus:  http.StatusCreated,
	}
	out.PixCopyPaste = resp.PointOfInteraction.TransactionData.QRCode
	out.PixQRCode = resp.PointOfInteraction.TransactionData.QRCodeBase64
	return out, nil
}

// createPreference opens a checkout-pro preference. The provider payment id
// only becomes known through the first webhook, correlated by the external
// reference.
func (g *MercadoPagoGateway) createPreference(ctx context.Context, input interfaces.CreatePaymentInput) (interfaces.CreatePaymentOutput, error) {
	req := preference.Request{
		ExternalReference: input.ExternalReference,
		Items: []preference.ItemRequest{
			{
				Title:     input.Description,
				Quantity:  1,
				UnitPrice: input.Amount,
			},
		},
	}
	resp, err := g.preferences.Create(ctx, req)
	if err != nil {
		g.log.Warn("sdk preference create failed", zap.Error(err))
		return interfaces.CreatePaymentOutput{}, err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.CreatePaymentOutput{}, err
	}
	g.log.Info("checkout preference created", zap.String("preference_id", resp.ID))
	return interfaces.CreatePaymentOutput{
		Status:      "created",
		CheckoutURL: resp.InitPoint,
		RawResponse: raw,
		HTTPStatus:  http.StatusCreated,
	}, nil
}

func (g *MercadoPagoGateway) GetPaymentStatus(ctx context.Context, externalID string) (interfaces.PaymentStatusOutput, error) {
	if g != nil && g.mockMode {
		return interfaces.PaymentStatusOutput{
			ExternalID:   externalID,
			Status:       "approved",
			StatusDetail: "accredited",
		}, nil
	}
	if g == nil || g.payments == nil {
		return interfaces.PaymentStatusOutput{}, ErrMercadoPagoGatewayNotConfigured
	}
	id, err := strconv.Atoi(externalID)
	if err != nil {
		return interfaces.PaymentStatusOutput{}, fmt.Errorf("invalid provider payment id %q: %w", externalID, err)
	}
	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		g.log.Warn("sdk payment get failed", zap.String("provider_payment_id", externalID), zap.Error(err))
		return interfaces.PaymentStatusOutput{}, err
	}
	return interfaces.PaymentStatusOutput{
		ExternalID:        strconv.Itoa(resp.ID),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
	}, nil
}

func (g *MercadoPagoGateway) mockCreate(input interfaces.CreatePaymentInput) (interfaces.CreatePaymentOutput, error) {
	id := strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	mockResp := map[string]any{
		"id":                 id,
		"status":             "approved",
		"status_detail":      "accredited",
		"date_created":       now,
		"date_approved":      now,
		"external_reference": input.ExternalReference,
		"transaction_amount": input.Amount,
	}
	raw, err := json.Marshal(mockResp)
	if err != nil {
		return interfaces.CreatePaymentOutput{}, err
	}
	g.log.Info("mock payment created", zap.String("provider_payment_id", id))
	out := interfaces.CreatePaymentOutput{
		ExternalID:  id,
		Status:      "approved",
		RawResponse: raw,
		HTTPStatus:  http.StatusCreated,
	}
	if input.Method == entities.PaymentMethodPix {
		out.PixCopyPaste = "00020126mockpixcopypaste" + id
		out.PixQRCode = "bW9ja19xcl9jb2RlX2Jhc2U2NA=="
	}
	return out, nil
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}
