package routes

import (
	"receitamed/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathRequests = "/requests"
	PathPayments = "/payments"
)

func addMedicalRoutes(
	rg *gin.RouterGroup,
	requestHandler *handlers.RequestHandler,
	paymentHandler *handlers.PaymentHandler,
	signatureHandler *handlers.SignatureHandler,
) {
	requests := rg.Group(PathRequests)
	{
		requests.POST("/prescriptions", requestHandler.CreatePrescription)
		requests.POST("/exams", requestHandler.CreateExam)
		requests.POST("/consultations", requestHandler.CreateConsultation)
		requests.GET("", requestHandler.ListRequests)
		requests.GET("/:request_id", requestHandler.GetRequest)

		requests.PATCH("/:request_id/assign", requestHandler.AssignDoctor)
		requests.PATCH("/:request_id/approve", requestHandler.Approve)
		requests.PATCH("/:request_id/reject", requestHandler.Reject)
		requests.PATCH("/:request_id/cancel", requestHandler.Cancel)
		requests.PATCH("/:request_id/deliver", requestHandler.Deliver)

		requests.PATCH("/:request_id/consultation/ready", requestHandler.MarkConsultationReady)
		requests.PATCH("/:request_id/consultation/start", requestHandler.StartConsultation)
		requests.PATCH("/:request_id/consultation/finish", requestHandler.FinishConsultation)

		requests.PATCH("/:request_id/prescription", requestHandler.UpdatePrescriptionContent)
		requests.PATCH("/:request_id/exam", requestHandler.UpdateExamContent)

		requests.POST("/:request_id/sign", signatureHandler.SignDocument)

		// Unauthenticated document verification for pharmacies and labs.
		requests.POST("/:request_id/verify", requestHandler.VerifyDocument)

		requests.POST("/:request_id/payments", paymentHandler.CreatePayment)
		requests.GET("/:request_id/payments", paymentHandler.ListPaymentsByRequest)
		requests.POST("/:request_id/payments/sync", paymentHandler.SyncPayment)
	}

	payments := rg.Group(PathPayments)
	{
		payments.GET("/:payment_id", paymentHandler.GetPayment)
		payments.POST("/:payment_id/refund", paymentHandler.RefundPayment)
	}
}

func addWebhookRoutes(rg *gin.RouterGroup, webhookHandler *handlers.WebhookHandler) {
	rg.POST("/webhooks/payments", webhookHandler.ReceivePaymentNotification)
}
