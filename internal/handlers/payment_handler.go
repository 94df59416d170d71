package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"dentalclinic-backend/internal/config"
	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// GetPayments lists the ledger, newest first.
func GetPayments(c *gin.Context) {
	var payments []models.Payment
	if err := config.DB.Order("created_at desc").Find(&payments).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to fetch payments", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Payments fetched successfully", payments)
}

func GetPayment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var payment models.Payment
	if err := config.DB.First(&payment, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Payment not found", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Payment fetched successfully", payment)
}

// UpdatePayment enforces the ledger freeze: payments are append-only except
// for the note. Any other key in the body rejects the whole request.
func UpdatePayment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Failed to read request body", nil)
		return
	}

	note, invalidFields, err := models.ParseNoteOnlyUpdate(body)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid JSON body", nil)
		return
	}
	if len(invalidFields) > 0 {
		utils.APIResponse(c, http.StatusBadRequest, false, `Only the "note" field can be updated`, gin.H{
			"invalidFields": invalidFields,
		})
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Payment not found", nil)
		return
	}

	if err := config.DB.Model(&payment).Update("note", note).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to update payment", nil)
		return
	}

	payment.Note = note
	utils.APIResponse(c, http.StatusOK, true, "Payment updated successfully", payment)
}

// CheckoutPayment creates a Midtrans Snap transaction so the patient can
// settle a payment online. Nothing on the payment row changes here; the
// webhook records the settlement in the note once Midtrans confirms.
func CheckoutPayment(c *gin.Context) {
	id := utils.StringToUint64(c.Param("id"))

	var payment models.Payment
	if err := config.DB.Preload("Appointment.Patient").First(&payment, id).Error; err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Payment not found", nil)
		return
	}

	orderNo := fmt.Sprintf("PAY-%d-%d", payment.ID, time.Now().Unix())

	var s snap.Client
	s.New(os.Getenv("MIDTRANS_SERVER_KEY"), midtrans.Sandbox)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderNo,
			GrossAmt: int64(payment.Amount),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
	}
	if payment.Appointment != nil && payment.Appointment.Patient != nil {
		req.CustomerDetail = &midtrans.CustomerDetails{
			FName: payment.Appointment.Patient.Name,
			Phone: payment.Appointment.Patient.PhoneNumber,
		}
	}

	snapResp, errSnap := s.CreateTransaction(req)
	if errSnap != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Midtrans error", errSnap.GetMessage())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Checkout created", gin.H{
		"payment_id":   payment.ID,
		"order_no":     orderNo,
		"amount":       payment.Amount,
		"snap_token":   snapResp.Token,
		"redirect_url": snapResp.RedirectURL,
	})
}

// MidtransNotification is the subset of the webhook body we care about.
type MidtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
}

// HandleMidtransNotification is the Midtrans webhook. On settlement it
// appends a settlement note to the payment; the note is the only mutable
// field on a payment, so the gateway outcome is recorded without touching
// the frozen amount or paid_at.
func HandleMidtransNotification(c *gin.Context) {
	var notification MidtransNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid JSON", nil)
		return
	}

	log.Printf("[Webhook] Midtrans notification - OrderID: %s, TransactionStatus: %s, FraudStatus: %s",
		notification.OrderID, notification.TransactionStatus, notification.FraudStatus)

	settled := notification.TransactionStatus == "settlement" ||
		(notification.TransactionStatus == "capture" && notification.FraudStatus == "accept")
	if !settled {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	paymentID := paymentIDFromOrderNo(notification.OrderID)
	if paymentID == 0 {
		log.Printf("[Webhook] Unrecognized order id: %s", notification.OrderID)
		utils.APIResponse(c, http.StatusNotFound, false, "Order not found", nil)
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, paymentID).Error; err != nil {
		log.Printf("[Webhook] Payment not found for order %s", notification.OrderID)
		utils.APIResponse(c, http.StatusNotFound, false, "Payment not found", nil)
		return
	}

	note := fmt.Sprintf("Settled online via Midtrans (%s)", notification.OrderID)
	if payment.Note != nil && *payment.Note != "" {
		note = *payment.Note + "; " + note
	}
	if err := config.DB.Model(&payment).Update("note", note).Error; err != nil {
		log.Printf("[Webhook] Failed to update payment %d: %v", payment.ID, err)
		utils.APIResponse(c, http.StatusInternalServerError, false, "Failed to record settlement", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// paymentIDFromOrderNo extracts the payment id from a "PAY-<id>-<ts>" order
// number, returning 0 when the format does not match.
func paymentIDFromOrderNo(orderNo string) uint64 {
	parts := strings.Split(orderNo, "-")
	if len(parts) != 3 || parts[0] != "PAY" {
		return 0
	}
	return utils.StringToUint64(parts[1])
}
