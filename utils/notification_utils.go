// utils/notification_utils.go
package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/finqube/loandesk_backend/models"
)

// SaveNotification saves an in-app notification to the database
func SaveNotification(db *mongo.Database, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := db.Collection("notifications").InsertOne(context.Background(), notification)
	return err
}

// SendEmail sends a plain-text email using the configured SMTP server.
// Failures are logged and returned but never abort the business operation
// that triggered the mail.
func SendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" {
		log.Printf("SMTP not configured; skipping email to %s", to)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return err
	}
	return nil
}

// NotifyInvoiceStatus notifies the payee's user account about an invoice
// status change, by email and in-app notification.
func NotifyInvoiceStatus(db *mongo.Database, invoice *models.Invoice, title, message string) {
	var entityID primitive.ObjectID
	switch {
	case invoice.AgentID != nil:
		entityID = *invoice.AgentID
	case invoice.FranchiseID != nil:
		entityID = *invoice.FranchiseID
	default:
		return
	}

	var user models.User
	err := db.Collection("users").FindOne(context.Background(), bson.M{"entityId": entityID}).Decode(&user)
	if err != nil {
		log.Printf("No user account found for invoice %s payee: %v", invoice.InvoiceNumber, err)
		return
	}

	_ = SendEmail(user.Email, title, message)
	if err := SaveNotification(db, user.ID, title, message, "invoice_status", bson.M{
		"invoiceId":     invoice.ID.Hex(),
		"invoiceNumber": invoice.InvoiceNumber,
		"status":        invoice.Status,
	}); err != nil {
		log.Printf("Failed to save invoice notification: %v", err)
	}
}

// NotifyPayoutCreated notifies a payee that a payout has been created
func NotifyPayoutCreated(db *mongo.Database, payout *models.Payout) {
	var user models.User
	err := db.Collection("users").FindOne(context.Background(), bson.M{"entityId": payout.PayeeID}).Decode(&user)
	if err != nil {
		log.Printf("No user account found for payout %s payee: %v", payout.PayoutNumber, err)
		return
	}

	title := "Payout Created"
	message := fmt.Sprintf("Payout %s for a net payable of %.2f has been created.", payout.PayoutNumber, payout.NetPayable)
	_ = SendEmail(user.Email, title, message)
	if err := SaveNotification(db, user.ID, title, message, "payout_created", bson.M{
		"payoutId":     payout.ID.Hex(),
		"payoutNumber": payout.PayoutNumber,
	}); err != nil {
		log.Printf("Failed to save payout notification: %v", err)
	}
}
