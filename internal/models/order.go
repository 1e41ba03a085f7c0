package models

import "time"

// Статусы оплаты заказа, приходят из webhook платёжного провайдера.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"
)

// Order представляет заказ на оплату подписки, созданный через платёжного
// провайдера. TransactionID заполняется асинхронно из webhook.
type Order struct {
	ID            int64     `json:"id"`
	OrderID       string    `json:"order_id"`
	SessionID     string    `json:"session_id"`
	UserUID       string    `json:"user_uid"`
	Amount        int       `json:"amount"`
	PaymentStatus string    `json:"payment_status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
