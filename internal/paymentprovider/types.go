package paymentprovider

// CustomerDetails данные плательщика в запросе создания заказа.
type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// CreateOrderRequest запрос на создание заказа у провайдера.
type CreateOrderRequest struct {
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderAmount     int             `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderID         string          `json:"order_id"`
}

// CreateOrderResponse ответ провайдера на создание заказа.
type CreateOrderResponse struct {
	OrderID          string `json:"order_id"`
	OrderStatus      string `json:"order_status"`
	PaymentSessionID string `json:"payment_session_id"`
	Message          string `json:"message,omitempty"`
}

// WebhookPayload тело webhook-уведомления провайдера о результате оплаты.
type WebhookPayload struct {
	Data struct {
		Order struct {
			OrderID     string `json:"order_id"`
			OrderAmount int    `json:"order_amount"`
		} `json:"order"`
		Payment struct {
			PaymentID     string `json:"cf_payment_id"`
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}
