package domain

import "encoding/json"

// OrderRequest is the payload handed to the order-creation backend.
// Money fields are in cents.
type OrderRequest struct {
	ClientReference   string        `json:"clientReference"`
	CustomerID        string        `json:"customerId"`
	CustomerName      string        `json:"customerName"`
	CustomerEmail     string        `json:"customerEmail"`
	CustomerPhone     string        `json:"customerPhone,omitempty"`
	Servings          int           `json:"servings"`
	EventDate         string        `json:"eventDate"`
	PickupTime        string        `json:"pickupTime"`
	Message           string        `json:"message"`
	Notes             string        `json:"notes"`
	CakeType          CakeType      `json:"cakeType"`
	StandardCakeID    *string       `json:"standardCakeId"`
	Layers            []Layer       `json:"layers,omitempty"`
	CakeSize          string        `json:"cakeSize"`
	IcingColors       []string      `json:"icingColors"`
	Decorations       []string      `json:"decorations"`
	InspirationImages []string      `json:"inspirationImages,omitempty"`
	IsRushOrder       bool          `json:"isRushOrder"`
	RushJustification string        `json:"rushJustification,omitempty"`
	ManagerApproval   *bool         `json:"managerApproval"`
	AdminNotes        string        `json:"adminNotes"`
	Status            string        `json:"status"`
	Priority          string        `json:"priority"`
	DepositAmount     int64         `json:"depositAmount"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	TotalAmount       int64         `json:"totalAmount"`
}

type OrderConfirmation struct {
	OrderID string `json:"orderId"`
}

type NewCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// PastOrder is a customer's earlier order as returned by the history lookup.
// Configuration holds the stored order configuration verbatim.
type PastOrder struct {
	ID            string          `json:"id"`
	EventDate     string          `json:"eventDate"`
	TotalAmount   int64           `json:"totalAmount"`
	Configuration json.RawMessage `json:"configuration"`
}
