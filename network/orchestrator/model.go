package orchestrator

// Order the checkout request body. Field names follow the storefront
// client, hence the mixed snake and camel case.
type Order struct {
	OrderID       string  `json:"order_id"`
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	UserType      string  `json:"userType"`

	User struct {
		Name    string `json:"name"`
		Contact string `json:"contact"`
		Address string `json:"address"`
	} `json:"user"`

	CreditCard struct {
		Number         string `json:"number"`
		ExpirationDate string `json:"expirationDate"`
		CVV            string `json:"cvv"`
	} `json:"creditCard"`

	Items []struct {
		Name     string `json:"name"`
		Quantity int32  `json:"quantity"`
	} `json:"items"`

	BillingAddress struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Zip     string `json:"zip"`
		Country string `json:"country"`
	} `json:"billingAddress"`

	ShippingMethod string `json:"shippingMethod"`
	TermsAccepted  bool   `json:"termsAccepted"`
}

// SuggestedBook one recommended title in the checkout response.
type SuggestedBook struct {
	Title string `json:"title"`
}

// CheckoutResponse the 200 body.
type CheckoutResponse struct {
	OrderID        string          `json:"orderId"`
	Status         string          `json:"status"`
	SuggestedBooks []SuggestedBook `json:"suggestedBooks"`
}

// RejectResponse the 400/500 body.
type RejectResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
