package billing

// CheckoutItemRequest is one cart line to pay for
type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0,lte=1000"`
}

// CreateCheckoutSessionRequest opens a card payment for the cart
type CreateCheckoutSessionRequest struct {
	Items []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CheckoutSessionResponse points the browser at the hosted checkout page
type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
