package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated     = "order.created"
	TopicOrderPaid        = "order.paid"
	TopicPaymentInitiated = "payment.initiated"
)
