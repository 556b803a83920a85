package enums

// NotificationEvent names the order lifecycle events fanned out to users.
type NotificationEvent string

const (
	EventNewOrderCOD        NotificationEvent = "new_order_cod"
	EventNewOrderPreorder   NotificationEvent = "new_order_preorder"
	EventBuyerUploadedProof NotificationEvent = "buyer_uploaded_proof"
	EventPaymentApproved    NotificationEvent = "payment_approved"
	EventPaymentRejected    NotificationEvent = "payment_rejected"
	EventOrderCancelled     NotificationEvent = "order_cancelled"
	EventRefundRequested    NotificationEvent = "refund_requested"
	EventRefundProcessed    NotificationEvent = "refund_processed"
	EventRefundCancelled    NotificationEvent = "refund_cancelled"
	EventOrderShipped       NotificationEvent = "order_shipped"
	EventOrderDelivered     NotificationEvent = "order_delivered"
	EventOrderAutoEscalated NotificationEvent = "order_auto_escalated"
)

// String implements fmt.Stringer.
func (e NotificationEvent) String() string {
	return string(e)
}
