package models

// BillingStatus is the backend's answer to a billing-status lookup. Both
// access fields are pointers so "field absent" stays distinguishable from an
// explicit false; the entitlement gate depends on that distinction.
type BillingStatus struct {
	HasAccess *bool  `json:"hasAccess,omitempty"`
	Active    *bool  `json:"active,omitempty"`
	PlanType  string `json:"planType,omitempty"`
}

// CheckoutSession points the user at the payment provider.
type CheckoutSession struct {
	URL string `json:"url"`
}

// NotificationCounts holds the two independently fetched badge counters.
type NotificationCounts struct {
	UnreadMessages     int
	PendingConnections int
}
