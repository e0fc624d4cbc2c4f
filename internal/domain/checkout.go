package domain

import "time"

type CheckoutStep string

const (
	StepLogin     CheckoutStep = "LOGIN"
	StepAddress   CheckoutStep = "ADDRESS"
	StepPayment   CheckoutStep = "PAYMENT"
	StepCompleted CheckoutStep = "COMPLETED"
)

// stepTransitions is the full set of legal wizard moves. Note there is no
// way back to LOGIN once authenticated, and PAYMENT -> ADDRESS (the
// "change address" action) is always allowed.
var stepTransitions = map[CheckoutStep][]CheckoutStep{
	StepLogin:   {StepAddress},
	StepAddress: {StepPayment},
	StepPayment: {StepAddress, StepCompleted},
}

func CanTransition(from, to CheckoutStep) bool {
	for _, next := range stepTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStep) IsTerminal() bool {
	return s == StepCompleted
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodCOD     PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodCOD
}

type CartSnapshotItem struct {
	ProductID   int64    `json:"product_id"`
	ProductName string   `json:"product_name"`
	Variant     *Variant `json:"variant,omitempty"`
	Quantity    int      `json:"quantity"`
	UnitPrice   int64    `json:"unit_price"`
	ImageURL    string   `json:"image_url"`
}

// CartSnapshot captures the cart contents at checkout-entry time with live
// catalog data (names, undiscounted prices, images) joined in.
type CartSnapshot struct {
	Items      []CartSnapshotItem `json:"items"`
	Subtotal   int64              `json:"subtotal"`
	Currency   string             `json:"currency"`
	CapturedAt time.Time          `json:"captured_at"`
}

func (s *CartSnapshot) Empty() bool {
	return s == nil || len(s.Items) == 0
}

// CheckoutSession is the wizard-local state. It is created when checkout
// starts, mutated by step transitions, and finished (COMPLETED) exactly once.
type CheckoutSession struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	IdempotencyKey string        `json:"idempotency_key"`
	Step           CheckoutStep  `json:"step"`
	Snapshot       CartSnapshot  `json:"snapshot"`
	Address        *Address      `json:"address,omitempty"`
	PaymentMethod  PaymentMethod `json:"payment_method,omitempty"`
	GatewayOrderID string        `json:"gateway_order_id,omitempty"`
	OrderID        string        `json:"order_id,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
