// Package checkout drives the three-step wizard (login, address, payment)
// and the two submission paths: cash on delivery and the hosted payment
// gateway. All money math is delegated to the pricing package so the review
// screen and the persisted order can never disagree.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/notification"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/order"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/payment"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/pricing"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/profile"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/tracking"
)

const submitTimeout = 15 * time.Second

// CartStore is the slice of the cart service checkout needs: a snapshot on
// entry and a clear on success.
type CartStore interface {
	Snapshot(ctx context.Context, userID string) (*domain.CartSnapshot, error)
	Clear(ctx context.Context, userID string) error
}

// AddressBook persists the delivery address across checkouts so a returning
// customer skips the address step.
type AddressBook interface {
	GetSavedAddress(ctx context.Context, userID string) (*domain.Address, error)
	SaveAddress(ctx context.Context, userID string, address domain.Address) error
}

type Orders interface {
	CreateOrder(ctx context.Context, ord *domain.Order) error
	GetOrderByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*domain.Order, error)
}

type Tracker interface {
	Save(ctx context.Context, userID string, record tracking.Record) error
}

// SubmitResult is what the buyer sees after submission. Fallback marks an
// order id that was synthesised client-side after the order store failed;
// the failure is logged server-side for reconciliation.
type SubmitResult struct {
	OrderID  string `json:"order_id"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Review is the order summary shown before payment.
type Review struct {
	Session *domain.CheckoutSession `json:"session"`
	Totals  pricing.Totals          `json:"totals"`
}

type Service struct {
	repo      RepoInterface
	carts     CartStore
	addresses AddressBook
	orders    Orders
	gateway   payment.Client
	notifier  notification.Notifier
	tracker   Tracker
	policy    domain.DiscountPolicy
	currency  string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(
	repo RepoInterface,
	carts CartStore,
	addresses AddressBook,
	orders Orders,
	gateway payment.Client,
	notifier notification.Notifier,
	tracker Tracker,
	policy domain.DiscountPolicy,
	currency string,
) *Service {
	return &Service{
		repo:      repo,
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		gateway:   gateway,
		notifier:  notifier,
		tracker:   tracker,
		policy:    policy,
		currency:  currency,
		inFlight:  make(map[string]struct{}),
	}
}

// Start opens a checkout session over the current cart. When the caller
// supplies an idempotency key of an existing session, that session is
// returned instead of creating a new one, completed or not.
//
// The entry step depends on who is checking out: an unauthenticated visitor
// lands on LOGIN; an authenticated customer with a saved address skips
// straight to PAYMENT with the address prefilled; everyone else gets the
// ADDRESS form.
func (s *Service) Start(ctx context.Context, userID string, authenticated bool, idempotencyKey string) (*domain.CheckoutSession, error) {
	if idempotencyKey != "" {
		existing, err := s.repo.GetSessionByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrIdempotencyKeyNotFound) {
			return nil, fmt.Errorf("failed to look up checkout session: %w", err)
		}
	}

	snapshot, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}
	if snapshot.Empty() {
		return nil, ErrEmptyCart
	}
	snapshot.Currency = s.currency

	session := &domain.CheckoutSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		Step:           domain.StepLogin,
		Snapshot:       *snapshot,
	}
	if authenticated {
		s.applyResumeShortcut(ctx, session)
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	return s.repo.GetSession(ctx, sessionID)
}

// Authenticate moves a LOGIN session forward once the visitor has signed
// in. The resume shortcut applies here too: a saved address jumps the
// session straight to PAYMENT.
func (s *Service) Authenticate(ctx context.Context, sessionID, userID string) (*domain.CheckoutSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step.IsTerminal() {
		return nil, ErrSessionCompleted
	}
	// only the LOGIN step binds a user; PAYMENT -> ADDRESS is the
	// change-address move, never a re-login
	if session.Step != domain.StepLogin {
		return nil, IllegalTransitionError
	}

	session.UserID = userID
	session.Step = domain.StepAddress
	s.applyResumeShortcut(ctx, session)

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update checkout session: %w", err)
	}
	return session, nil
}

// applyResumeShortcut prefills the saved address and skips the address
// step. A missing saved address is the normal first-purchase case.
func (s *Service) applyResumeShortcut(ctx context.Context, session *domain.CheckoutSession) {
	session.Step = domain.StepAddress
	saved, err := s.addresses.GetSavedAddress(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, profile.ErrAddressNotFound) {
			log.Printf("checkout %s: saved address lookup failed: %v", session.ID, err)
		}
		return
	}
	if len(saved.Validate()) != 0 {
		return
	}
	session.Address = saved
	session.Step = domain.StepPayment
}

// SubmitAddress validates the delivery address field by field. On any
// failure the session keeps the submitted values at the ADDRESS step and
// the field errors are returned for inline display; only a fully valid
// address advances to PAYMENT.
func (s *Service) SubmitAddress(ctx context.Context, sessionID string, addr domain.Address) (*domain.CheckoutSession, domain.FieldErrors, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Step.IsTerminal() {
		return nil, nil, ErrSessionCompleted
	}
	if session.Step != domain.StepAddress {
		return nil, nil, IllegalTransitionError
	}

	session.Address = &addr
	if fieldErrs := addr.Validate(); len(fieldErrs) != 0 {
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			return nil, nil, fmt.Errorf("failed to store address draft: %w", err)
		}
		return session, fieldErrs, nil
	}

	session.Step = domain.StepPayment
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to update checkout session: %w", err)
	}

	if err := s.addresses.SaveAddress(ctx, session.UserID, addr); err != nil {
		log.Printf("checkout %s: failed to save address for reuse: %v", session.ID, err)
	}
	return session, nil, nil
}

// ChangeAddress steps back from PAYMENT to the address form. The form is
// prefilled with the session's current address by the caller.
func (s *Service) ChangeAddress(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step.IsTerminal() {
		return nil, ErrSessionCompleted
	}
	if !domain.CanTransition(session.Step, domain.StepAddress) {
		return nil, IllegalTransitionError
	}
	session.Step = domain.StepAddress
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update checkout session: %w", err)
	}
	return session, nil
}

// Summary returns the session with its computed totals for the review
// screen.
func (s *Service) Summary(ctx context.Context, sessionID string) (*Review, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Review{
		Session: session,
		Totals:  pricing.ComputeTotals(session.Snapshot, s.policy),
	}, nil
}

// SubmitCOD places a cash-on-delivery order. The order store is given a
// bounded window; if it fails or times out, checkout still completes with a
// synthesised fallback order id and the failure is logged server-side for
// reconciliation. Submitting twice for the same session returns the same
// order.
func (s *Service) SubmitCOD(ctx context.Context, sessionID string) (*SubmitResult, error) {
	release, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step.IsTerminal() {
		if session.OrderID == "" {
			return nil, ErrSessionCompleted
		}
		return &SubmitResult{OrderID: session.OrderID, Fallback: strings.HasPrefix(session.OrderID, fallbackPrefix)}, nil
	}
	if err := s.readyToSubmit(session); err != nil {
		return nil, err
	}
	session.PaymentMethod = domain.PaymentMethodCOD

	ord, err := s.buildOrder(session)
	if err != nil {
		return nil, err
	}
	ord.Status = domain.OrderStatusPending
	ord.PaymentStatus = domain.PaymentStatusPending

	createCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	createErr := s.orders.CreateOrder(createCtx, ord)
	switch {
	case createErr == nil:
		s.finish(ctx, session, ord.ID.String(), ord.Total, true, ord)
		return &SubmitResult{OrderID: ord.ID.String()}, nil

	case errors.Is(createErr, order.ErrDuplicateCheckout):
		existing, getErr := s.orders.GetOrderByCheckoutID(ctx, ord.CheckoutID)
		if getErr != nil {
			return nil, fmt.Errorf("order exists but could not be loaded: %w", getErr)
		}
		s.finish(ctx, session, existing.ID.String(), existing.Total, false, nil)
		return &SubmitResult{OrderID: existing.ID.String()}, nil

	default:
		// The buyer gets a confirmation anyway; ops reconciles from this
		// log line against the cart snapshot kept on the session.
		fallbackID := fallbackPrefix + uuid.New().String()
		log.Printf("checkout %s: COD order persistence failed, issued fallback id %s: %v", session.ID, fallbackID, createErr)
		s.finish(ctx, session, fallbackID, ord.Total, false, nil)
		return &SubmitResult{OrderID: fallbackID, Fallback: true}, nil
	}
}

const fallbackPrefix = "OF-"

// CreateGatewayOrder registers the discounted total with the payment
// gateway and stores the handle on the session. The hosted checkout UI is
// opened against the returned order.
func (s *Service) CreateGatewayOrder(ctx context.Context, sessionID string) (*payment.GatewayOrder, error) {
	release, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step.IsTerminal() {
		return nil, ErrSessionCompleted
	}
	if err := s.readyToSubmit(session); err != nil {
		return nil, err
	}

	totals := pricing.ComputeTotals(session.Snapshot, s.policy)

	// a handle already exists for this session; re-registering would
	// orphan it at the gateway
	if session.GatewayOrderID != "" {
		return &payment.GatewayOrder{
			ID:       session.GatewayOrderID,
			Amount:   totals.Total,
			Currency: s.currency,
			Receipt:  session.ID,
		}, nil
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, totals.Total, s.currency, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	session.PaymentMethod = domain.PaymentMethodGateway
	session.GatewayOrderID = gatewayOrder.ID
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store gateway order id: %w", err)
	}
	return gatewayOrder, nil
}

// CompleteGatewayPayment verifies the callback from the hosted checkout and
// persists the order. Verification failure is blocking: no order is
// written, the cart is left intact and the session stays at PAYMENT so
// support can reconcile a possible charge. Verifying the same payment twice
// returns the already-created order.
func (s *Service) CompleteGatewayPayment(ctx context.Context, sessionID string, callback payment.CallbackResult) (*SubmitResult, error) {
	release, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step.IsTerminal() && session.OrderID != "" {
		return &SubmitResult{OrderID: session.OrderID}, nil
	}
	if session.GatewayOrderID == "" {
		return nil, ErrGatewayOrderMissing
	}
	if callback.GatewayOrderID != session.GatewayOrderID {
		return nil, fmt.Errorf("callback is for gateway order %q, session holds %q: %w",
			callback.GatewayOrderID, session.GatewayOrderID, ErrGatewayOrderMissing)
	}

	ok, err := s.gateway.VerifyPayment(ctx, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !ok {
		return nil, ErrVerificationFailed
	}

	ord, err := s.buildOrder(session)
	if err != nil {
		return nil, err
	}
	ord.Status = domain.OrderStatusConfirmed
	ord.PaymentStatus = domain.PaymentStatusPaid
	ord.GatewayOrderID = callback.GatewayOrderID
	ord.GatewayPaymentID = callback.GatewayPaymentID

	createErr := s.orders.CreateOrder(ctx, ord)
	switch {
	case createErr == nil:
		s.finish(ctx, session, ord.ID.String(), ord.Total, true, ord)
		return &SubmitResult{OrderID: ord.ID.String()}, nil

	case errors.Is(createErr, order.ErrDuplicateCheckout), errors.Is(createErr, order.ErrDuplicatePayment):
		existing, getErr := s.orders.GetOrderByCheckoutID(ctx, ord.CheckoutID)
		if getErr != nil {
			return nil, fmt.Errorf("order exists but could not be loaded: %w", getErr)
		}
		s.finish(ctx, session, existing.ID.String(), existing.Total, false, nil)
		return &SubmitResult{OrderID: existing.ID.String()}, nil

	default:
		// Money has moved. Unlike COD there is no fallback path here:
		// the caller gets the error and support takes over.
		return nil, fmt.Errorf("payment captured but order persistence failed for session %s: %w", session.ID, createErr)
	}
}

// readyToSubmit is the shared gate for both payment paths.
func (s *Service) readyToSubmit(session *domain.CheckoutSession) error {
	if !domain.CanTransition(session.Step, domain.StepCompleted) {
		return IllegalTransitionError
	}
	if session.Snapshot.Empty() {
		return ErrEmptyCart
	}
	if session.Address == nil || len(session.Address.Validate()) != 0 {
		return ErrAddressInvalid
	}
	return nil
}

func (s *Service) buildOrder(session *domain.CheckoutSession) (*domain.Order, error) {
	checkoutID, err := uuid.Parse(session.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed checkout session id %q: %w", session.ID, err)
	}

	totals := pricing.ComputeTotals(session.Snapshot, s.policy)
	items := make([]domain.OrderItem, 0, len(session.Snapshot.Items))
	for _, line := range session.Snapshot.Items {
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Variant:     line.Variant,
			Quantity:    line.Quantity,
			Price:       pricing.DiscountedUnitPrice(line.UnitPrice, s.policy),
			ImageURL:    line.ImageURL,
		})
	}

	return &domain.Order{
		ID:             uuid.New(),
		CheckoutID:     checkoutID,
		UserID:         session.UserID,
		CustomerName:   session.Address.FullName,
		CustomerPhone:  session.Address.Phone,
		Address:        *session.Address,
		Items:          items,
		Subtotal:       totals.DiscountedSubtotal,
		DiscountAmount: totals.DiscountAmount,
		DiscountCode:   s.policy.Code,
		ShippingFee:    totals.ShippingFee,
		Total:          totals.Total,
		Currency:       s.currency,
		PaymentMethod:  session.PaymentMethod,
	}, nil
}

// finish closes the session, empties the cart and records the tracking
// entry. When ord is non-nil the confirmation notification is published in
// the background; a fallback or replayed submission sends none.
func (s *Service) finish(ctx context.Context, session *domain.CheckoutSession, orderID string, total int64, notify bool, ord *domain.Order) {
	session.Step = domain.StepCompleted
	session.OrderID = orderID
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		// The order exists and the unique checkout index prevents a
		// duplicate, so this is recoverable noise.
		log.Printf("checkout %s: failed to mark session completed: %v", session.ID, err)
	}

	if err := s.carts.Clear(ctx, session.UserID); err != nil {
		log.Printf("checkout %s: failed to clear cart: %v", session.ID, err)
	}

	record := tracking.Record{Value: total, Currency: s.currency, OrderID: orderID}
	if err := s.tracker.Save(ctx, session.UserID, record); err != nil {
		log.Printf("checkout %s: failed to save tracking record: %v", session.ID, err)
	}

	if notify && ord != nil {
		event := confirmationEvent(ord)
		go s.notifier.OrderConfirmed(context.Background(), event)
	}
}

func confirmationEvent(ord *domain.Order) notification.OrderConfirmation {
	items := make([]notification.ItemSummary, 0, len(ord.Items))
	for _, item := range ord.Items {
		items = append(items, notification.ItemSummary{Name: item.ProductName, Quantity: item.Quantity})
	}
	return notification.OrderConfirmation{
		OrderID:       ord.ID.String(),
		CustomerName:  ord.CustomerName,
		CustomerPhone: ord.CustomerPhone,
		Total:         ord.Total,
		Currency:      ord.Currency,
		Items:         items,
		Address:       ord.Address.Display(),
	}
}

// acquire guards a session against concurrent submissions from the same
// process (double-clicked submit buttons). The database unique index is the
// cross-process backstop.
func (s *Service) acquire(sessionID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return nil, ErrSubmissionInFlight
	}
	s.inFlight[sessionID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, sessionID)
		s.mu.Unlock()
	}, nil
}
