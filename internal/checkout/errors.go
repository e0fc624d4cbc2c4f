package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	IllegalTransitionError = errors.New("illegal transition of checkout step")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrSessionCompleted    = errors.New("checkout session already completed")
	ErrAddressInvalid      = errors.New("address failed validation")
	ErrSubmissionInFlight  = errors.New("a submission for this session is already in flight")
	ErrGatewayOrderMissing = errors.New("no gateway order was created for this session")
	// ErrVerificationFailed is blocking: money may have moved without a
	// confirmed order, so the caller must surface a contact-support error
	// and leave the cart alone.
	ErrVerificationFailed = errors.New("payment verification failed")
)
