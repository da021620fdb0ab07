package confirmation

import (
	"context"
	"time"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
)

type EndState string

const (
	// EndStateSuccessWithToken means the payment was confirmed and the
	// access token has been written to the token store.
	EndStateSuccessWithToken EndState = "success-with-token"

	// EndStateSuccessWithoutToken means the attempt budget ran out before a
	// confirmation arrived. The payment is assumed to have succeeded, the
	// token store is left untouched and content stays locked until a later
	// visit picks the token up.
	EndStateSuccessWithoutToken EndState = "success-without-token"
)

// Poller runs on the buyer's device after the redirect back from the
// payment gateway. It polls the confirmation endpoint with the session
// reference from the redirect URL until the order shows up or the attempt
// budget is spent.
type Poller struct {
	logger      mylog.Logger
	fetcher     OrderFetcher
	tokens      TokenStore
	interval    time.Duration
	maxAttempts int
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewPoller(fetcher OrderFetcher, tokens TokenStore, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		logger:      mylog.New("confirmation"),
		fetcher:     fetcher,
		tokens:      tokens,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

func (p *Poller) Await(c context.Context, reference string) (EndState, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		order, found, err := p.fetcher.Fetch(c, reference)
		if err != nil {
			// Transient fetch errors just burn an attempt
			p.logger.Log(c, reference, mylog.SeverityWarn, "Attempt %d/%d for order %s failed: %s", attempt, p.maxAttempts, reference, err)
		} else if found && order.PaymentStatus == orderapi.PaymentStatusCompleted {
			return p.concludeConfirmed(c, order)
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-c.Done():
			return EndStateSuccessWithoutToken, c.Err()
		case <-time.After(p.interval):
		}
	}

	p.logger.Log(c, reference, mylog.SeverityInfo, "No confirmation for order %s after %d attempts", reference, p.maxAttempts)

	return EndStateSuccessWithoutToken, nil
}

func (p *Poller) concludeConfirmed(c context.Context, order orderapi.Order) (EndState, error) {
	if order.AccessToken == "" {
		p.logger.Log(c, order.OrderReference, mylog.SeverityWarn, "Order %s confirmed without access token", order.OrderReference)
		return EndStateSuccessWithoutToken, nil
	}

	err := p.tokens.Put(order.OrderReference, order.AccessToken)
	if err != nil {
		return EndStateSuccessWithoutToken, err
	}

	p.logger.Log(c, order.OrderReference, mylog.SeverityInfo, "Order %s confirmed, token stored", order.OrderReference)

	return EndStateSuccessWithToken, nil
}
