package orders

import (
	"context"
	"fmt"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
)

type service struct {
	logger     mylog.Logger
	orderStore mystore.Store[orderapi.Order]
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, orderStore mystore.Store[orderapi.Order]) *service {
	return &service{
		logger:     logger,
		orderStore: orderStore,
	}
}

// getOrder is the confirmation read used by buyers polling after the
// redirect back from the payment gateway.
func (s *service) getOrder(c context.Context, reference string) (orderapi.Order, error) {
	order, found, err := s.orderStore.Get(c, reference)
	if err != nil {
		return orderapi.Order{}, myerrors.NewUnavailableError(fmt.Errorf("error fetching order %s: %s", reference, err))
	}
	if !found {
		return orderapi.Order{}, myerrors.NewNotFoundError(fmt.Errorf("order %s not found", reference))
	}

	return order, nil
}

func (s *service) listOrders(c context.Context) ([]orderapi.Order, error) {
	orders, err := s.orderStore.Query(c, []mystore.Filter{}, "-CreatedAt")
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error listing orders: %s", err))
	}

	return orders, nil
}
