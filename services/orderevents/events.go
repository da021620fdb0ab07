package orderevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myevents"
)

const (
	TopicName           = "order"
	checkoutStartedName = TopicName + ".checkoutStarted"
	orderCompletedName  = TopicName + ".completed"
)

type OrderEventService interface {
	Subscribe(c context.Context) error
	OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error
	OnOrderCompleted(c context.Context, topic string, event OrderCompleted) error
}

func DispatchEvent(c context.Context, reader io.Reader, service OrderEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case checkoutStartedName:
		{
			event := CheckoutStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutStarted(c, envelope.Topic, event)
		}
	case orderCompletedName:
		{
			event := OrderCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnOrderCompleted(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("%s", envelope.EventTypeName))
	}
}

type CheckoutStarted struct {
	SessionUID    string
	ProviderName  string
	Product       string
	AmountInCents int64
	Currency      string
	BuyerEmail    string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.SessionUID
}

type OrderCompleted struct {
	OrderReference string
	ProviderName   string
	Product        string
	AmountInCents  int64
	Currency       string
	BuyerName      string
	BuyerEmail     string
	AccessToken    string
}

func (e OrderCompleted) GetEventTypeName() string {
	return orderCompletedName
}

func (e OrderCompleted) GetAggregateName() string {
	return e.OrderReference
}
