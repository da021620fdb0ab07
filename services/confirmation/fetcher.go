package confirmation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myhttpclient"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
)

//go:generate mockgen -source=fetcher.go -package confirmation -destination fetcher_mock.go OrderFetcher
type OrderFetcher interface {
	Fetch(c context.Context, reference string) (orderapi.Order, bool, error)
}

type httpOrderFetcher struct {
	client  myhttpclient.HTTPSender
	baseURL string
}

func NewOrderFetcher(baseURL string) OrderFetcher {
	return &httpOrderFetcher{
		client:  myhttpclient.New(),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (f *httpOrderFetcher) Fetch(c context.Context, reference string) (orderapi.Order, bool, error) {
	httpStatus, body, err := f.client.Send(c, http.MethodGet, fmt.Sprintf("%s/api/orders/%s", f.baseURL, reference), nil)
	if err != nil {
		return orderapi.Order{}, false, myerrors.NewUnavailableError(err)
	}
	if httpStatus == http.StatusNotFound {
		return orderapi.Order{}, false, nil
	}
	if httpStatus != http.StatusOK {
		return orderapi.Order{}, false, myerrors.NewUnavailableError(fmt.Errorf("unexpected status %d fetching order %s", httpStatus, reference))
	}

	order := orderapi.Order{}
	err = json.Unmarshal(body, &order)
	if err != nil {
		return orderapi.Order{}, false, myerrors.NewInternalError(fmt.Errorf("error parsing order %s: %s", reference, err))
	}

	return order, true, nil
}
