package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/caarlos0/env/v10"
	"github.com/gorilla/mux"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mymailer"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypublisher"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypubsub"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myqueue"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myuuid"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/checkoutmollie"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/checkoutstripe"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/contactmail"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/content"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderemail"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderevents"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orders"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/warmup"
)

// Config is read from the environment at startup. Secrets come in through
// the runtime configuration, never from source.
type Config struct {
	Port                string `env:"PORT" envDefault:"8080"`
	SiteOrigin          string `env:"SITE_ORIGIN" envDefault:"http://localhost:8080"`
	StripeAPIKey        string `env:"STRIPE_API_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	MollieAPIKey        string `env:"MOLLIE_API_KEY"`
	SendgridAPIKey      string `env:"SENDGRID_API_KEY"`
	MailSender          string `env:"MAIL_SENDER" envDefault:"noreply@utazasparizsba.hu"`
	ContactRecipient    string `env:"CONTACT_RECIPIENT" envDefault:"info@utazasparizsba.hu"`
	AdminAPIKey         string `env:"ADMIN_API_KEY,required"`
}

func main() {
	c := context.Background()

	cfg := Config{}
	err := env.Parse(&cfg)
	if err != nil {
		log.Fatalf("Error parsing config from environment: %s", err)
	}

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	orderStore, orderStoreCleanup, err := mystore.New[orderapi.Order](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}
	defer orderStoreCleanup()

	tourStore, tourStoreCleanup, err := mystore.New[content.Tour](c)
	if err != nil {
		log.Fatalf("Error creating tour store: %s", err)
	}
	defer tourStoreCleanup()

	postStore, postStoreCleanup, err := mystore.New[content.BlogPost](c)
	if err != nil {
		log.Fatalf("Error creating blog store: %s", err)
	}
	defer postStoreCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	err = publisher.CreateTopic(c, orderevents.TopicName)
	if err != nil {
		log.Fatalf("Error creating topic %s: %s", orderevents.TopicName, err)
	}

	mailer := mymailer.New(cfg.SendgridAPIKey)

	stripeService, err := checkoutstripe.NewWebService(cfg.StripeAPIKey, cfg.StripeWebhookSecret,
		checkoutstripe.NewPayer(), nower, uuider, orderStore, publisher)
	if err != nil {
		log.Fatalf("Error creating stripe checkout service: %s", err)
	}
	err = stripeService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering stripe checkout service: %s", err)
	}

	molliePayer, err := checkoutmollie.NewPayer()
	if err != nil {
		log.Fatalf("Error creating mollie payer: %s", err)
	}
	mollieService, err := checkoutmollie.NewWebService(cfg.MollieAPIKey, molliePayer, nower, uuider, orderStore, publisher)
	if err != nil {
		log.Fatalf("Error creating mollie checkout service: %s", err)
	}
	err = mollieService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering mollie checkout service: %s", err)
	}

	err = orders.NewWebService(cfg.AdminAPIKey, orderStore).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering order service: %s", err)
	}

	err = content.NewWebService(cfg.AdminAPIKey, nower, tourStore, postStore).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering content service: %s", err)
	}

	err = contactmail.NewWebService(mailer, cfg.MailSender, cfg.ContactRecipient).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering contact service: %s", err)
	}

	err = orderemail.NewWebService(pubsub, mailer, cfg.MailSender, cfg.SiteOrigin).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering order email service: %s", err)
	}

	warmup.NewService(orderStore).RegisterEndpoints(c, router)

	startWebServerBlocking(router, cfg.Port)
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
