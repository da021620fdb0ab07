package contactmail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mycontext"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myhttp"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mymailer"
)

// ContactForm is the form-encoded payload of the contact page.
type ContactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Message string `form:"message"`
}

func (f ContactForm) Validate() error {
	if f.Name == "" {
		return myerrors.NewInvalidInputErrorf("missing mandatory field 'name'")
	}
	if f.Email == "" {
		return myerrors.NewInvalidInputErrorf("missing mandatory field 'email'")
	}
	if f.Message == "" {
		return myerrors.NewInvalidInputErrorf("missing mandatory field 'message'")
	}
	return nil
}

type webService struct {
	logger    mylog.Logger
	decoder   *form.Decoder
	mailer    mymailer.Mailer
	sender    string
	recipient string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(mailer mymailer.Mailer, sender string, recipient string) *webService {
	return &webService{
		logger:    mylog.New("contactmail"),
		decoder:   form.NewDecoder(),
		mailer:    mailer,
		sender:    sender,
		recipient: recipient,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/contact", s.contactPage()).Methods("POST")

	return nil
}

func (s *webService) contactPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		contactForm := ContactForm{}
		err = s.decoder.Decode(&contactForm, r.PostForm)
		if err != nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing form: %s", err)))
			return
		}

		err = contactForm.Validate()
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		err = s.mailer.Send(c, mymailer.Email{
			From:     s.sender,
			FromName: "Utazás Párizsba",
			To:       s.recipient,
			ReplyTo:  contactForm.Email,
			Subject:  fmt.Sprintf("Contact form message from %s", contactForm.Name),
			TextBody: composeBody(contactForm),
		})
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityError, "Error forwarding contact message from %s: %s", contactForm.Email, err)
			responseWriter.WriteError(c, w, 4, myerrors.NewInternalError(fmt.Errorf("error sending message")))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "message sent"})
	}
}

func composeBody(contactForm ContactForm) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s\n",
		contactForm.Name, contactForm.Email, contactForm.Phone, contactForm.Message)
}
