package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"luxebites/internal/models"
)

// SMTPSettings configures outgoing mail.
type SMTPSettings struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends order confirmations to customers who left an e-mail address.
type EmailService struct {
	sender mailSender
	from   string
	log    *zap.SugaredLogger
	wg     sync.WaitGroup
}

// NewEmailService returns a service that only logs when no SMTP credentials are set.
func NewEmailService(settings SMTPSettings, log *zap.SugaredLogger) *EmailService {
	from := settings.From
	if from == "" {
		from = settings.User
	}
	if from == "" {
		from = "noreply@luxebites.com"
	}

	if settings.User == "" || settings.Pass == "" {
		log.Info("EmailService - SMTP credentials not set, e-mail delivery disabled")
		return &EmailService{from: from, log: log}
	}

	return &EmailService{
		sender: gomail.NewDialer(settings.Host, settings.Port, settings.User, settings.Pass),
		from:   from,
		log:    log,
	}
}

// OrderPlaced sends the confirmation in the background so checkout never waits on SMTP.
func (es *EmailService) OrderPlaced(_ context.Context, order *models.Order) error {
	to := strings.TrimSpace(order.Customer.Email)
	if to == "" {
		return nil
	}

	es.wg.Add(1)
	go func() {
		defer es.wg.Done()
		if err := es.SendOrderConfirmation(to, order); err != nil {
			es.log.Warnf("EmailService.OrderPlaced - Confirmation for %s failed: %v", order.OrderNumber, err)
		}
	}()
	return nil
}

// Wait blocks until every background send has finished.
func (es *EmailService) Wait() {
	es.wg.Wait()
}

// SendOrderConfirmation e-mails the order summary to to.
func (es *EmailService) SendOrderConfirmation(to string, order *models.Order) error {
	if es.sender == nil {
		es.log.Infof("EmailService.SendOrderConfirmation - Delivery disabled, order %s for %s", order.OrderNumber, to)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your Luxe Bites order %s", order.OrderNumber))
	m.SetBody("text/html", orderConfirmationBody(order))

	if err := es.sender.DialAndSend(m); err != nil {
		return err
	}

	es.log.Infof("EmailService.SendOrderConfirmation - Sent confirmation for %s to %s", order.OrderNumber, to)
	return nil
}

func orderConfirmationBody(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>\n",
			html.EscapeString(item.Name), item.Quantity, FormatPrice(item.LineTotal()))
	}

	return fmt.Sprintf(`
		<h2>Thank you for your order!</h2>
		<p>Hello %s,</p>
		<p>Your order <strong>%s</strong> has been placed.</p>
		<table>%s</table>
		<p>Subtotal: %s<br>Delivery: %s<br>VAT: %s<br><strong>Total: %s</strong></p>
		<p>Delivering to %s. Estimated delivery: %s</p>
		<br>
		<p>Luxe Bites</p>
	`,
		html.EscapeString(order.Customer.FullName),
		html.EscapeString(order.OrderNumber),
		rows.String(),
		FormatPrice(order.Subtotal),
		FormatPrice(order.DeliveryFee),
		FormatPrice(order.Tax),
		FormatPrice(order.Total),
		html.EscapeString(order.Customer.DeliveryAddress()),
		html.EscapeString(order.EstimatedDelivery),
	)
}
