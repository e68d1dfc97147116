package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/judyrop/handmade-store/models"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends an order confirmation to the address on the order.
type Email struct {
	host     string
	port     int
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewEmail(host string, port int, user, password, from string) *Email {
	if from == "" {
		from = user
	}
	var a smtp.Auth
	if user != "" {
		a = smtp.PlainAuth("", user, password, host)
	}
	return &Email{host: host, port: port, from: from, auth: a, sendMail: smtp.SendMail}
}

func (e *Email) OrderPlaced(_ context.Context, order models.Order) error {
	if order.Email == "" {
		return nil
	}
	addr := e.host + ":" + strconv.Itoa(e.port)
	if err := e.sendMail(addr, e.auth, e.from, []string{order.Email}, orderMessage(e.from, order)); err != nil {
		return fmt.Errorf("send order email: %w", err)
	}
	return nil
}

func orderMessage(from string, order models.Order) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", order.Email)
	fmt.Fprintf(&b, "Subject: Order #%d received\r\n\r\n", order.ID)
	fmt.Fprintf(&b, "Hi %s,\r\n\r\nThanks for your order #%d.\r\n\r\n", order.FirstName, order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s @ %s\r\n", item.Quantity, item.ProductName, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\r\nTotal: %s\r\nPayment: %s\r\n", order.TotalPrice.StringFixed(2), order.PaymentMethod)
	fmt.Fprintf(&b, "Ship to: %s, %s %s\r\n", order.Address, order.City, order.Zipcode)
	return []byte(b.String())
}
