package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judyrop/handmade-store/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:            12,
		FirstName:     "June",
		Email:         "june@example.com",
		Phone:         "+254712345678",
		Address:       "1 Market St",
		City:          "Nairobi",
		Zipcode:       "00100",
		TotalPrice:    decimal.RequireFromString("60"),
		PaymentMethod: models.DefaultPaymentMethod,
		Items: []models.OrderItem{
			{ProductName: "Oak Frame", Price: decimal.RequireFromString("30"), Quantity: 2},
		},
	}
}

func TestSMSPostsForm(t *testing.T) {
	var got struct {
		apiKey, to, username, message string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.apiKey = r.Header.Get("apiKey")
		got.to = r.PostForm.Get("to")
		got.username = r.PostForm.Get("username")
		got.message = r.PostForm.Get("message")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sms := NewSMS(srv.URL, "sandbox", "key-1")
	require.NoError(t, sms.OrderPlaced(context.Background(), sampleOrder()))

	assert.Equal(t, "key-1", got.apiKey)
	assert.Equal(t, "+254712345678", got.to)
	assert.Equal(t, "sandbox", got.username)
	assert.Contains(t, got.message, "order #12")
	assert.Contains(t, got.message, "60.00")
}

func TestSMSGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewSMS(srv.URL, "sandbox", "wrong").OrderPlaced(context.Background(), sampleOrder())
	assert.ErrorContains(t, err, "401")

	// no phone, nothing to send
	o := sampleOrder()
	o.Phone = ""
	assert.NoError(t, NewSMS(srv.URL, "sandbox", "wrong").OrderPlaced(context.Background(), o))
}

func TestEmailMessage(t *testing.T) {
	e := NewEmail("smtp.example.com", 587, "shop@example.com", "pw", "")
	var sent struct {
		addr string
		from string
		to   []string
		msg  string
	}
	e.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent.addr, sent.from, sent.to, sent.msg = addr, from, to, string(msg)
		return nil
	}

	require.NoError(t, e.OrderPlaced(context.Background(), sampleOrder()))
	assert.Equal(t, "smtp.example.com:587", sent.addr)
	assert.Equal(t, "shop@example.com", sent.from)
	assert.Equal(t, []string{"june@example.com"}, sent.to)
	assert.Contains(t, sent.msg, "Subject: Order #12 received")
	assert.Contains(t, sent.msg, "2 x Oak Frame @ 30.00")
	assert.Contains(t, sent.msg, "Total: 60.00")
}

type failing struct{ err error }

func (f failing) OrderPlaced(context.Context, models.Order) error { return f.err }

func TestMultiAndLogged(t *testing.T) {
	boom := errors.New("boom")
	m := Multi{Nop{}, failing{boom}, Nop{}}

	assert.ErrorIs(t, m.OrderPlaced(context.Background(), sampleOrder()), boom)
	assert.NoError(t, Logged(m).OrderPlaced(context.Background(), sampleOrder()))
}
