package types

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrInvalidQuote = errors.New("invalid quote request")

type QuoteContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
}

type QuoteItem struct {
	ProductId  ProductId `json:"productId"`
	PartNumber string    `json:"partNumber,omitempty"`
	Quantity   int       `json:"quantity"`
}

// QuoteRequest is what the quote cart submits. Method is "email" or "phone".
type QuoteRequest struct {
	Id      string       `json:"requestId,omitempty"`
	Contact QuoteContact `json:"contact"`
	Method  string       `json:"requestMethod,omitempty"`
	Message string       `json:"message,omitempty"`
	Items   []QuoteItem  `json:"items"`
	Created int64        `json:"created,omitempty"`
}

func (q *QuoteRequest) Validate() error {
	c := &q.Contact
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" || c.Email == "" || c.Phone == "" {
		return errors.Join(ErrInvalidQuote, errors.New("name, email and phone are required"))
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return errors.Join(ErrInvalidQuote, err)
	}
	if len(q.Items) == 0 {
		return errors.Join(ErrInvalidQuote, errors.New("no items"))
	}
	for _, item := range q.Items {
		if item.ProductId == 0 || item.Quantity <= 0 {
			return errors.Join(ErrInvalidQuote, errors.New("items need a product and a positive quantity"))
		}
	}
	if q.Method == "" {
		q.Method = "email"
	}
	return nil
}
