package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a rendered view of a single project. It is assembled on demand and never stored.
type Invoice struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	Project       Project
	Client        *Client
	Business      BusinessProfile
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	Paid          decimal.Decimal
	BalanceDue    decimal.Decimal

	LineItems []*InvoiceLineItem
}

type InvoiceLineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// NewInvoice creates an invoice with the project's total as its only line item
func NewInvoice(number string, date time.Time, project Project, client *Client, business BusinessProfile) *Invoice {
	inv := &Invoice{
		InvoiceNumber: number,
		InvoiceDate:   Date(date),
		Project:       project,
		Client:        client,
		Business:      business,
		TaxRate:       decimal.Zero,
	}
	inv.LineItems = []*InvoiceLineItem{{
		Description: project.Title,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   project.TotalAmount,
		Amount:      project.TotalAmount,
	}}
	inv.CalculateTotals()
	return inv
}

// CalculateTotals recalculates subtotal, tax, total and balance from line items and Paid
func (i *Invoice) CalculateTotals() {
	i.Subtotal = decimal.Zero
	for _, item := range i.LineItems {
		i.Subtotal = i.Subtotal.Add(item.Amount)
	}
	i.TaxAmount = i.Subtotal.Mul(i.TaxRate).Round(2)
	i.Total = i.Subtotal.Add(i.TaxAmount)
	i.BalanceDue = i.Total.Sub(i.Paid)
}

// ApplyPaid records the amount already received and refreshes the balance
func (i *Invoice) ApplyPaid(paid decimal.Decimal) {
	i.Paid = paid
	i.CalculateTotals()
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return errors.New("invoice number is required")
	}
	if i.Project.ID == "" {
		return errors.New("project is required")
	}
	if i.InvoiceDate.IsZero() {
		return errors.New("invoice date is required")
	}
	if i.TaxRate.IsNegative() || i.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("tax rate must be between 0 and 1")
	}
	return nil
}
