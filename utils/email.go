package utils

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/keighl/postmark"

	"medstore/models"
)

// EmailService sends transactional emails through Postmark
type EmailService struct {
	client *postmark.Client
	from   string
	notify string
}

// NewEmailService returns an EmailService sending from sender.
// Order notifications go to notifyTo.
func NewEmailService(apiToken, sender, notifyTo string) *EmailService {
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		from:   sender,
		notify: notifyTo,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
		Tag:      "order-placed",
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NotifyOrderPlaced tells the operations mailbox about a new order
func (es *EmailService) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := fmt.Sprintf("New order %s", order.ID.Hex())
	return es.SendEmail(es.notify, subject, OrderPlacedHTML(order))
}

// OrderPlacedHTML renders the body of the order-placed notification
func OrderPlacedHTML(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>Order %s</strong> for store %s<br><br>", order.ID.Hex(), order.Store.Hex())
	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%.2f</td></tr>",
			html.EscapeString(item.Name), item.Quantity, item.Price)
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<br>Total: <strong>%.2f</strong>", order.TotalPrice)
	if addr := order.DeliveryAddress; addr != nil {
		fmt.Fprintf(&b, "<br>Deliver to: %s, %s, %s",
			html.EscapeString(addr.FullName), html.EscapeString(addr.AddressLine1), html.EscapeString(addr.Pincode))
	}
	if order.Notes != "" {
		fmt.Fprintf(&b, "<br>Notes: %s", html.EscapeString(order.Notes))
	}
	return b.String()
}
