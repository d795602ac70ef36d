package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/trade"
)

//go:embed templates/*.html
var templateFS embed.FS

var statusDetails = map[trade.OrderStatus]string{
	trade.OrderStatusPending:    "We have received your order and will start preparing it soon.",
	trade.OrderStatusProcessing: "Our artisans are now preparing your flowers.",
	trade.OrderStatusShipped:    "Your order is on its way to you.",
	trade.OrderStatusDelivered:  "Your order has been delivered. We hope you love it!",
	trade.OrderStatusCancelled:  "Your order has been cancelled. Any reserved items have been released.",
}

type pageData struct {
	Title     string
	Accent    string
	Name      string
	OrderID   int64
	Status    string
	Detail    string
	Total     string
	Address   string
	OrdersURL string
}

// Notifier renders customer notifications and hands them to a Mailer
type Notifier struct {
	mailer      Mailer
	frontendURL string
	logger      *zap.Logger
	pages       map[string]*template.Template
}

// NewNotifier parses the embedded templates
func NewNotifier(mailer Mailer, frontendURL string, zapLogger *zap.Logger) (*Notifier, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"order_status", "account_activated", "account_deactivated"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Notifier{
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      zapLogger,
		pages:       pages,
	}, nil
}

func (n *Notifier) render(page string, data pageData) (string, error) {
	var buf bytes.Buffer
	if err := n.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", page, err)
	}
	return buf.String(), nil
}

// NotifyOrderStatus tells the customer their order moved to a new status
func (n *Notifier) NotifyOrderStatus(ctx context.Context, order *trade.Order) error {
	if order.CustomerEmail == "" {
		return fmt.Errorf("order %d has no customer email", order.ID)
	}
	status := titleCase(order.Status.String())
	data := pageData{
		Title:   "Order " + status,
		Accent:  "#1976d2",
		Name:    order.CustomerName,
		OrderID: order.ID,
		Status:  status,
		Detail:  statusDetails[order.Status],
		Total:   order.TotalAmount.StringFixed(2),
		Address: order.ShippingAddress,
	}
	if n.frontendURL != "" {
		data.OrdersURL = n.frontendURL + "/orders"
	}
	html, err := n.render("order_status", data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Order #%d %s - Buneko Blooms", order.ID, status),
		HTML:    html,
		Text: fmt.Sprintf("Dear %s,\n\nThe status of your order #%d has changed to %s.\n%s\n\nBuneko Blooms Team",
			order.CustomerName, order.ID, status, data.Detail),
	})
}

// NotifyAccountStatus tells a user their account was activated or deactivated
func (n *Notifier) NotifyAccountStatus(ctx context.Context, user *identity.User, active bool) error {
	page, title, accent := "account_deactivated", "Account Deactivated", "#d32f2f"
	if active {
		page, title, accent = "account_activated", "Account Reactivated", "#2e7d32"
	}
	html, err := n.render(page, pageData{Title: title, Accent: accent, Name: user.Name})
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{
		To:      user.Email,
		Subject: title + " - Buneko Blooms",
		HTML:    html,
		Text:    fmt.Sprintf("Dear %s,\n\n%s.\n\nBuneko Blooms Team", user.Name, title),
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
