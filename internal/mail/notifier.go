package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"majaz-portal/internal/domain"
	"majaz-portal/internal/i18n"
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; background: #f7f5f0; padding: 24px;">
<table role="presentation" width="100%" style="max-width: 600px; margin: 0 auto; background: #ffffff; padding: 32px;">
<tr><td>
<h1 style="font-size: 20px; letter-spacing: 4px; color: #b08d57;">MAJAZ</h1>
<p>{{.Greeting}}</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .ActionURL}}<p><a href="{{.ActionURL}}" style="color: #b08d57;">{{.ActionURL}}</a></p>
{{end}}<p>{{.Signoff}}</p>
</td></tr>
</table>
</body>
</html>
`))

type view struct {
	Lang       string
	Dir        string
	Greeting   string
	Paragraphs []string
	ActionURL  string
	Signoff    string
}

type ContactForm struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Locale  i18n.Locale
}

// Notifier renders and sends the customer-facing emails in the customer's locale.
type Notifier struct {
	sender       Sender
	opsAddress   string
	dashboardURL string
	logger       *zap.Logger
}

func NewNotifier(sender Sender, config *Config, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:       sender,
		opsAddress:   config.OpsAddress,
		dashboardURL: strings.TrimRight(config.DashboardURL, "/"),
		logger:       logger,
	}
}

func (n *Notifier) PaymentSucceeded(ctx context.Context, req *domain.Request, amount int64, currency string) error {
	l := i18n.Parse(req.Locale)
	body := []string{
		i18n.T(l, i18n.KeyPaymentSucceededBody, i18n.FormatAmount(l, amount, currency), req.ID),
		i18n.T(l, i18n.KeyVehicleLine, vehicle(req)),
		i18n.T(l, i18n.KeyTierLine, i18n.T(l, i18n.TierNameKey(string(req.Tier)))),
	}

	return n.send(ctx, l, req.CustomerEmail, i18n.T(l, i18n.KeyPaymentSucceededSubject), req.CustomerName, body, n.requestURL(l, req))
}

func (n *Notifier) PaymentFailed(ctx context.Context, req *domain.Request, reason string) error {
	l := i18n.Parse(req.Locale)
	body := []string{
		i18n.T(l, i18n.KeyPaymentFailedBody, req.ID, reason),
		i18n.T(l, i18n.KeyVehicleLine, vehicle(req)),
	}

	return n.send(ctx, l, req.CustomerEmail, i18n.T(l, i18n.KeyPaymentFailedSubject), req.CustomerName, body, n.requestURL(l, req))
}

func (n *Notifier) RefundIssued(ctx context.Context, req *domain.Request, amount int64, currency string) error {
	l := i18n.Parse(req.Locale)
	body := []string{
		i18n.T(l, i18n.KeyRefundBody, i18n.FormatAmount(l, amount, currency), req.ID),
	}

	return n.send(ctx, l, req.CustomerEmail, i18n.T(l, i18n.KeyRefundSubject), req.CustomerName, body, "")
}

// ContactReceived forwards the enquiry to operations and acknowledges the sender.
func (n *Notifier) ContactReceived(ctx context.Context, form ContactForm) error {
	opsBody := []string{
		fmt.Sprintf("%s <%s> %s", form.Name, form.Email, form.Phone),
		form.Subject,
		form.Message,
	}
	opsHTML, err := render(i18n.English, "Operations,", opsBody, "", i18n.T(i18n.English, i18n.KeySignoff))
	if err != nil {
		return err
	}

	err = n.sender.Send(ctx, Message{
		To:      n.opsAddress,
		ReplyTo: form.Email,
		Subject: i18n.T(i18n.English, i18n.KeyContactOpsSubject, form.Name),
		HTML:    opsHTML,
	})
	if err != nil {
		return err
	}

	l := form.Locale
	return n.send(ctx, l, form.Email, i18n.T(l, i18n.KeyContactAckSubject), form.Name, []string{i18n.T(l, i18n.KeyContactAckBody)}, "")
}

func (n *Notifier) send(ctx context.Context, l i18n.Locale, to, subject, name string, body []string, actionURL string) error {
	html, err := render(l, i18n.T(l, i18n.KeyGreeting, name), body, actionURL, i18n.T(l, i18n.KeySignoff))
	if err != nil {
		return err
	}

	err = n.sender.Send(ctx, Message{To: to, Subject: subject, HTML: html})
	if err != nil {
		return err
	}

	n.logger.Info("sent email", zap.String("to", to), zap.String("subject", subject), zap.String("locale", l.String()))
	return nil
}

func (n *Notifier) requestURL(l i18n.Locale, req *domain.Request) string {
	return fmt.Sprintf("%s/%s/dashboard/requests/%s", n.dashboardURL, l, req.ID)
}

func render(l i18n.Locale, greeting string, body []string, actionURL, signoff string) (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, view{
		Lang:       l.String(),
		Dir:        l.Dir(),
		Greeting:   greeting,
		Paragraphs: body,
		ActionURL:  actionURL,
		Signoff:    signoff,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func vehicle(req *domain.Request) string {
	return strings.TrimSpace(fmt.Sprintf("%d %s %s", req.VehicleYear, req.VehicleMake, req.VehicleModel))
}
