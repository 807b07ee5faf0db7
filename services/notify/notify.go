// Package notify mails the per-category outcome of a run.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"argosync/lib/timezone"
	"argosync/services/sync"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/notify")

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// SendRunReport mails the reports. An unset password sends without
// AUTH, some school relays only accept ip-allowlisted plain smtp.
func SendRunReport(ctx context.Context, config SmtpConfig, reports []sync.Report) error {
	_, span := tracer.Start(ctx, "notify:SendRunReport")
	defer span.End()

	e := email.NewEmail()
	e.From = config.EmailAddress
	e.To = config.To
	e.Subject = fmt.Sprintf("argosync: run del %s", timezone.Now().Format("02/01/2006 15:04"))
	e.Text = []byte(FormatRunReport(reports, timezone.Now()))

	addr := fmt.Sprintf("%s:%d", config.Server, config.Port)
	var auth smtp.Auth
	if config.Password != "" {
		auth = smtp.PlainAuth("", config.EmailAddress, config.Password, config.Server)
	}

	err := e.Send(addr, auth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report mail")
		return fmt.Errorf("failed to send report mail: %w", err)
	}
	return nil
}

// FormatRunReport renders the plain text body.
func FormatRunReport(reports []sync.Report, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sincronizzazione del %s\n\n", at.Format("02/01/2006 15:04"))

	var failed int
	for _, report := range reports {
		fmt.Fprintf(&b, "%-12s creati %3d, saltati %3d, falliti %3d\n",
			report.Category, report.Created, report.Skipped, report.Failed)
		failed += report.Failed
	}

	if failed > 0 {
		fmt.Fprintf(&b, "\nATTENZIONE: %d record non sono stati scritti.\n", failed)
	}
	return b.String()
}
