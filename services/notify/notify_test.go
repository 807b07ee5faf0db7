package notify

import (
	"testing"
	"time"

	"argosync/services/sync"

	"github.com/stretchr/testify/require"
)

func TestFormatRunReport(t *testing.T) {
	at := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	body := FormatRunReport([]sync.Report{
		{Category: "voti", Created: 2, Skipped: 10},
		{Category: "promemoria", Created: 1, Skipped: 3, Failed: 1},
	}, at)

	require.Contains(t, body, "Sincronizzazione del 02/03/2026")
	require.Contains(t, body, "voti")
	require.Contains(t, body, "promemoria")
	require.Contains(t, body, "ATTENZIONE: 1 record")
}

func TestFormatRunReportWithoutFailures(t *testing.T) {
	body := FormatRunReport([]sync.Report{
		{Category: "voti", Created: 1},
	}, time.Now())
	require.NotContains(t, body, "ATTENZIONE")
}

func TestSmtpConfigEnabled(t *testing.T) {
	require.False(t, SmtpConfig{}.Enabled())
	require.False(t, SmtpConfig{Server: "smtp.example.com"}.Enabled())
	require.True(t, SmtpConfig{Server: "smtp.example.com", To: []string{"a@example.com"}}.Enabled())
}
