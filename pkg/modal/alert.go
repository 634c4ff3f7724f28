package modal

import (
	"strconv"
	"strings"
	"time"
)

// Severity selects an alert's styling.
type Severity int

const (
	SeverityError        Severity = 1
	SeverityNotification Severity = 2
	SeveritySuccess      Severity = 3
)

// AlertDelay is how long an alert stays before it fades out.
const AlertDelay = 7500 * time.Millisecond

var severityNames = map[string]Severity{
	"error":        SeverityError,
	"notification": SeverityNotification,
	"notice":       SeverityNotification,
	"success":      SeveritySuccess,
}

// ParseSeverity accepts a Severity, its numeric code or its name. Anything
// else is a success.
func ParseSeverity(v any) Severity {
	var s Severity
	switch x := v.(type) {
	case Severity:
		s = x
	case int:
		s = Severity(x)
	case float64:
		s = Severity(int(x))
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			s = Severity(n)
		} else {
			s = severityNames[strings.ToLower(strings.TrimSpace(x))]
		}
	}
	if s < SeverityError || s > SeveritySuccess {
		return SeveritySuccess
	}
	return s
}

// Class returns the ribbon class for the severity.
func (s Severity) Class() string {
	switch s {
	case SeverityError:
		return "alert-error"
	case SeverityNotification:
		return "alert-notification"
	default:
		return "alert-success"
	}
}

func (s Severity) String() string {
	return strings.TrimPrefix(s.Class(), "alert-")
}

var alertClasses = []string{"alert-error", "alert-notification", "alert-success"}

// AlertMessage shows msg in the ribbon above the content. After AlertDelay
// it fades out and clears, unless a newer alert replaced it.
func (d *Dialog) AlertMessage(msg string, sev Severity) *Dialog {
	if d.root == nil {
		return d
	}
	ribbon := d.root.First(".modal-alert")
	if ribbon == nil {
		return d
	}
	sev = ParseSeverity(sev)
	ribbon.RemoveClass(alertClasses...).AddClass(sev.Class())
	ribbon.Text = msg
	d.doc.StopFade(ribbon)
	ribbon.Hidden = false

	d.alertGen++
	gen := d.alertGen
	d.doc.Loop().AfterFunc(AlertDelay, func() {
		if gen != d.alertGen {
			return
		}
		d.doc.FadeOut(ribbon, d.opts.Speed, func() {
			ribbon.Text = ""
			ribbon.RemoveClass(alertClasses...)
		})
	})
	return d
}
