package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/factoryvision/internal/dashboard"
	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

func buildDashboardURL(sel domain.Selection) templ.SafeURL {
	if !sel.Active() {
		return templ.SafeURL("/")
	}
	return templ.SafeURL("/?focus=" + url.QueryEscape(sel.String()))
}

func buildFragmentURL(sel domain.Selection) string {
	if !sel.Active() {
		return "/fragments/dashboard"
	}
	return "/fragments/dashboard?focus=" + url.QueryEscape(sel.String())
}

func buildRefreshURL(sel domain.Selection) string {
	if !sel.Active() {
		return "/api/refresh"
	}
	return "/api/refresh?focus=" + url.QueryEscape(sel.String())
}

func accentClass(prefix string, a dashboard.Accent) string {
	return prefix + "-" + string(a)
}

func formatWidth(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + "%"
}

func pollTrigger(seconds float64) string {
	return fmt.Sprintf("every %ss", strconv.FormatFloat(seconds, 'f', -1, 64))
}
