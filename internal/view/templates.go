package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"MiniShop/internal/auth"
	"MiniShop/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	printer   *message.Printer
	unit      currency.Unit
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	User        *auth.Claims
	CurrentPath string
	Data        any
}

type EngineOption func(*Engine)

// WithLocale sets the language used to format numbers and the currency of
// displayed prices.
func WithLocale(tag language.Tag, unit currency.Unit) EngineOption {
	return func(e *Engine) {
		e.printer = message.NewPrinter(tag)
		e.unit = unit
	}
}

// NewEngine parses the embedded templates.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		printer: message.NewPrinter(language.AmericanEnglish),
		unit:    currency.USD,
	}
	for _, o := range opts {
		o(e)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"formatPrice": e.formatPrice,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	e.templates = tpl
	return e, nil
}

func (e *Engine) formatPrice(d decimal.Decimal) string {
	return e.printer.Sprint(currency.Symbol(e.unit.Amount(d.InexactFloat64())))
}

// Render executes a named template into a buffer and writes it with status,
// so a failing template never leaves a half-written page behind.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
