package http

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/item-validation/internal/application"
	"github.com/example/item-validation/internal/validation"
)

// BasePath is the prefix shared by every item page.
const BasePath = "/validation/v2/items"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// messageSource renders catalog codes and validation failures for a locale.
type messageSource interface {
	Message(f validation.Failure, locale string) string
	Text(code, locale string, args ...any) string
	DefaultLocale() string
}

// page carries what every template needs: the locale and a way to look up labels.
type page struct {
	Locale   string
	Title    string
	BasePath string
	messages messageSource
}

// T renders code in the page locale.
func (p page) T(code string, args ...any) string {
	if p.messages == nil {
		return code
	}
	return p.messages.Text(code, p.Locale, args...)
}

// Message renders a failure, falling back to its default message and then to
// its most specific code when no message source is configured.
func (p page) Message(f validation.Failure) string {
	if p.messages != nil {
		return p.messages.Message(f, p.Locale)
	}
	if msg := f.DefaultMessage(); msg != "" {
		return msg
	}
	if codes := f.Codes(); len(codes) > 0 {
		return codes[0]
	}
	return f.Error()
}

type itemRow struct {
	ID       int64
	ItemName string
	Price    string
	Quantity string
}

func newItemRow(item application.Item) itemRow {
	return itemRow{
		ID:       item.ID,
		ItemName: item.ItemName,
		Price:    optionalInt(item.Price),
		Quantity: optionalInt(item.Quantity),
	}
}

type itemsView struct {
	page
	Items []itemRow
}

type itemView struct {
	page
	Item  itemRow
	Saved bool
}

type formField struct {
	Name   string
	Label  string
	Value  string
	Errors []string
}

type formView struct {
	page
	Action       string
	Cancel       string
	Editing      bool
	ItemID       int64
	Fields       []formField
	GlobalErrors []string
}

type errorView struct {
	page
	Message string
}

// newFormView lays out the item fields with the values and messages held by
// failures. Field values come from the rejected input when a field failed.
func newFormView(p page, failures *validation.FailureSet) formView {
	view := formView{page: p}

	for _, name := range itemFields {
		field := formField{
			Name:  name,
			Label: "label." + application.ItemObjectName + "." + name,
		}
		if failures != nil {
			field.Value = displayValue(failures.FieldValue(name))
			for _, f := range failures.FailuresFor(name) {
				field.Errors = append(field.Errors, p.Message(f))
			}
		}
		view.Fields = append(view.Fields, field)
	}

	if failures != nil {
		for _, f := range failures.ObjectFailures() {
			view.GlobalErrors = append(view.GlobalErrors, p.Message(f))
		}
	}
	return view
}

type renderer struct {
	templates *template.Template
	messages  messageSource
	logger    *slog.Logger
}

func newRenderer(messages messageSource, logger *slog.Logger) renderer {
	return renderer{templates: pageTemplates, messages: messages, logger: defaultLogger(logger)}
}

func (r renderer) page(ctx context.Context, title string) page {
	locale, ok := LocaleFromContext(ctx)
	if !ok && r.messages != nil {
		locale = r.messages.DefaultLocale()
	}
	return page{Locale: locale, Title: title, BasePath: BasePath, messages: r.messages}
}

// render executes the named template into a buffer first so a template error
// still produces a clean 500.
func (r renderer) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		handlerLogger(ctx, r.logger, "renderer", "render", "template", name).ErrorContext(ctx, "failed to render template", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		handlerLogger(ctx, r.logger, "renderer", "render", "template", name).WarnContext(ctx, "failed to write response", "error", err)
	}
}

// renderError writes the error page for status.
func (r renderer) renderError(ctx context.Context, w http.ResponseWriter, status int) {
	r.render(ctx, w, status, "error", errorView{
		page:    r.page(ctx, "page.errorTitle"),
		Message: statusMessageCode(status),
	})
}

func statusMessageCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "page.notFound"
	case http.StatusBadRequest:
		return "page.badRequest"
	default:
		return "page.error"
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
