package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/item-validation/internal/application"
)

type itemService interface {
	ListItems(ctx context.Context) ([]application.Item, error)
	GetItem(ctx context.Context, id int64) (application.Item, error)
	Add(ctx context.Context, sub *application.Submission) error
	Edit(ctx context.Context, id int64, sub *application.Submission) error
}

// ItemHandler serves the item pages: list, detail, add and edit.
type ItemHandler struct {
	service  itemService
	renderer renderer
	logger   *slog.Logger
}

func NewItemHandler(service itemService, messages messageSource, logger *slog.Logger) *ItemHandler {
	base := defaultLogger(logger)
	return &ItemHandler{service: service, renderer: newRenderer(messages, base), logger: base}
}

func (h *ItemHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ItemHandler", operation, attrs...)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	items, err := h.service.ListItems(ctx)
	if err != nil {
		h.log(ctx, "List", "error_kind", application.ErrorKind(err)).ErrorContext(ctx, "failed to list items", "error", err)
		h.renderer.renderError(ctx, w, http.StatusInternalServerError)
		return
	}

	view := itemsView{page: h.renderer.page(ctx, "page.items"), Items: make([]itemRow, 0, len(items))}
	for _, item := range items {
		view.Items = append(view.Items, newItemRow(item))
	}
	h.renderer.render(ctx, w, http.StatusOK, "items", view)
}

func (h *ItemHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	item, ok := h.loadItem(ctx, w, r, "Detail")
	if !ok {
		return
	}

	h.renderer.render(ctx, w, http.StatusOK, "item", itemView{
		page:  h.renderer.page(ctx, "page.item"),
		Item:  newItemRow(item),
		Saved: r.URL.Query().Get("status") == "true",
	})
}

func (h *ItemHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := newFormView(h.renderer.page(ctx, "page.addItem"), nil)
	view.Action = BasePath + "/add"
	view.Cancel = BasePath
	h.renderer.render(ctx, w, http.StatusOK, "form", view)
}

func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	form, failures, err := bindItemForm(r)
	if err != nil {
		h.log(ctx, "Add", "error_kind", "bad_request").WarnContext(ctx, "failed to parse item form", "error", err)
		h.renderer.renderError(ctx, w, http.StatusBadRequest)
		return
	}

	sub := application.NewSubmission(form, failures)
	if err := h.service.Add(ctx, sub); err != nil {
		h.log(ctx, "Add", "error_kind", application.ErrorKind(err)).ErrorContext(ctx, "failed to add item", "error", err)
		h.renderer.renderError(ctx, w, http.StatusInternalServerError)
		return
	}

	if sub.State() == application.SubmissionInvalid {
		view := newFormView(h.renderer.page(ctx, "page.addItem"), sub.Failures)
		view.Action = BasePath + "/add"
		view.Cancel = BasePath
		h.renderer.render(ctx, w, http.StatusOK, "form", view)
		return
	}

	h.log(ctx, "Add", "item_id", sub.Item.ID).InfoContext(ctx, "item added")
	http.Redirect(w, r, fmt.Sprintf("%s/%d?status=true", BasePath, sub.Item.ID), http.StatusFound)
}

func (h *ItemHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	item, ok := h.loadItem(ctx, w, r, "EditForm")
	if !ok {
		return
	}

	sub := application.NewSubmission(application.FormFromItem(item), nil)
	h.renderer.render(ctx, w, http.StatusOK, "form", h.editView(ctx, item.ID, sub))
}

func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	id, err := parseItemID(r)
	if err != nil {
		h.log(ctx, "Edit", "error_kind", "bad_request").WarnContext(ctx, "invalid item id", "error", err)
		h.renderer.renderError(ctx, w, http.StatusBadRequest)
		return
	}

	form, failures, err := bindItemForm(r)
	if err != nil {
		h.log(ctx, "Edit", "item_id", id, "error_kind", "bad_request").WarnContext(ctx, "failed to parse item form", "error", err)
		h.renderer.renderError(ctx, w, http.StatusBadRequest)
		return
	}

	sub := application.NewSubmission(form, failures)
	if err := h.service.Edit(ctx, id, sub); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			h.renderer.renderError(ctx, w, http.StatusNotFound)
			return
		}
		h.log(ctx, "Edit", "item_id", id, "error_kind", application.ErrorKind(err)).ErrorContext(ctx, "failed to edit item", "error", err)
		h.renderer.renderError(ctx, w, http.StatusInternalServerError)
		return
	}

	if sub.State() == application.SubmissionInvalid {
		h.renderer.render(ctx, w, http.StatusOK, "form", h.editView(ctx, id, sub))
		return
	}

	h.log(ctx, "Edit", "item_id", id).InfoContext(ctx, "item updated")
	http.Redirect(w, r, fmt.Sprintf("%s/%d", BasePath, id), http.StatusFound)
}

func (h *ItemHandler) editView(ctx context.Context, id int64, sub *application.Submission) formView {
	view := newFormView(h.renderer.page(ctx, "page.updateItem"), sub.Failures)
	view.Action = fmt.Sprintf("%s/%d/edit", BasePath, id)
	view.Cancel = fmt.Sprintf("%s/%d", BasePath, id)
	view.Editing = true
	view.ItemID = id
	return view
}

// loadItem resolves the {itemId} path value and fetches the item, writing the
// 400, 404 or 500 page itself when that fails.
func (h *ItemHandler) loadItem(ctx context.Context, w http.ResponseWriter, r *http.Request, operation string) (application.Item, bool) {
	id, err := parseItemID(r)
	if err != nil {
		h.log(ctx, operation, "error_kind", "bad_request").WarnContext(ctx, "invalid item id", "error", err)
		h.renderer.renderError(ctx, w, http.StatusBadRequest)
		return application.Item{}, false
	}

	item, err := h.service.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			h.renderer.renderError(ctx, w, http.StatusNotFound)
			return application.Item{}, false
		}
		h.log(ctx, operation, "item_id", id, "error_kind", application.ErrorKind(err)).ErrorContext(ctx, "failed to load item", "error", err)
		h.renderer.renderError(ctx, w, http.StatusInternalServerError)
		return application.Item{}, false
	}
	return item, true
}

func parseItemID(r *http.Request) (int64, error) {
	raw := r.PathValue("itemId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q: %w", raw, err)
	}
	return id, nil
}
