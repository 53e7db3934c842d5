package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/item-validation/internal/persistence"
	"github.com/example/item-validation/internal/validation"
)

// ItemRepository captures the persistence operations needed by the service.
type ItemRepository interface {
	FindAll(ctx context.Context) ([]Item, error)
	FindByID(ctx context.Context, id int64) (Item, error)
	Save(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
}

// SubmissionState tracks where a form submission is in its lifecycle.
type SubmissionState int

const (
	SubmissionInit SubmissionState = iota
	SubmissionValidating
	SubmissionInvalid
	SubmissionPersisting
	SubmissionDone
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionInit:
		return "init"
	case SubmissionValidating:
		return "validating"
	case SubmissionInvalid:
		return "invalid"
	case SubmissionPersisting:
		return "persisting"
	case SubmissionDone:
		return "done"
	}
	return fmt.Sprintf("SubmissionState(%d)", int(s))
}

var submissionTransitions = map[SubmissionState][]SubmissionState{
	SubmissionInit:       {SubmissionValidating},
	SubmissionValidating: {SubmissionInvalid, SubmissionPersisting},
	SubmissionPersisting: {SubmissionDone},
}

// Submission is one attempt to add or edit an item. Invalid and Done are
// terminal; a new attempt starts from a new Submission.
type Submission struct {
	Form     ItemForm
	Failures *validation.FailureSet
	// Item is the stored item once the submission is Done.
	Item  Item
	state SubmissionState
	trail []SubmissionState
}

// NewSubmission starts a submission for form. failures may carry binding
// failures recorded while decoding the request; nil starts an empty set.
func NewSubmission(form ItemForm, failures *validation.FailureSet) *Submission {
	if failures == nil {
		failures = validation.NewFailureSet(form, ItemObjectName)
	}
	return &Submission{
		Form:     form,
		Failures: failures,
		state:    SubmissionInit,
		trail:    []SubmissionState{SubmissionInit},
	}
}

// State returns the current state.
func (s *Submission) State() SubmissionState { return s.state }

// Trail returns every state the submission passed through, in order.
func (s *Submission) Trail() []SubmissionState {
	out := make([]SubmissionState, len(s.trail))
	copy(out, s.trail)
	return out
}

func (s *Submission) advance(to SubmissionState) error {
	for _, next := range submissionTransitions[s.state] {
		if next == to {
			s.state = to
			s.trail = append(s.trail, to)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
}

// ItemService orchestrates validation and persistence for items.
type ItemService struct {
	items     ItemRepository
	validator validation.Validator[ItemForm]
	now       func() time.Time
	logger    *slog.Logger
}

// NewItemService constructs an item service with the provided dependencies.
func NewItemService(items ItemRepository, now func() time.Time) *ItemService {
	return NewItemServiceWithLogger(items, nil, now, nil)
}

// NewItemServiceWithLogger constructs an item service with a specified
// validator and logger. A nil validator uses NewItemValidator.
func NewItemServiceWithLogger(items ItemRepository, validator validation.Validator[ItemForm], now func() time.Time, logger *slog.Logger) *ItemService {
	if validator == nil {
		validator = NewItemValidator()
	}
	if now == nil {
		now = time.Now
	}
	return &ItemService{items: items, validator: validator, now: now, logger: defaultLogger(logger)}
}

func (s *ItemService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ItemService", operation, attrs...)
}

// ListItems returns every item in storage order.
func (s *ItemService) ListItems(ctx context.Context) (items []Item, err error) {
	if s == nil {
		err = fmt.Errorf("ItemService is nil")
		return
	}
	if s.items == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListItems")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list items", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(items)).DebugContext(ctx, "items listed")
	}()

	items, err = s.items.FindAll(ctx)
	if err != nil {
		err = mapItemRepoError(err)
	}
	return
}

// GetItem returns the item with id or ErrNotFound.
func (s *ItemService) GetItem(ctx context.Context, id int64) (item Item, err error) {
	if s == nil {
		err = fmt.Errorf("ItemService is nil")
		return
	}
	if s.items == nil {
		err = fmt.Errorf("item repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetItem", "item_id", id)
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			logger.ErrorContext(ctx, "failed to load item", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	item, err = s.items.FindByID(ctx, id)
	if err != nil {
		err = mapItemRepoError(err)
	}
	return
}

// Add validates sub and stores a new item when it has no failures. An
// invalid submission is not an error; inspect sub.State and sub.Failures.
func (s *ItemService) Add(ctx context.Context, sub *Submission) (err error) {
	if s == nil {
		return fmt.Errorf("ItemService is nil")
	}
	if s.items == nil {
		return fmt.Errorf("item repository not configured")
	}

	logger := s.loggerWith(ctx, "Add")
	defer func() {
		s.logOutcome(ctx, logger, sub, err)
	}()

	if err = s.validate(sub); err != nil || sub.State() == SubmissionInvalid {
		return
	}

	now := s.now()
	item := Item{
		ItemName:  stringValue(sub.Form.ItemName),
		Price:     cloneInt(sub.Form.Price),
		Quantity:  cloneInt(sub.Form.Quantity),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var saved Item
	saved, err = s.items.Save(ctx, item)
	if err != nil {
		err = mapItemRepoError(err)
		return
	}

	sub.Item = saved
	err = sub.advance(SubmissionDone)
	return
}

// Edit validates sub and overwrites the item with id when it has no
// failures. It returns ErrNotFound when the item does not exist.
func (s *ItemService) Edit(ctx context.Context, id int64, sub *Submission) (err error) {
	if s == nil {
		return fmt.Errorf("ItemService is nil")
	}
	if s.items == nil {
		return fmt.Errorf("item repository not configured")
	}

	logger := s.loggerWith(ctx, "Edit", "item_id", id)
	defer func() {
		s.logOutcome(ctx, logger, sub, err)
	}()

	var existing Item
	existing, err = s.items.FindByID(ctx, id)
	if err != nil {
		err = mapItemRepoError(err)
		return
	}

	if err = s.validate(sub); err != nil || sub.State() == SubmissionInvalid {
		return
	}

	updated := existing
	updated.ItemName = stringValue(sub.Form.ItemName)
	updated.Price = cloneInt(sub.Form.Price)
	updated.Quantity = cloneInt(sub.Form.Quantity)
	updated.UpdatedAt = s.now()

	if err = s.items.Update(ctx, id, updated); err != nil {
		err = mapItemRepoError(err)
		return
	}

	sub.Item = updated
	err = sub.advance(SubmissionDone)
	return
}

// Seed stores items when the repository is empty and returns how many were
// stored. Every item passes through Add.
func (s *ItemService) Seed(ctx context.Context, forms ...ItemForm) (int, error) {
	existing, err := s.ListItems(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	stored := 0
	for _, form := range forms {
		sub := NewSubmission(form, nil)
		if err := s.Add(ctx, sub); err != nil {
			return stored, err
		}
		if sub.State() != SubmissionDone {
			return stored, fmt.Errorf("seed item %q rejected: %w", stringValue(form.ItemName), sub.Failures)
		}
		stored++
	}
	return stored, nil
}

// validate moves sub through Validating to Invalid or Persisting.
func (s *ItemService) validate(sub *Submission) error {
	if sub == nil {
		return fmt.Errorf("submission is nil")
	}
	if err := sub.advance(SubmissionValidating); err != nil {
		return err
	}

	s.validator.ValidateInto(sub.Form, sub.Failures)

	if sub.Failures.HasFailures() {
		return sub.advance(SubmissionInvalid)
	}
	return sub.advance(SubmissionPersisting)
}

func (s *ItemService) logOutcome(ctx context.Context, logger *slog.Logger, sub *Submission, err error) {
	if err != nil {
		logger.ErrorContext(ctx, "item submission failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	switch sub.State() {
	case SubmissionInvalid:
		logger.InfoContext(ctx, "item submission rejected", "failures", sub.Failures)
	case SubmissionDone:
		logger.With("item_id", sub.Item.ID).InfoContext(ctx, "item saved")
	}
}

func mapItemRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}
