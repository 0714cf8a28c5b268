package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-ledger/core/ledger"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidQuery is returned for queries that fail validation.
var ErrInvalidQuery = errors.New("invalid ledger query")

// Params are the ledger query parameters as received. List parameters are
// comma-separated.
type Params struct {
	Shop       string `query:"shop" validate:"required"`
	From       string `query:"from" validate:"required,datetime=2006-01-02"`
	To         string `query:"to" validate:"required,datetime=2006-01-02"`
	Locations  string `query:"locations"`
	Items      string `query:"items"`
	Activities string `query:"activities"`
	Sort       string `query:"sort" validate:"omitempty,oneof=asc desc"`
	Page       int    `query:"page" validate:"gte=0"`
}

// QueryError carries the fields that failed validation.
type QueryError struct {
	Fields map[string]string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", ErrInvalidQuery, e.Reason)
	}
	return fmt.Sprintf("%s: %v", ErrInvalidQuery, e.Fields)
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// Service answers ledger queries.
type Service struct {
	store    ledger.Store
	pageSize int
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates the ledger read service. pageSize is fixed for every query.
func NewService(store ledger.Store, pageSize int, logger *zap.Logger) *Service {
	if pageSize <= 0 {
		pageSize = ledger.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, pageSize: pageSize, validate: validator.New(), logger: logger}
}

// Query validates params and returns one page of entries.
func (s *Service) Query(ctx context.Context, p Params) (*ledger.Page, error) {
	filter, err := s.Filter(p)
	if err != nil {
		return nil, err
	}
	return s.store.Query(ctx, filter)
}

// Filter converts params into a store filter. Identifiers may be numeric or full
// resource paths; both encodings are matched.
func (s *Service) Filter(p Params) (ledger.Filter, error) {
	if err := s.validate.Struct(p); err != nil {
		return ledger.Filter{}, &QueryError{Fields: utils.ValidationErrors(err)}
	}
	if p.From > p.To {
		return ledger.Filter{}, &QueryError{Reason: "from is after to"}
	}

	filter := ledger.Filter{
		Shop:     p.Shop,
		From:     p.From,
		To:       p.To,
		Sort:     ledger.SortAsc,
		Page:     p.Page,
		PageSize: s.pageSize,
	}
	if p.Sort == string(ledger.SortDesc) {
		filter.Sort = ledger.SortDesc
	}

	var err error
	if filter.LocationIDs, err = idFilter(reconcile.KindLocation, p.Locations); err != nil {
		return ledger.Filter{}, &QueryError{Reason: err.Error()}
	}
	if filter.ItemIDs, err = idFilter(reconcile.KindInventoryItem, p.Items); err != nil {
		return ledger.Filter{}, &QueryError{Reason: err.Error()}
	}
	for _, a := range splitList(p.Activities) {
		activity := ledger.Activity(a)
		if !activity.Valid() {
			return ledger.Filter{}, &QueryError{Reason: fmt.Sprintf("unknown activity %q", a)}
		}
		filter.Activities = append(filter.Activities, activity)
	}
	return filter, nil
}

func idFilter(kind, list string) ([]string, error) {
	var ids []string
	for _, raw := range splitList(list) {
		canonical, err := reconcile.Canonical(kind, raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, reconcile.IDForms(canonical)...)
	}
	return ids, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
