package studio

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/pkg/validator"
)

// Input is the admin-editable part of a studio.
type Input struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Location    string          `json:"location" validate:"required,max=500"`
	HourlyPrice decimal.Decimal `json:"hourly_price"`
	Status      Status          `json:"status" validate:"required,oneof=active inactive maintenance"`
	Description string          `json:"description" validate:"max=1000"`
	Equipment   string          `json:"equipment" validate:"max=1000"`
	Capacity    int             `json:"capacity" validate:"required,min=1,max=50"`
}

// ValidationError carries per-field failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (in *Input) validate() error {
	fields := validator.Validate(in)
	if in.HourlyPrice.IsNegative() || in.HourlyPrice.GreaterThan(MaxHourlyPrice) {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["hourly_price"] = "range=0..9999.99"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo    *Repository
	tx      transactor
	loggerf func(format string, args ...interface{})
}

func NewService(repo *Repository, tx transactor, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, tx: tx, loggerf: loggerf}
}

func (s *Service) Create(ctx context.Context, actor access.Actor, in Input) (*Studio, error) {
	if !access.CanManage(actor) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	st := &Studio{}
	in.applyTo(st)
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create studio: %w", err)
	}

	s.loggerf("level=info msg=studio created studio_id=%d admin_id=%d", st.ID, actor.UserID)
	return st, nil
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id int64, in Input) (*Studio, error) {
	if !access.CanManage(actor) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var st *Studio
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		st, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		in.applyTo(st)
		return s.repo.Save(ctx, st)
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=studio updated studio_id=%d admin_id=%d status=%s", st.ID, actor.UserID, st.Status)
	return st, nil
}

// Delete refuses while any booking of the studio is neither cancelled nor completed.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if !access.CanManage(actor) {
		return ErrForbidden
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.loggerf("level=info msg=studio deleted studio_id=%d admin_id=%d", id, actor.UserID)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Studio, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Studio, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 12
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (in *Input) applyTo(st *Studio) {
	st.Name = in.Name
	st.Location = in.Location
	st.HourlyPrice = in.HourlyPrice.Round(2)
	st.Status = in.Status
	st.Description = in.Description
	st.Equipment = in.Equipment
	st.Capacity = in.Capacity
}
