package supplier

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/internal/core/common/validation"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Supplier, error)
	Get(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, dto CreateSupplierDTO) (*Supplier, error)
	Update(ctx context.Context, id int64, dto UpdateSupplierDTO) (*Supplier, error)
}

type RepositoryAPI interface {
	List(ctx context.Context, status Status) ([]*Supplier, error)
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: recorder, logger: logger}
}

// List returns every supplier to catalog writers and only active ones to
// everybody else.
func (s *Service) List(ctx context.Context) ([]*Supplier, error) {
	var status Status
	if !canSeeAll(ctx) {
		status = StatusActive
	}
	suppliers, err := s.repo.List(ctx, status)
	if err != nil {
		s.logger.Error("failed to list suppliers", "error", err)
		return nil, internal.NewInternalError("failed to list suppliers", err)
	}
	return suppliers, nil
}

// Get hides non-active suppliers from readers who can not see them in List.
func (s *Service) Get(ctx context.Context, id int64) (*Supplier, error) {
	sup, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sup.IsActive() && !canSeeAll(ctx) {
		return nil, ErrSupplierNotFound
	}
	return sup, nil
}

func (s *Service) Create(ctx context.Context, dto CreateSupplierDTO) (*Supplier, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	sup := &Supplier{
		CompanyName:   strings.TrimSpace(dto.CompanyName),
		ContactPerson: dto.ContactPerson,
		Email:         strings.ToLower(strings.TrimSpace(dto.Email)),
		Phone:         dto.Phone,
		Address:       dto.Address.toAddress(),
		PaymentTerms:  TermsNet30,
		Status:        StatusActive,
	}
	if dto.PaymentTerms != "" {
		sup.PaymentTerms = PaymentTerms(dto.PaymentTerms)
	}
	if dto.Status != "" {
		sup.Status = Status(dto.Status)
	}

	if err := s.repo.Create(ctx, sup); err != nil {
		s.logger.Error("failed to create supplier", "error", err)
		return nil, internal.NewInternalError("failed to create supplier", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntitySupplier,
		EntityID:   audit.EntityRef(sup.ID),
		Changes:    audit.Changes(dto),
	})
	return sup, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateSupplierDTO) (*Supplier, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	sup, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.CompanyName != nil {
		sup.CompanyName = strings.TrimSpace(*dto.CompanyName)
	}
	if dto.ContactPerson != nil {
		sup.ContactPerson = *dto.ContactPerson
	}
	if dto.Email != nil {
		sup.Email = strings.ToLower(strings.TrimSpace(*dto.Email))
	}
	if dto.Phone != nil {
		sup.Phone = *dto.Phone
	}
	if dto.Address != nil {
		sup.Address = dto.Address.toAddress()
	}
	if dto.PaymentTerms != nil {
		sup.PaymentTerms = PaymentTerms(*dto.PaymentTerms)
	}
	if dto.Status != nil {
		sup.Status = Status(*dto.Status)
	}

	if err := s.repo.Update(ctx, sup); err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			return nil, ErrSupplierNotFound
		}
		s.logger.Error("failed to update supplier", "supplier_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update supplier", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntitySupplier,
		EntityID:   audit.EntityRef(sup.ID),
		Changes:    audit.Changes(dto),
	})
	return sup, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Supplier, error) {
	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, internal.NewInternalError("failed to load supplier", err)
	}
	return sup, nil
}

func canSeeAll(ctx context.Context) bool {
	p, ok := internal.PrincipalFromContext(ctx)
	return ok && p.Can(access.CapCatalogWrite)
}
