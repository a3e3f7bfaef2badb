package supplier

import (
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	supplierDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/supplier"
)

type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusInactive    Status = "INACTIVE"
	StatusBlacklisted Status = "BLACKLISTED"
)

type PaymentTerms string

const (
	TermsAdvance PaymentTerms = "ADVANCE"
	TermsNet15   PaymentTerms = "NET_15"
	TermsNet30   PaymentTerms = "NET_30"
	TermsNet45   PaymentTerms = "NET_45"
	TermsNet60   PaymentTerms = "NET_60"
)

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type Supplier struct {
	ID            int64        `json:"id"`
	CompanyName   string       `json:"company_name"`
	ContactPerson string       `json:"contact_person,omitempty"`
	Email         string       `json:"email,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Address       Address      `json:"address"`
	PaymentTerms  PaymentTerms `json:"payment_terms"`
	Status        Status       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

var ErrSupplierNotFound = internal.NewNotFoundError("supplier not found", internal.ErrCodeSupplierNotFound)

func (s *Supplier) IsActive() bool {
	return s.Status == StatusActive
}

func FromDataModel(m *supplierDatamodel.Supplier) *Supplier {
	return &Supplier{
		ID:            m.ID,
		CompanyName:   m.CompanyName,
		ContactPerson: m.ContactPerson,
		Email:         m.Email,
		Phone:         m.Phone,
		Address: Address{
			Line1:      m.AddressLine1,
			Line2:      m.AddressLine2,
			City:       m.City,
			State:      m.State,
			Country:    m.Country,
			PostalCode: m.PostalCode,
		},
		PaymentTerms: PaymentTerms(m.PaymentTerms),
		Status:       Status(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToDataModel(s *Supplier) *supplierDatamodel.Supplier {
	return &supplierDatamodel.Supplier{
		ID:            s.ID,
		CompanyName:   s.CompanyName,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		AddressLine1:  s.Address.Line1,
		AddressLine2:  s.Address.Line2,
		City:          s.Address.City,
		State:         s.Address.State,
		Country:       s.Address.Country,
		PostalCode:    s.Address.PostalCode,
		PaymentTerms:  string(s.PaymentTerms),
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
