package supplier

type AddressDTO struct {
	Line1      string `json:"line1" validate:"max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=100"`
	Country    string `json:"country" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
}

type CreateSupplierDTO struct {
	CompanyName   string     `json:"company_name" validate:"required,max=200"`
	ContactPerson string     `json:"contact_person" validate:"max=100"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Phone         string     `json:"phone" validate:"max=30"`
	Address       AddressDTO `json:"address"`
	PaymentTerms  string     `json:"payment_terms" validate:"omitempty,oneof=ADVANCE NET_15 NET_30 NET_45 NET_60"`
	Status        string     `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLACKLISTED"`
}

// UpdateSupplierDTO applies only the fields that are present; a present
// address replaces the stored one.
type UpdateSupplierDTO struct {
	CompanyName   *string     `json:"company_name" validate:"omitempty,min=1,max=200"`
	ContactPerson *string     `json:"contact_person" validate:"omitempty,max=100"`
	Email         *string     `json:"email" validate:"omitempty,email"`
	Phone         *string     `json:"phone" validate:"omitempty,max=30"`
	Address       *AddressDTO `json:"address"`
	PaymentTerms  *string     `json:"payment_terms" validate:"omitempty,oneof=ADVANCE NET_15 NET_30 NET_45 NET_60"`
	Status        *string     `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLACKLISTED"`
}

func (a AddressDTO) toAddress() Address {
	return Address(a)
}
