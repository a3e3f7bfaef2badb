package supplier

import "time"

type Supplier struct {
	ID            int64     `gorm:"primaryKey"`
	CompanyName   string    `gorm:"column:company_name;not null"`
	ContactPerson string    `gorm:"column:contact_person"`
	Email         string    `gorm:"column:email"`
	Phone         string    `gorm:"column:phone"`
	AddressLine1  string    `gorm:"column:address_line1"`
	AddressLine2  string    `gorm:"column:address_line2"`
	City          string    `gorm:"column:city"`
	State         string    `gorm:"column:state"`
	Country       string    `gorm:"column:country"`
	PostalCode    string    `gorm:"column:postal_code"`
	PaymentTerms  string    `gorm:"column:payment_terms;not null;default:NET_30"`
	Status        string    `gorm:"column:status;not null;default:ACTIVE;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
