package domain

// AddressKind distinguishes the two address slots every addressable
// entity carries.
type AddressKind string

const (
	ShippingAddressKind AddressKind = "shipping"
	BillingAddressKind  AddressKind = "billing"
)

// Address stores postal address fields shared by carts, customers and
// checkout forms.
type Address struct {
	ID         string `json:"id,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Company    string `json:"company,omitempty"`
	StreetName string `json:"streetName,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Clone duplicates the address attributes without its identity, so the
// copy can be attached to a different owner.
func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	dup := *a
	dup.ID = ""
	return &dup
}

// Empty reports whether every attribute field is blank.
func (a *Address) Empty() bool {
	if a == nil {
		return true
	}
	return a.FirstName == "" && a.LastName == "" && a.Company == "" &&
		a.StreetName == "" && a.PostalCode == "" && a.City == "" &&
		a.Country == "" && a.Phone == ""
}
