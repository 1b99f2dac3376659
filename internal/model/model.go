package model

import (
	"time"

	api "gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

// Contact is a row of the contatos table. Phone and Address are nullable.
type Contact struct {
	Id        string   `db:"id"`
	Name      string   `db:"name"`
	BirthDate api.Date `db:"birth_date"`
	Email     string   `db:"email"`
	Phone     *string  `db:"phone"`
	Address   *string  `db:"address"`
}

// FromInput builds the row for the given id from a validated request body. The birth date must not
// be nil.
func FromInput(id string, in api.ContactInput) Contact {
	return Contact{
		Id:        id,
		Name:      in.Name,
		BirthDate: *in.BirthDate,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
	}
}

// ToAPI converts the row into its REST representation, computing the age as of today.
func (c Contact) ToAPI(today time.Time) api.Contact {
	return api.Contact{
		Id:        c.Id,
		Name:      c.Name,
		BirthDate: c.BirthDate,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Age:       api.Age(c.BirthDate, today),
	}
}
