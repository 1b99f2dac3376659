package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/contact-directory/internal/errs"
	"gitlab.com/dirk.krummacker/contact-directory/internal/model"
	api "gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

// Repository is the durable table behind the directory. *store.Store implements it.
type Repository interface {
	Insert(ctx context.Context, contact model.Contact) error
	SelectAll(ctx context.Context) ([]model.Contact, error)
	SelectByID(ctx context.Context, id string) (model.Contact, error)
	Update(ctx context.Context, contact model.Contact) (model.Contact, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Directory implements the operations on contacts. It validates input, assigns ids and computes
// the age of every contact it returns.
type Directory struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock sets the source of "today" used for the age calculation.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(d *Directory) {
		d.newID = newID
	}
}

// NewDirectory returns a directory backed by the given repository.
func NewDirectory(repo Repository, opts ...Option) *Directory {
	validate := validator.New()
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	d := &Directory{
		repo:     repo,
		validate: validate,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Create validates the input, stores it under a fresh id and returns the new contact.
func (d *Directory) Create(ctx context.Context, in api.ContactInput) (api.Contact, error) {
	if err := d.validateInput(in); err != nil {
		return api.Contact{}, err
	}
	contact := model.FromInput(d.newID(), in)
	if err := d.repo.Insert(ctx, contact); err != nil {
		return api.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact.ToAPI(d.now()), nil
}

// List returns all contacts ordered by name.
func (d *Directory) List(ctx context.Context) ([]api.Contact, error) {
	rows, err := d.repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	today := d.now()
	contacts := make([]api.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.ToAPI(today))
	}
	return contacts, nil
}

// Get returns the contact with the given id.
func (d *Directory) Get(ctx context.Context, id string) (api.Contact, error) {
	key, err := parseID(id)
	if err != nil {
		return api.Contact{}, err
	}
	row, err := d.repo.SelectByID(ctx, key)
	if err != nil {
		return api.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return row.ToAPI(d.now()), nil
}

// Update replaces name, birth date, email, phone and address of the contact with the given id.
// Optional fields missing from the input are cleared.
func (d *Directory) Update(ctx context.Context, id string, in api.ContactInput) (api.Contact, error) {
	if err := d.validateInput(in); err != nil {
		return api.Contact{}, err
	}
	key, err := parseID(id)
	if err != nil {
		return api.Contact{}, err
	}
	row, err := d.repo.Update(ctx, model.FromInput(key, in))
	if err != nil {
		return api.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	return row.ToAPI(d.now()), nil
}

// Delete removes the contact with the given id permanently.
func (d *Directory) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	if err := d.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// Ping checks that the repository is reachable.
func (d *Directory) Ping(ctx context.Context) error {
	return d.repo.Ping(ctx)
}

// parseID returns the canonical form of a contact id. Anything that is not a UUID cannot exist in
// the table and is reported as not found without asking the database.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", &errs.NotFoundError{Id: id}
	}
	return parsed.String(), nil
}

func (d *Directory) validateInput(in api.ContactInput) error {
	err := d.validate.Struct(in)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs.NewValidationError(err.Error())
	}
	fields := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, errs.FieldError{Field: fe.Field(), Error: message(fe)})
	}
	return errs.NewValidationError("invalid contact", fields...)
}

// message turns a failed validation tag into a human-readable text.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "failed on " + fe.Tag()
	}
}
