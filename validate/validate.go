// Package validate performs field-level input validation ahead of any
// state-changing logic. Every violated field is reported, not just the
// first, and inputs are normalized (trimmed, email lowercased) in place.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"lender/apperr"
)

var phoneRe = regexp.MustCompile(`^[\d\s\-+()]+$`)

var v = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())

	// report violations under the wire (json) field name
	vd.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = vd.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return vd
}

type MemberInput struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	StudentID string `json:"studentId" validate:"omitempty,max=50"`
}

func (in *MemberInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.StudentID = strings.TrimSpace(in.StudentID)
}

func Member(in *MemberInput) error {
	in.Normalize()
	return check(v.Struct(in), nil)
}

type MemberUpdateInput struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	StudentID *string `json:"studentId" validate:"omitempty,max=50"`
}

func (in *MemberUpdateInput) Normalize() {
	trimPtr(in.Name)
	if in.Email != nil {
		*in.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	trimPtr(in.Phone)
	trimPtr(in.StudentID)
}

func MemberUpdate(in *MemberUpdateInput) error {
	in.Normalize()
	return check(v.Struct(in), nil)
}

type ItemInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Type        string `json:"type" validate:"required,oneof=book tool equipment electronic other"`
	OwnerID     string `json:"ownerId" validate:"required,uuid"`
	Author      string `json:"author" validate:"omitempty,max=100"`
	ISBN        string `json:"isbn" validate:"omitempty,max=20"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

func (in *ItemInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Description = strings.TrimSpace(in.Description)
}

func Item(in *ItemInput) error {
	in.Normalize()
	return check(v.Struct(in), nil)
}

type ItemUpdateInput struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Type        *string `json:"type" validate:"omitempty,oneof=book tool equipment electronic other"`
	OwnerID     *string `json:"ownerId" validate:"omitempty,uuid"`
	Author      *string `json:"author" validate:"omitempty,max=100"`
	ISBN        *string `json:"isbn" validate:"omitempty,max=20"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (in *ItemUpdateInput) Normalize() {
	trimPtr(in.Title)
	if in.Type != nil {
		*in.Type = strings.ToLower(strings.TrimSpace(*in.Type))
	}
	trimPtr(in.Author)
	trimPtr(in.ISBN)
	trimPtr(in.Description)
}

func ItemUpdate(in *ItemUpdateInput) error {
	in.Normalize()
	var extra []apperr.FieldError
	if in.Title != nil && *in.Title == "" {
		extra = append(extra, apperr.FieldError{Field: "title", Message: "title must be between 1 and 200 characters"})
	}
	return check(v.Struct(in), extra)
}

type BorrowInput struct {
	ItemID     string    `json:"itemId" validate:"required,uuid"`
	BorrowerID string    `json:"borrowerMemberId" validate:"required,uuid"`
	DueDate    time.Time `json:"dueDate"`
}

// Borrow validates the borrow request against the submission time. The
// due-date-in-the-future rule runs here so a bad date is rejected before
// any write happens.
func Borrow(in *BorrowInput, now time.Time) error {
	var extra []apperr.FieldError
	if in.DueDate.IsZero() {
		extra = append(extra, apperr.FieldError{Field: "dueDate", Message: "dueDate is required"})
	} else if !in.DueDate.After(now) {
		extra = append(extra, apperr.FieldError{Field: "dueDate", Message: "dueDate must be in the future"})
	}
	return check(v.Struct(in), extra)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// check merges validator violations with manual ones into a single
// apperr.Validation error, or returns nil when both are empty.
func check(err error, extra []apperr.FieldError) error {
	var fields []apperr.FieldError
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Internal("validate input", err)
		}
		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: message(fe)})
		}
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return fe.Field() + " must be a valid id"
	default:
		return fe.Field() + " is invalid"
	}
}
