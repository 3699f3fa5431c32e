package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lender/apperr"
)

func fieldNames(err error) []string {
	var names []string
	for _, f := range apperr.FieldsOf(err) {
		names = append(names, f.Field)
	}
	return names
}

func TestMember(t *testing.T) {
	tests := []struct {
		name   string
		in     MemberInput
		fields []string // violated fields, empty means valid
	}{
		{
			name: "valid",
			in:   MemberInput{Name: "Jo Doe", Email: "jo@example.com", Phone: "+44 20 7946 0018"},
		},
		{
			name: "valid without optional fields",
			in:   MemberInput{Name: "Jo Doe", Email: "jo@example.com"},
		},
		{
			name:   "name too short",
			in:     MemberInput{Name: "J", Email: "jo@example.com"},
			fields: []string{"name"},
		},
		{
			name:   "everything wrong at once",
			in:     MemberInput{Name: "", Email: "nope", Phone: "abc", StudentID: string(make([]byte, 51))},
			fields: []string{"name", "email", "phone", "studentId"},
		},
		{
			name:   "phone with letters",
			in:     MemberInput{Name: "Jo Doe", Email: "jo@example.com", Phone: "555-CALL"},
			fields: []string{"phone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Member(&tt.in)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.ElementsMatch(t, tt.fields, fieldNames(err))
		})
	}
}

func TestMember_Normalization(t *testing.T) {
	in := MemberInput{Name: "  Jo Doe ", Email: " JO@Example.Com "}
	require.NoError(t, Member(&in))
	assert.Equal(t, "Jo Doe", in.Name)
	assert.Equal(t, "jo@example.com", in.Email)
}

func TestItem(t *testing.T) {
	owner := "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	tests := []struct {
		name   string
		in     ItemInput
		fields []string
	}{
		{
			name: "valid book",
			in:   ItemInput{Title: "SICP", Type: "book", OwnerID: owner, Author: "Abelson", ISBN: "0-262-01153-0"},
		},
		{
			name: "type is case-normalized",
			in:   ItemInput{Title: "Ladder", Type: " TOOL ", OwnerID: owner},
		},
		{
			name:   "bad type",
			in:     ItemInput{Title: "Thing", Type: "vehicle", OwnerID: owner},
			fields: []string{"type"},
		},
		{
			name:   "whitespace-only title",
			in:     ItemInput{Title: "   ", Type: "book", OwnerID: owner},
			fields: []string{"title"},
		},
		{
			name:   "owner id not a uuid",
			in:     ItemInput{Title: "Thing", Type: "book", OwnerID: "42"},
			fields: []string{"ownerId"},
		},
		{
			name: "description too long",
			in: ItemInput{Title: "Thing", Type: "book", OwnerID: owner,
				Description: string(make([]byte, 501))},
			fields: []string{"description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Item(&tt.in)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.ElementsMatch(t, tt.fields, fieldNames(err))
		})
	}
}

func TestItemUpdate_EmptyTitleRejected(t *testing.T) {
	empty := "  "
	err := ItemUpdate(&ItemUpdateInput{Title: &empty})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.ElementsMatch(t, []string{"title"}, fieldNames(err))
}

func TestBorrow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	itemID := "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	borrowerID := "9e107d9d-3bcd-4bb4-8f1c-2fd5f2cfa3de"

	tests := []struct {
		name   string
		in     BorrowInput
		fields []string
	}{
		{
			name: "valid",
			in:   BorrowInput{ItemID: itemID, BorrowerID: borrowerID, DueDate: now.Add(time.Hour)},
		},
		{
			name:   "due date in the past",
			in:     BorrowInput{ItemID: itemID, BorrowerID: borrowerID, DueDate: now.Add(-time.Second)},
			fields: []string{"dueDate"},
		},
		{
			name:   "due date exactly now",
			in:     BorrowInput{ItemID: itemID, BorrowerID: borrowerID, DueDate: now},
			fields: []string{"dueDate"},
		},
		{
			name:   "missing everything",
			in:     BorrowInput{},
			fields: []string{"itemId", "borrowerMemberId", "dueDate"},
		},
		{
			name:   "malformed ids and past due",
			in:     BorrowInput{ItemID: "x", BorrowerID: "y", DueDate: now.Add(-time.Hour)},
			fields: []string{"itemId", "borrowerMemberId", "dueDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Borrow(&tt.in, now)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.ElementsMatch(t, tt.fields, fieldNames(err))
		})
	}
}
