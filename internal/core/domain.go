package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	// Category types stored in the database. Values are part of the API
	// contract with the frontend and are not translated.
	TypeIncome  CategoryType = "Receita"
	TypeExpense CategoryType = "Gasto"

	DefaultCategoryColor = "#CCCCCC"

	MaxDescriptionLen = 255
	MaxNameLen        = 100
)

type (
	CategoryType string

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		FullName     string
		Email        string // unique when set, empty means unset
		BirthDate    time.Time
		AvatarURL    string
		CreatedAt    time.Time
	}

	Category struct {
		ID    int64
		Name  string
		Type  CategoryType
		Color string // hex, e.g. "#FF0000"
	}

	Transaction struct {
		ID          int64
		Description string
		Amount      Money
		Date        time.Time
		Notes       string
		CategoryID  int64
		UserID      int64

		// Category is eagerly joined on list/period reads so callers never
		// issue per-row lookups.
		Category *Category
	}

	// Period is a date range where End is inclusive of the whole calendar
	// day. Range filters must use UpperBound (exclusive), never End itself.
	Period struct {
		Start time.Time
		End   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidType        = errors.New("category type must be Receita or Gasto")
	ErrInvalidColor       = errors.New("invalid color")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrMissingCategory    = errors.New("transaction must reference a category")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyPassword      = errors.New("empty password")
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (t CategoryType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLen {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if c.Color != "" && !hexColorRe.MatchString(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxDescriptionLen {
		return errors.New("description too long (max 255 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return nil
}

// UpperBound returns the exclusive upper limit of the period: the start of
// the day after End. A transaction stamped at any time of day on End falls
// below this bound and is therefore included.
func (p Period) UpperBound() time.Time {
	end := p.End
	return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1)
}

// NewPeriod builds a period from two calendar dates. Start after End is not
// an error: range filters simply match nothing.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}
