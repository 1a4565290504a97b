// Package validator is the gate between untrusted client input and the
// catalog's domain records. Everything here is pure: no I/O, no store access.
//
// Rejections are deliberately opaque. Callers only learn that the input was
// rejected (domain.ErrInvalidInput); the offending fields are logged
// server-side and never returned.
package validator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/msomdec/book-catalog/internal/domain"
)

// Domain field names used as keys in Raw. The boundary layer translates its
// wire keys into these before calling the validator.
const (
	FieldID          = "id"
	FieldCategoryID  = "categoryId"
	FieldName        = "name"
	FieldDescription = "description"
	FieldStock       = "stock"
	FieldPrice       = "price"
)

// Raw holds untrusted book fields keyed by domain field name. Values may be
// strings, json.Number, Go numeric types, or anything else a decoder produced.
type Raw map[string]any

// currencyRX accepts a non-negative amount with at most two decimal places and
// no symbols, signs or thousands separators. The integer part is capped at
// eight digits to fit BookPrice DECIMAL(10, 2) without losing precision.
var currencyRX = regexp.MustCompile(`^(0|[1-9][0-9]{0,7})(\.[0-9]{1,2})?$`)

// bookInput is the string-normalised form of a Raw book. Tags carry the rules.
type bookInput struct {
	ID          string `validate:"required,number"`
	CategoryID  string `validate:"required,number"`
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Stock       string `validate:"required,number"`
	Price       string `validate:"required,currency"`
}

var rules = newRules()

func newRules() *playground.Validate {
	v := playground.New()
	if err := v.RegisterValidation("currency", func(fl playground.FieldLevel) bool {
		return currencyRX.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateID reports whether raw is a non-negative integer written with
// digits only. Nil, empty, signed, fractional and non-numeric values fail.
func ValidateID(raw any) bool {
	_, err := ParseID(raw)
	return err == nil
}

// ParseID validates raw like ValidateID and returns its value. Values that
// pass the digit check but overflow int64 are rejected too.
func ParseID(raw any) (int64, error) {
	s, ok := stringify(raw)
	if !ok || rules.Var(s, "required,number") != nil {
		slog.Warn("invalid id parameter")
		return 0, domain.ErrInvalidInput
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		slog.Warn("invalid id parameter", "reason", "out of range")
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

// ValidateNewBook turns raw into a Book ready for insertion. Any id the
// client supplied is ignored; the store assigns one.
func ValidateNewBook(raw Raw) (*domain.Book, error) {
	in, ok := normalise(raw)
	if !ok {
		slog.Warn("new book rejected", "reason", "unsupported field types")
		return nil, domain.ErrInvalidInput
	}
	if err := rules.StructExcept(in, "ID"); err != nil {
		slog.Warn("new book rejected", "fields", failedFields(err))
		return nil, domain.ErrInvalidInput
	}
	book, err := build(in)
	if err != nil {
		slog.Warn("new book rejected", "reason", err)
		return nil, domain.ErrInvalidInput
	}
	return book, nil
}

// ValidateUpdateBook is ValidateNewBook plus a required, well-formed id.
func ValidateUpdateBook(raw Raw) (*domain.Book, error) {
	in, ok := normalise(raw)
	if !ok {
		slog.Warn("book update rejected", "reason", "unsupported field types")
		return nil, domain.ErrInvalidInput
	}
	if err := rules.Struct(in); err != nil {
		slog.Warn("book update rejected", "fields", failedFields(err))
		return nil, domain.ErrInvalidInput
	}
	book, err := build(in)
	if err != nil {
		slog.Warn("book update rejected", "reason", err)
		return nil, domain.ErrInvalidInput
	}
	id, err := strconv.ParseInt(in.ID, 10, 64)
	if err != nil {
		slog.Warn("book update rejected", "reason", "id out of range")
		return nil, domain.ErrInvalidInput
	}
	book.ID = id
	return book, nil
}

// Escape encodes the characters that are significant in HTML so stored text
// cannot inject markup when a client renders it.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

func build(in *bookInput) (*domain.Book, error) {
	categoryID, err := strconv.ParseInt(in.CategoryID, 10, 64)
	if err != nil {
		return nil, errors.New("category id out of range")
	}
	stock, err := strconv.ParseInt(in.Stock, 10, 64)
	if err != nil {
		return nil, errors.New("stock out of range")
	}
	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return nil, errors.New("unparseable price")
	}
	return &domain.Book{
		CategoryID:  categoryID,
		Name:        Escape(in.Name),
		Description: Escape(in.Description),
		Stock:       stock,
		Price:       price.Round(2),
	}, nil
}

// normalise converts raw into string form. Numeric fields accept numbers or
// strings; name and description must be strings. A missing numeric field
// becomes "" and fails the required rule.
func normalise(raw Raw) (*bookInput, bool) {
	if raw == nil {
		return nil, false
	}
	name, ok := optionalString(raw[FieldName])
	if !ok {
		return nil, false
	}
	description, ok := optionalString(raw[FieldDescription])
	if !ok {
		return nil, false
	}
	id, _ := stringify(raw[FieldID])
	categoryID, _ := stringify(raw[FieldCategoryID])
	stock, _ := stringify(raw[FieldStock])
	price, _ := stringify(raw[FieldPrice])
	return &bookInput{
		ID:          id,
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
		Stock:       stock,
		Price:       price,
	}, true
}

func optionalString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	default:
		return "", false
	}
}

// stringify renders scalar values the way they would appear in a form post.
func stringify(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case json.Number:
		return n.String(), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case float32:
		return stringify(float64(n))
	case int:
		return strconv.Itoa(n), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	default:
		return "", false
	}
}

func failedFields(err error) []string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// ValidateEmail reports whether s is a syntactically valid email address.
func ValidateEmail(s string) bool {
	return rules.Var(s, "required,email") == nil
}
