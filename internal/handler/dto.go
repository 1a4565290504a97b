package handler

import (
	"encoding/json"

	"github.com/msomdec/book-catalog/internal/domain"
	"github.com/msomdec/book-catalog/internal/validator"
)

// Wire keys of the catalog API. Clients built against the store's column
// names still send these, so they are fixed; the domain names are free to
// change behind bookWireFields.
const (
	wireBookID          = "BookId"
	wireCategoryID      = "CategoryId"
	wireBookName        = "BookName"
	wireBookDescription = "BookDescription"
	wireBookStock       = "BookStock"
	wireBookPrice       = "BookPrice"
)

// bookWireFields maps each wire key to its validator field.
var bookWireFields = map[string]string{
	wireBookID:          validator.FieldID,
	wireCategoryID:      validator.FieldCategoryID,
	wireBookName:        validator.FieldName,
	wireBookDescription: validator.FieldDescription,
	wireBookStock:       validator.FieldStock,
	wireBookPrice:       validator.FieldPrice,
}

// toRaw keeps only known wire keys and renames them for the validator.
func toRaw(body map[string]any) validator.Raw {
	raw := make(validator.Raw, len(bookWireFields))
	for wire, field := range bookWireFields {
		if v, ok := body[wire]; ok {
			raw[field] = v
		}
	}
	return raw
}

// BookDTO is the JSON representation of a book.
type BookDTO struct {
	ID          int64       `json:"BookId"`
	CategoryID  int64       `json:"CategoryId"`
	Name        string      `json:"BookName"`
	Description string      `json:"BookDescription"`
	Stock       int64       `json:"BookStock"`
	Price       json.Number `json:"BookPrice"`
}

func toBookDTO(b *domain.Book) *BookDTO {
	if b == nil {
		return nil
	}
	return &BookDTO{
		ID:          b.ID,
		CategoryID:  b.CategoryID,
		Name:        b.Name,
		Description: b.Description,
		Stock:       b.Stock,
		Price:       json.Number(b.Price.StringFixed(2)),
	}
}

func toBookDTOs(books []domain.Book) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i := range books {
		dtos[i] = *toBookDTO(&books[i])
	}
	return dtos
}

// CategoryDTO is the JSON representation of a category.
type CategoryDTO struct {
	ID   int64  `json:"CategoryId"`
	Name string `json:"CategoryName"`
}

func toCategoryDTOs(categories []domain.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = CategoryDTO{ID: c.ID, Name: c.Name}
	}
	return dtos
}

// UserDTO is the JSON representation of a user. The password never leaves
// the store.
type UserDTO struct {
	ID        int64  `json:"UserId"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
	Role      string `json:"Role"`
}

func toUserDTO(u *domain.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = *toUserDTO(&users[i])
	}
	return dtos
}
