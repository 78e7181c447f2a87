package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/library-catalog/internal/entities"
)

var (
	ErrNotFound         = errors.New("book not found")
	ErrMissingField     = errors.New("missing required field")
	ErrFieldTooLong     = errors.New("field too long")
	ErrAuthorEmailTaken = errors.New("author email belongs to another author")
)

// Column limits of the catalog schema.
const (
	MaxTitleLength        = 100
	MaxAuthorNameLength   = 50
	MaxEmailLength        = 120
	MaxCategoryNameLength = 50
)

// CatalogService validates catalog forms and maps storage errors onto the
// domain errors the handlers render.
type CatalogService struct {
	store CatalogStore
	audit AuditLogger
}

func NewCatalogService(store CatalogStore, audit AuditLogger) *CatalogService {
	return &CatalogService{store: store, audit: audit}
}

func (s *CatalogService) ListBooks() ([]entities.Book, error) {
	books, err := s.store.ListBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) GetBook(id uint) (*entities.Book, error) {
	book, err := s.store.GetBookByID(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return book, nil
}

// AddBook creates a book, reusing the author with the same email and the
// category with the same name when they exist.
func (s *CatalogService) AddBook(userID uint, input entities.BookInput) (*entities.Book, error) {
	input, err := NormalizeBookInput(input)
	if err != nil {
		return nil, err
	}

	book, err := s.store.CreateBook(input)
	if err != nil {
		s.logBook(userID, "book_create", 0, input.Title, err)
		return nil, mapStoreError(err)
	}
	s.logBook(userID, "book_create", book.ID, book.Title, nil)
	return book, nil
}

func (s *CatalogService) EditBook(userID, id uint, edit entities.BookEdit) (*entities.Book, error) {
	input, err := NormalizeBookInput(edit.BookInput)
	if err != nil {
		return nil, err
	}
	edit.BookInput = input

	book, err := s.store.UpdateBook(id, edit)
	if err != nil {
		mapped := mapStoreError(err)
		if !errors.Is(mapped, ErrNotFound) {
			s.logBook(userID, "book_update", id, input.Title, err)
		}
		return nil, mapped
	}
	s.logBook(userID, "book_update", book.ID, book.Title, nil)
	return book, nil
}

func (s *CatalogService) DeleteBook(userID, id uint) error {
	book, err := s.store.GetBookByID(id)
	if err != nil {
		return mapStoreError(err)
	}
	if err := s.store.DeleteBook(id); err != nil {
		return mapStoreError(err)
	}
	s.logBook(userID, "book_delete", id, book.Title, nil)
	return nil
}

// NormalizeBookInput trims every field and checks presence and column limits.
func NormalizeBookInput(input entities.BookInput) (entities.BookInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.AuthorName = strings.TrimSpace(input.AuthorName)
	input.AuthorEmail = strings.TrimSpace(input.AuthorEmail)
	input.CategoryName = strings.TrimSpace(input.CategoryName)

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"title", input.Title, MaxTitleLength},
		{"author_name", input.AuthorName, MaxAuthorNameLength},
		{"author_email", input.AuthorEmail, MaxEmailLength},
		{"category_name", input.CategoryName, MaxCategoryNameLength},
	}
	for _, f := range fields {
		if f.value == "" {
			return input, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
		if utf8.RuneCountInString(f.value) > f.max {
			return input, fmt.Errorf("%w: %s exceeds %d characters", ErrFieldTooLong, f.name, f.max)
		}
	}
	return input, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrAuthorEmailTaken, err)
	default:
		return err
	}
}

func (s *CatalogService) logBook(userID uint, action string, bookID uint, title string, err error) {
	if s.audit == nil {
		return
	}
	s.audit.LogBook(userID, action, bookID, title, err)
}
