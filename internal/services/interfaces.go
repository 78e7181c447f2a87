package services

import "github.com/mrlokans/library-catalog/internal/entities"

// CatalogStore persists books together with their authors and categories.
// Implementations return gorm.ErrRecordNotFound for missing books and wrap
// gorm.ErrDuplicatedKey when an author email would collide.
type CatalogStore interface {
	ListBooks() ([]entities.Book, error)
	GetBookByID(id uint) (*entities.Book, error)
	CreateBook(input entities.BookInput) (*entities.Book, error)
	UpdateBook(id uint, edit entities.BookEdit) (*entities.Book, error)
	DeleteBook(id uint) error
}

// AuditLogger records catalog mutations. A nil AuditLogger disables auditing.
type AuditLogger interface {
	LogBook(userID uint, action string, bookID uint, title string, err error)
}
