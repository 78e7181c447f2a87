package http

import "github.com/mrlokans/library-catalog/internal/entities"

// CatalogService is what the catalog controllers need from the service
// layer. *services.CatalogService implements it.
type CatalogService interface {
	ListBooks() ([]entities.Book, error)
	GetBook(id uint) (*entities.Book, error)
	AddBook(userID uint, input entities.BookInput) (*entities.Book, error)
	EditBook(userID, id uint, edit entities.BookEdit) (*entities.Book, error)
	DeleteBook(userID, id uint) error
}
