package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BooksController serves the JSON listing for API clients.
type BooksController struct {
	catalog CatalogService
}

func NewBooksController(catalog CatalogService) *BooksController {
	return &BooksController{
		catalog: catalog,
	}
}

func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.catalog.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}
