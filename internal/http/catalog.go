package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/services"
)

// bookForm is the state of the add/edit form as rendered into book_form.html.
type bookForm struct {
	Title        string
	AuthorName   string
	AuthorEmail  string
	CategoryName string
	AuthorID     uint
	CategoryID   uint
}

func (f bookForm) input() entities.BookInput {
	return entities.BookInput{
		Title:        f.Title,
		AuthorName:   f.AuthorName,
		AuthorEmail:  f.AuthorEmail,
		CategoryName: f.CategoryName,
	}
}

func formFromBook(book *entities.Book) bookForm {
	return bookForm{
		Title:        book.Title,
		AuthorName:   book.Author.Name,
		AuthorEmail:  book.Author.Email,
		CategoryName: book.Category.Name,
		AuthorID:     book.AuthorID,
		CategoryID:   book.CategoryID,
	}
}

func bindBookForm(c *gin.Context) bookForm {
	return bookForm{
		Title:        c.PostForm("title"),
		AuthorName:   c.PostForm("author_name"),
		AuthorEmail:  c.PostForm("author_email"),
		CategoryName: c.PostForm("category_name"),
		AuthorID:     parseOptionalID(c, "author_id"),
		CategoryID:   parseOptionalID(c, "category_id"),
	}
}

// CatalogController serves the HTML pages of the catalog.
type CatalogController struct {
	catalog CatalogService
}

func NewCatalogController(catalog CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// BooksPage lists every book with its author and category.
// GET /
func (controller *CatalogController) BooksPage(c *gin.Context) {
	books, err := controller.catalog.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.HTML(http.StatusOK, "books.html", pageData(c, gin.H{
		"Title":      "Books",
		"Books":      books,
		"TotalBooks": len(books),
	}))
}

// AddBookPage renders an empty book form.
// GET /add_book
func (controller *CatalogController) AddBookPage(c *gin.Context) {
	controller.renderAddForm(c, http.StatusOK, bookForm{}, "")
}

// AddBook creates a book from the submitted form.
// POST /add_book
func (controller *CatalogController) AddBook(c *gin.Context) {
	form := bindBookForm(c)

	_, err := controller.catalog.AddBook(GetUserID(c), form.input())
	if err != nil {
		if isValidationError(err) {
			controller.renderAddForm(c, http.StatusBadRequest, form, validationMessage(err))
			return
		}
		respondInternalError(c, err, "add book")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// EditBookPage renders the form prefilled with the stored book.
// GET /edit_book/:id
func (controller *CatalogController) EditBookPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetBook(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondNotFound(c, "Book")
			return
		}
		respondInternalError(c, err, "load book")
		return
	}

	controller.renderEditForm(c, http.StatusOK, id, formFromBook(book), "")
}

// EditBook updates the book, its author and its category.
// POST /edit_book/:id
func (controller *CatalogController) EditBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form := bindBookForm(c)
	edit := entities.BookEdit{
		BookInput:  form.input(),
		AuthorID:   form.AuthorID,
		CategoryID: form.CategoryID,
	}

	_, err := controller.catalog.EditBook(GetUserID(c), id, edit)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, services.ErrNotFound):
		respondNotFound(c, "Book")
	case isValidationError(err):
		controller.renderEditForm(c, http.StatusBadRequest, id, form, validationMessage(err))
	case errors.Is(err, services.ErrAuthorEmailTaken):
		controller.renderEditForm(c, http.StatusConflict, id, form,
			"Another author already uses the email "+strings.TrimSpace(form.AuthorEmail))
	default:
		respondInternalError(c, err, "edit book")
	}
}

// DeleteBook removes a book. Its author and category stay.
// POST /delete_book/:id
func (controller *CatalogController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := controller.catalog.DeleteBook(GetUserID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondNotFound(c, "Book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (controller *CatalogController) renderAddForm(c *gin.Context, status int, form bookForm, errMsg string) {
	c.HTML(status, "book_form.html", pageData(c, gin.H{
		"Title":  "Add book",
		"Action": "/add_book",
		"Submit": "Add",
		"Form":   form,
		"Error":  errMsg,
	}))
}

func (controller *CatalogController) renderEditForm(c *gin.Context, status int, id uint, form bookForm, errMsg string) {
	c.HTML(status, "book_form.html", pageData(c, gin.H{
		"Title":  "Edit book",
		"Action": "/edit_book/" + strconv.FormatUint(uint64(id), 10),
		"Submit": "Save",
		"Form":   form,
		"Error":  errMsg,
	}))
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrMissingField) || errors.Is(err, services.ErrFieldTooLong)
}

// validationMessage turns "missing required field: author_email" into
// "Missing required field: author email".
func validationMessage(err error) string {
	msg := strings.ReplaceAll(err.Error(), "_", " ")
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
