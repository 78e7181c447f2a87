// Package catalog provides database operations for books and the authors and
// categories they reference.
//
// Authors are identified by email and categories by name when a form submits
// them; both are created lazily and are never deleted by this package.
//
// # Usage
//
//	repo := catalog.NewRepository(db, config.EditInPlace)
//	book, err := repo.CreateBook(entities.BookInput{...})
package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db     *gorm.DB
	policy config.EditPolicy
}

// NewRepository creates a new catalog repository. An empty policy falls back
// to config.EditInPlace.
func NewRepository(db *gorm.DB, policy config.EditPolicy) *Repository {
	if policy == "" {
		policy = config.EditInPlace
	}
	return &Repository{db: db, policy: policy}
}

// ListBooks returns every book with its author and category, ordered by id.
func (r *Repository) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Author").Preload("Category").Order("id ASC").Find(&books).Error
	return books, err
}

// GetBookByID returns gorm.ErrRecordNotFound when the book does not exist.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Category").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook resolves the author by email and the category by name, creating
// whichever is missing, then inserts the book. All writes share a transaction.
func (r *Repository) CreateBook(input entities.BookInput) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		author, err := findOrCreateAuthor(tx, input.AuthorName, input.AuthorEmail)
		if err != nil {
			return err
		}
		category, err := findOrCreateCategory(tx, input.CategoryName)
		if err != nil {
			return err
		}

		book = entities.Book{
			Title:      input.Title,
			AuthorID:   author.ID,
			CategoryID: category.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&book).Error; err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetBookByID(book.ID)
}

// UpdateBook applies an edit according to the repository's edit policy.
//
// Under config.EditInPlace the author and category the form references are
// overwritten when both exist; otherwise, and always under
// config.EditCopyOnWrite, the submitted values go through the same
// lookup-or-create path as CreateBook and the previously referenced rows are
// left untouched.
//
// Returns gorm.ErrRecordNotFound when the book does not exist and wraps
// gorm.ErrDuplicatedKey when an in-place edit would give the author an email
// owned by another author.
func (r *Repository) UpdateBook(id uint, edit entities.BookEdit) (*entities.Book, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		authorID := edit.AuthorID
		if authorID == 0 {
			authorID = book.AuthorID
		}
		categoryID := edit.CategoryID
		if categoryID == 0 {
			categoryID = book.CategoryID
		}

		var (
			resolvedAuthor   uint
			resolvedCategory uint
			updated          bool
			err              error
		)
		if r.policy == config.EditInPlace {
			resolvedAuthor, resolvedCategory, updated, err = updateReferencedRows(tx, authorID, categoryID, edit.BookInput)
			if err != nil {
				return err
			}
		}
		if !updated {
			author, err := findOrCreateAuthor(tx, edit.AuthorName, edit.AuthorEmail)
			if err != nil {
				return err
			}
			category, err := findOrCreateCategory(tx, edit.CategoryName)
			if err != nil {
				return err
			}
			resolvedAuthor, resolvedCategory = author.ID, category.ID
		}

		err = tx.Model(&book).Updates(map[string]any{
			"title":       edit.Title,
			"author_id":   resolvedAuthor,
			"category_id": resolvedCategory,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetBookByID(id)
}

// DeleteBook removes a single book. Its author and category stay.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetStats returns row counts for the catalog tables.
func (r *Repository) GetStats() (entities.CatalogStats, error) {
	var stats entities.CatalogStats

	counts := []struct {
		model any
		dest  *int64
	}{
		{&entities.Book{}, &stats.Books},
		{&entities.Author{}, &stats.Authors},
		{&entities.Category{}, &stats.Categories},
		{&entities.User{}, &stats.Users},
	}
	for _, c := range counts {
		if err := r.db.Model(c.model).Count(c.dest).Error; err != nil {
			return stats, err
		}
	}

	err := r.db.Model(&entities.Author{}).
		Where("id NOT IN (?)", r.db.Model(&entities.Book{}).Select("author_id")).
		Count(&stats.UnreferencedAuthors).Error
	if err != nil {
		return stats, err
	}
	err = r.db.Model(&entities.Category{}).
		Where("id NOT IN (?)", r.db.Model(&entities.Book{}).Select("category_id")).
		Count(&stats.UnreferencedCategories).Error
	return stats, err
}

// updateReferencedRows overwrites the author and category in place. updated is
// false when either row is missing, in which case nothing was written.
func updateReferencedRows(tx *gorm.DB, authorID, categoryID uint, input entities.BookInput) (uint, uint, bool, error) {
	var author entities.Author
	authorErr := tx.First(&author, authorID).Error
	if authorErr != nil && !errors.Is(authorErr, gorm.ErrRecordNotFound) {
		return 0, 0, false, authorErr
	}
	var category entities.Category
	categoryErr := tx.First(&category, categoryID).Error
	if categoryErr != nil && !errors.Is(categoryErr, gorm.ErrRecordNotFound) {
		return 0, 0, false, categoryErr
	}
	if authorErr != nil || categoryErr != nil {
		return 0, 0, false, nil
	}

	if author.Email != input.AuthorEmail {
		var owners int64
		err := tx.Model(&entities.Author{}).
			Where("email = ? AND id <> ?", input.AuthorEmail, author.ID).
			Count(&owners).Error
		if err != nil {
			return 0, 0, false, err
		}
		if owners > 0 {
			return 0, 0, false, fmt.Errorf("author email %q: %w", input.AuthorEmail, gorm.ErrDuplicatedKey)
		}
	}

	err := tx.Model(&author).Updates(map[string]any{
		"name":  input.AuthorName,
		"email": input.AuthorEmail,
	}).Error
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to update author: %w", err)
	}
	if err := tx.Model(&category).Update("name", input.CategoryName).Error; err != nil {
		return 0, 0, false, fmt.Errorf("failed to update category: %w", err)
	}
	return author.ID, category.ID, true, nil
}

// findOrCreateAuthor keeps the stored name of an existing author.
func findOrCreateAuthor(tx *gorm.DB, name, email string) (*entities.Author, error) {
	var author entities.Author
	err := tx.Where("email = ?", email).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	author = entities.Author{Name: name, Email: email}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&author)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create author: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race with a concurrent insert of the same email.
		author = entities.Author{}
		if err := tx.Where("email = ?", email).First(&author).Error; err != nil {
			return nil, fmt.Errorf("failed to look up author: %w", err)
		}
	}
	return &author, nil
}

func findOrCreateCategory(tx *gorm.DB, name string) (*entities.Category, error) {
	var category entities.Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	category = entities.Category{Name: name}
	if err := tx.Omit(clause.Associations).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}
