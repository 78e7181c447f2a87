package entities

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category names are not unique at the schema level; lookups by name return
// the lowest id.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:50;not null" json:"name"`
	Books     []Book    `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	Author     Author    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"author"`
	CategoryID uint      `gorm:"index;not null" json:"category_id"`
	Category   Category  `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookInput carries the submitted values of the add/edit book forms.
type BookInput struct {
	Title        string
	AuthorName   string
	AuthorEmail  string
	CategoryName string
}

// BookEdit is a BookInput plus the author/category references the edit form
// was rendered with. Zero ids mean "use the book's current reference".
type BookEdit struct {
	BookInput
	AuthorID   uint
	CategoryID uint
}

// CatalogStats summarises row counts for the catalog-stats command.
type CatalogStats struct {
	Books                  int64 `json:"books"`
	Authors                int64 `json:"authors"`
	Categories             int64 `json:"categories"`
	Users                  int64 `json:"users"`
	UnreferencedAuthors    int64 `json:"unreferenced_authors"`
	UnreferencedCategories int64 `json:"unreferenced_categories"`
}
