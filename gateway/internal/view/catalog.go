package view

import (
	"sync"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
)

// Catalog is the locally displayed book table. The remote API stays the
// source of truth; the catalog only mirrors the last fetch plus the count
// adjustments of borrows and returns issued since.
type Catalog struct {
	mu    sync.RWMutex
	books []model.Book
}

func NewCatalog(books ...model.Book) *Catalog {
	c := &Catalog{}
	c.Replace(books)
	return c
}

func (c *Catalog) Replace(books []model.Book) {
	cp := make([]model.Book, len(books))
	copy(cp, books)
	c.mu.Lock()
	c.books = cp
	c.mu.Unlock()
}

func (c *Catalog) Books() []model.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Book, len(c.books))
	copy(out, c.books)
	return out
}

func (c *Catalog) Get(book model.Book) (model.Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.books {
		if b.SameAs(book) {
			return b, true
		}
	}
	return model.Book{}, false
}

// Upsert replaces the matching book or appends it.
func (c *Catalog) Upsert(book model.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.books {
		if c.books[i].SameAs(book) {
			c.books[i] = book
			return
		}
	}
	c.books = append(c.books, book)
}

// Adjust changes the available count of the matching book by delta and
// returns the updated copy. The count never drops below zero.
func (c *Catalog) Adjust(book model.Book, delta int) (model.Book, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.books {
		if !c.books[i].SameAs(book) {
			continue
		}
		c.books[i].Available += delta
		if c.books[i].Available < 0 {
			c.books[i].Available = 0
		}
		return c.books[i], true
	}
	return model.Book{}, false
}

func (c *Catalog) Remove(isbn string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.books {
		if c.books[i].ISBN == isbn {
			c.books = append(c.books[:i], c.books[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}
