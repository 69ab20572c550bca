// Package bookstore keeps books in a relational store and a document store,
// both written through one throughcache.Cache under the same derived id.
package bookstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	tc "github.com/unkn0wn-root/throughcache"
)

// Book is stored as-is in both stores. ID is derived from the immutable
// fields; see DeriveID.
type Book struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	ISBN   string  `json:"isbn"`
	Price  float64 `json:"price"`
}

var errMissingTitle = errors.New("bookstore: book needs a title and an author")

// DeriveID returns the 16-digit hex xxhash64 of title, author and isbn.
// Fields are separated so ("ab","c") and ("a","bc") differ.
func DeriveID(title, author, isbn string) string {
	d := xxhash.New()
	_, _ = d.WriteString(title)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(author)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(isbn)

	return fmt.Sprintf("%016x", d.Sum64())
}

// withID returns b with ID set from its immutable fields.
func (b Book) withID() (Book, error) {
	if b.Title == "" || b.Author == "" {
		return b, errMissingTitle
	}
	b.ID = DeriveID(b.Title, b.Author, b.ISBN)
	return b, nil
}

// Price rule applied by AdjustPrice.
const (
	surchargeBelow = 10.0
	surcharge      = 2.0
)

// AdjustPrice adds 2 to books priced under 10 and persists the result
// through repo. Books at or above 10 are persisted unchanged.
func AdjustPrice(ctx context.Context, repo tc.Repository[string, Book], key string, b Book) (Book, error) {
	if b.Price < surchargeBelow {
		b.Price += surcharge
	}
	if err := repo.Put(ctx, key, b); err != nil {
		return Book{}, err
	}
	return b, nil
}
