package handler

import (
	"context"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/reconciler"
	"github.com/Astemirdum/bookhub/gateway/internal/service/library"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ LibraryService = (*library.Service)(nil)
	_ ReturnService  = (*reconciler.Reconciler)(nil)
	_ Events         = (*broker.Broker)(nil)
)

type LibraryService interface {
	Login(ctx context.Context, in model.LoginRequest) (model.LoginResponse, error)
	ListBooks(ctx context.Context, q model.BookQuery) ([]model.Book, error)
	CreateBook(ctx context.Context, in model.BookInput) (model.Message, error)
	UpdateBook(ctx context.Context, ref model.Book, in model.BookInput) (model.Message, error)
	DeleteBook(ctx context.Context, isbn string) (model.Message, error)
	Borrow(ctx context.Context, bookID string) (model.Message, error)
	History(ctx context.Context) ([]model.BorrowRecord, error)
	ListBorrowers(ctx context.Context) ([]model.BorrowRecord, error)
	CreateBorrower(ctx context.Context, in model.BorrowerInput) (model.Message, error)
	MarkReturned(ctx context.Context, borrowID string) (model.Message, error)
	DeleteBorrow(ctx context.Context, borrowID string) (model.Message, error)
}

type ReturnService interface {
	Return(ctx context.Context, book model.Book) (reconciler.Outcome, error)
	ReturnLoan(ctx context.Context, loan model.BorrowRecord) (reconciler.Outcome, error)
	InFlight(ctx context.Context, key string) bool
}

type Events interface {
	Subscribe(topic broker.Topic, buf int) (<-chan broker.Event, func())
	Publish(ctx context.Context, ev broker.Event)
}
