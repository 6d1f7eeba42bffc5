// Package reconciler returns borrowed books and checks that the library API
// actually recorded the return.
//
// An attempt goes through
//
//	Idle -> Matching -> (MatchFailed | Calling) -> (CallFailed | Verifying) -> (Verified | Unverified)
//
// Matching finds the borrow record in a freshly fetched history, Calling
// issues the return, Verifying fetches the history again and looks for the
// return timestamp.
package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/matcher"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=reconciler.go -destination=mocks/mock.go

// Circulation is the part of the library API a return needs.
type Circulation interface {
	History(ctx context.Context) ([]model.BorrowRecord, error)
	Return(ctx context.Context, borrowID string) (model.Message, error)
}

type State uint8

const (
	Idle State = iota
	Matching
	MatchFailed
	Calling
	CallFailed
	Verifying
	Verified
	Unverified
)

func (s State) String() string {
	switch s {
	case Matching:
		return "matching"
	case MatchFailed:
		return "match_failed"
	case Calling:
		return "calling"
	case CallFailed:
		return "call_failed"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	case Unverified:
		return "unverified"
	default:
		return "idle"
	}
}

// Outcome is the final state of one attempt.
type Outcome struct {
	AttemptID    string              `json:"attemptId"`
	State        State               `json:"-"`
	Record       model.BorrowRecord  `json:"record"`
	ReturnedAt   model.Timestamp     `json:"returnedAt"`
	Notification notify.Notification `json:"notification"`
	// Book is the catalog copy after the available count was adjusted.
	Book *model.Book `json:"book,omitempty"`
	Err  error       `json:"-"`
}

// Returned reports whether the book is back, confirmed or not.
func (o Outcome) Returned() bool {
	return o.State == Verified || o.State == Unverified
}

type Option func(r *Reconciler)

// WithStateHook observes every transition, in order.
func WithStateHook(fn func(attemptID string, s State)) Option {
	return func(r *Reconciler) {
		r.onState = fn
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(r *Reconciler) {
		r.newID = fn
	}
}

type Reconciler struct {
	api      Circulation
	catalog  *view.Catalog
	pub      broker.Publisher
	notifier notify.Notifier
	log      *zap.Logger

	mu       sync.Mutex
	inFlight map[string]string

	newID   func() string
	onState func(attemptID string, s State)
}

func New(api Circulation, catalog *view.Catalog, pub broker.Publisher, notifier notify.Notifier, log *zap.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:      api,
		catalog:  catalog,
		pub:      pub,
		notifier: notifier,
		log:      log.Named("reconciler"),
		inFlight: make(map[string]string),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InFlight reports whether a return for key is running: key is a record
// id, or a book id or isbn returned by the session in ctx.
func (r *Reconciler) InFlight(ctx context.Context, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[recordKey(key)]; ok {
		return true
	}
	_, ok := r.inFlight[bookKey(ctx, key)]
	return ok
}

// Return returns a book from the catalog view, where no borrow id is known.
func (r *Reconciler) Return(ctx context.Context, book model.Book) (Outcome, error) {
	target := matcher.TargetOf(book)
	if target.Empty() {
		return Outcome{}, errs.ErrMissingBookRef
	}
	a, release, err := r.begin(ctx, keysOf(ctx, target))
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	rec, out, ok := r.match(ctx, a, target)
	if !ok {
		return out, nil
	}
	if err := r.claim(a, rec.ID); err != nil {
		return Outcome{}, err
	}
	return r.call(ctx, a, book, rec), nil
}

// ReturnLoan returns a row of the borrower dashboard.
func (r *Reconciler) ReturnLoan(ctx context.Context, loan model.BorrowRecord) (Outcome, error) {
	target := matcher.TargetOfLoan(loan)
	if target.Empty() {
		return Outcome{}, errs.ErrMissingBookRef
	}
	a, release, err := r.begin(ctx, keysOf(ctx, target))
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	if loan.Returned() {
		a.to(MatchFailed)
		return r.finish(ctx, a, Outcome{
			State:        MatchFailed,
			Record:       loan,
			ReturnedAt:   loan.ReturnedAt,
			Notification: notify.Info(alreadyReturnedText(loan.ReturnedAt)),
			Err:          errs.ErrAlreadyReturned,
		}), nil
	}

	book := bookOf(loan)
	if loan.ID == "" {
		rec, out, ok := r.match(ctx, a, target)
		if !ok {
			return out, nil
		}
		if err := r.claim(a, rec.ID); err != nil {
			return Outcome{}, err
		}
		return r.call(ctx, a, book, rec), nil
	}
	return r.call(ctx, a, book, loan), nil
}

type attempt struct {
	id    string
	log   *zap.Logger
	state State
	hook  func(string, State)
	keys  []string
}

func (a *attempt) to(s State) {
	a.log.Debug("return", zap.Stringer("from", a.state), zap.Stringer("to", s))
	a.state = s
	if a.hook != nil {
		a.hook(a.id, s)
	}
}

func (r *Reconciler) begin(ctx context.Context, keys []string) (*attempt, func(), error) {
	id := r.newID()

	r.mu.Lock()
	for _, k := range keys {
		if running, ok := r.inFlight[k]; ok {
			r.mu.Unlock()
			r.log.Info("return rejected, attempt running", zap.String("key", k), zap.String("running", running))
			return nil, nil, errs.ErrReturnInFlight
		}
	}
	for _, k := range keys {
		r.inFlight[k] = id
	}
	r.mu.Unlock()

	a := &attempt{id: id, log: r.log.With(zap.String("attempt", id)), hook: r.onState, keys: keys}
	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, k := range a.keys {
			if r.inFlight[k] == id {
				delete(r.inFlight, k)
			}
		}
	}
	return a, release, nil
}

// claim adds the matched record to the keys held by a, so a loan return of
// the same record is rejected while a runs.
func (r *Reconciler) claim(a *attempt, recordID string) error {
	k := recordKey(recordID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if running, ok := r.inFlight[k]; ok && running != a.id {
		a.log.Info("return rejected, record in flight", zap.String("record", recordID), zap.String("running", running))
		return errs.ErrReturnInFlight
	}
	r.inFlight[k] = a.id
	a.keys = append(a.keys, k)
	return nil
}

func (r *Reconciler) match(ctx context.Context, a *attempt, target matcher.Target) (model.BorrowRecord, Outcome, bool) {
	a.to(Matching)
	records, err := r.api.History(ctx)
	if err != nil {
		a.to(MatchFailed)
		return model.BorrowRecord{}, r.finish(ctx, a, Outcome{
			State:        MatchFailed,
			Notification: notify.Error(errs.Message(err)),
			Err:          err,
		}), false
	}

	res := matcher.Lookup(target, records)
	switch {
	case res.Status == matcher.StatusReturned:
		a.to(MatchFailed)
		return model.BorrowRecord{}, r.finish(ctx, a, Outcome{
			State:        MatchFailed,
			Record:       res.Record,
			ReturnedAt:   res.ReturnedAt(),
			Notification: notify.Info(alreadyReturnedText(res.ReturnedAt())),
			Err:          errs.ErrAlreadyReturned,
		}), false
	case !res.Found():
		a.to(MatchFailed)
		return model.BorrowRecord{}, r.finish(ctx, a, Outcome{
			State:        MatchFailed,
			Notification: notify.Error("No active borrow record found for this book"),
			Err:          errs.ErrNoActiveBorrow,
		}), false
	case res.Record.ID == "":
		a.to(MatchFailed)
		return model.BorrowRecord{}, r.finish(ctx, a, Outcome{
			State:        MatchFailed,
			Record:       res.Record,
			Notification: notify.Error("Borrow record id not found"),
			Err:          errs.ErrMissingBorrowID,
		}), false
	}
	return res.Record, Outcome{}, true
}

func (r *Reconciler) call(ctx context.Context, a *attempt, book model.Book, rec model.BorrowRecord) Outcome {
	target := matcher.TargetOfLoan(rec)
	if target.BookID == "" {
		target.BookID = book.ID
	}
	if target.ISBN == "" {
		target.ISBN = book.ISBN
	}

	a.to(Calling)
	msg, err := r.api.Return(ctx, rec.ID)
	if err != nil {
		if errs.IsAlreadyReturned(err) {
			return r.recheck(ctx, a, target, rec, err)
		}
		a.to(CallFailed)
		return r.finish(ctx, a, Outcome{
			State:        CallFailed,
			Record:       rec,
			Notification: notify.Error(errs.Message(err)),
			Err:          err,
		})
	}

	a.to(Verifying)
	records, err := r.api.History(ctx)
	if err != nil {
		a.log.Warn("verify fetch", zap.Error(err))
		a.to(Unverified)
		r.broadcast(ctx, a, nil)
		return r.finish(ctx, a, Outcome{
			State:        Unverified,
			Record:       rec,
			Book:         r.adjust(book),
			Notification: notify.Warning("Book returned, but the updated history could not be loaded"),
			Err:          err,
		})
	}

	res := matcher.Verify(target, records)
	r.broadcast(ctx, a, records)
	if !res.Found() || !res.Record.Returned() {
		a.to(Unverified)
		return r.finish(ctx, a, Outcome{
			State:        Unverified,
			Record:       rec,
			Book:         r.adjust(book),
			Notification: notify.Warning("Book returned, but the library has not recorded a return date yet"),
			Err:          errs.ErrNotConfirmed,
		})
	}

	text := msg.Message
	if text == "" {
		text = "Returned"
	}
	a.to(Verified)
	return r.finish(ctx, a, Outcome{
		State:        Verified,
		Record:       res.Record,
		ReturnedAt:   res.ReturnedAt(),
		Book:         r.adjust(book),
		Notification: notify.Success(text),
	})
}

// recheck handles an "already returned" refusal: the history decides whether
// it was a harmless repeat or a real failure.
func (r *Reconciler) recheck(ctx context.Context, a *attempt, target matcher.Target, rec model.BorrowRecord, callErr error) Outcome {
	a.to(Verifying)
	records, err := r.api.History(ctx)
	if err == nil {
		res := matcher.Verify(target, records)
		if res.Found() && res.Record.Returned() {
			r.broadcast(ctx, a, records)
			a.to(Verified)
			return r.finish(ctx, a, Outcome{
				State:        Verified,
				Record:       res.Record,
				ReturnedAt:   res.ReturnedAt(),
				Notification: notify.Info(alreadyReturnedText(res.ReturnedAt())),
			})
		}
	} else {
		a.log.Warn("already-returned recheck", zap.Error(err))
	}
	a.to(CallFailed)
	return r.finish(ctx, a, Outcome{
		State:        CallFailed,
		Record:       rec,
		Notification: notify.Error(errs.Message(callErr)),
		Err:          callErr,
	})
}

func (r *Reconciler) adjust(book model.Book) *model.Book {
	if r.catalog == nil {
		return nil
	}
	b, ok := r.catalog.Adjust(book, 1)
	if !ok {
		return nil
	}
	return &b
}

func (r *Reconciler) broadcast(ctx context.Context, a *attempt, records []model.BorrowRecord) {
	if r.pub == nil {
		return
	}
	ev := broker.Event{
		Topic:     broker.TopicBorrowRecords,
		AttemptID: a.id,
		Records:   records,
	}
	if s, ok := session.FromContext(ctx); ok {
		ev.UserID = s.User.ID
	}
	r.pub.Publish(ctx, ev)
}

func (r *Reconciler) finish(ctx context.Context, a *attempt, out Outcome) Outcome {
	out.AttemptID = a.id
	notify.Dispatch(ctx, r.notifier, out.Notification)
	a.log.Info("return finished",
		zap.Stringer("state", out.State),
		zap.String("record", out.Record.ID),
		zap.Error(out.Err),
	)
	return out
}

func alreadyReturnedText(at model.Timestamp) string {
	if !at.IsSet() {
		return "Book already returned"
	}
	return fmt.Sprintf("Book already returned on %s", at.Human())
}

// keysOf locks a known record by its id. Without one the book id and isbn
// are locked for the session user only: other users return their own
// records of the same book.
func keysOf(ctx context.Context, t matcher.Target) []string {
	if t.RecordID != "" {
		return []string{recordKey(t.RecordID)}
	}
	keys := make([]string, 0, 2)
	for _, k := range []string{t.BookID, t.ISBN} {
		if k != "" {
			keys = append(keys, bookKey(ctx, k))
		}
	}
	return keys
}

func recordKey(id string) string {
	return "record/" + id
}

func bookKey(ctx context.Context, ref string) string {
	var user string
	if s, ok := session.FromContext(ctx); ok {
		user = s.User.ID
	}
	return user + "/book/" + ref
}

func bookOf(loan model.BorrowRecord) model.Book {
	if loan.Book != nil {
		b := *loan.Book
		if b.ID == "" {
			b.ID = loan.BookID
		}
		return b
	}
	return model.Book{ID: loan.BookID, ISBN: loan.BookISBN(), Title: loan.Title}
}
