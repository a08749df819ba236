package books

import (
	"context"
	"strings"

	"library-backend/internal/platform/logging"
)

// Repository is the catalog persistence used by Service.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id uint64) (*Book, error)
	List(ctx context.Context) ([]Book, error)
	FindByTitle(ctx context.Context, title string) ([]Book, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id uint64) error
}

type Service struct {
	store Repository
	log   logging.Logger
}

func NewService(store Repository, log logging.Logger) *Service {
	return &Service{store: store, log: log.With("component", "books")}
}

func (in BookRequest) validate() (title, author, description string, err error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return "", "", "", ErrUnprocessable("title required")
	}
	if in.Author == nil || strings.TrimSpace(*in.Author) == "" {
		return "", "", "", ErrUnprocessable("author required")
	}
	if in.Description == nil {
		return "", "", "", ErrUnprocessable("description required")
	}
	return strings.TrimSpace(*in.Title), strings.TrimSpace(*in.Author), *in.Description, nil
}

// POST /book
func (s *Service) Create(ctx context.Context, in BookRequest) (BookResponse, error) {
	title, author, desc, err := in.validate()
	if err != nil {
		return BookResponse{}, err
	}
	b := &Book{Title: title, Author: author, Description: desc}
	if err := s.store.Create(ctx, b); err != nil {
		return BookResponse{}, err
	}
	s.log.Info(ctx, "book created", "book_id", b.BookID)
	return toResponse(*b), nil
}

func (s *Service) Get(ctx context.Context, id uint64) (BookResponse, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	return toResponse(*b), nil
}

func (s *Service) List(ctx context.Context) ([]BookResponse, error) {
	bs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(bs), nil
}

func (s *Service) FindByTitle(ctx context.Context, title string) ([]BookResponse, error) {
	bs, err := s.store.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return toResponses(bs), nil
}

// PUT /book/:bookId replaces title, author and description.
func (s *Service) Update(ctx context.Context, id uint64, in BookRequest) (BookResponse, error) {
	title, author, desc, err := in.validate()
	if err != nil {
		return BookResponse{}, err
	}
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	b.Title, b.Author, b.Description = title, author, desc
	if err := s.store.Update(ctx, b); err != nil {
		return BookResponse{}, err
	}
	return toResponse(*b), nil
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "book deleted", "book_id", id)
	return nil
}

func toResponses(bs []Book) []BookResponse {
	out := make([]BookResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toResponse(b))
	}
	return out
}
