package books

// ===== Requests =====

// BookRequest is used for both create and full update. All fields are required.
type BookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
}

// ===== Responses =====

type BookResponse struct {
	BookID      uint64 `json:"book_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	IsReserved  bool   `json:"is_reserved"`
}

func toResponse(b Book) BookResponse {
	return BookResponse{
		BookID:      b.BookID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		IsReserved:  b.IsReserved,
	}
}
