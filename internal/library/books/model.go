package books

type Book struct {
	BookID      uint64
	Title       string
	Author      string
	Description string
	IsReserved  bool
}
