package notifications

// Kind selects the subject and body template of a message.
type Kind string

const (
	KindDeadlineExpiredUser  Kind = "DEADLINE_EXPIRED_USER"
	KindDeadlineExpiredAdmin Kind = "DEADLINE_EXPIRED_ADMIN"
	KindReminder             Kind = "REMINDER"
	KindReturned             Kind = "RETURNED"
)

type template struct {
	subject string
	body    string
}

// Positional arguments shared by all templates:
//
//	%[1]v book id, %[2]s start date, %[3]s finish date, %[4]s username
//
// Admin-facing variants (and RETURNED) add %[5]s the user's email; REMINDER adds
// %[5]s the inflected days-left string.
var templates = map[string]map[Kind]template{
	"ru": {
		KindDeadlineExpiredUser: {
			subject: "Срок возврата книги истёк",
			body: "Здравствуйте, %[4]s!\n\n" +
				"Срок возврата книги №%[1]v истёк.\n" +
				"Дата выдачи: %[2]s\n" +
				"Дата возврата: %[3]s\n\n" +
				"Пожалуйста, верните книгу в библиотеку как можно скорее.",
		},
		KindDeadlineExpiredAdmin: {
			subject: "Срок возврата книги истёк",
			body: "Пользователь %[4]s (%[5]s) не вернул книгу №%[1]v в срок.\n" +
				"Дата выдачи: %[2]s\n" +
				"Дата возврата: %[3]s",
		},
		KindReminder: {
			subject: "Напоминание о возврате книги",
			body: "Здравствуйте, %[4]s!\n\n" +
				"До окончания срока возврата книги №%[1]v осталось %[5]s.\n" +
				"Дата выдачи: %[2]s\n" +
				"Дата возврата: %[3]s",
		},
		KindReturned: {
			subject: "Книга возвращена",
			body: "Книга №%[1]v, выданная пользователю %[4]s (%[5]s), возвращена в библиотеку.\n" +
				"Дата выдачи: %[2]s\n" +
				"Дата возврата: %[3]s",
		},
	},
	"en": {
		KindDeadlineExpiredUser: {
			subject: "Book return deadline has expired",
			body: "Hello, %[4]s!\n\n" +
				"The return deadline for book #%[1]v has expired.\n" +
				"Issued: %[2]s\n" +
				"Due: %[3]s\n\n" +
				"Please return the book to the library as soon as possible.",
		},
		KindDeadlineExpiredAdmin: {
			subject: "Book return deadline has expired",
			body: "User %[4]s (%[5]s) did not return book #%[1]v in time.\n" +
				"Issued: %[2]s\n" +
				"Due: %[3]s",
		},
		KindReminder: {
			subject: "Book return reminder",
			body: "Hello, %[4]s!\n\n" +
				"There are %[5]s left to return book #%[1]v.\n" +
				"Issued: %[2]s\n" +
				"Due: %[3]s",
		},
		KindReturned: {
			subject: "Book returned",
			body: "Book #%[1]v issued to %[4]s (%[5]s) has been returned.\n" +
				"Issued: %[2]s\n" +
				"Due: %[3]s",
		},
	},
}
