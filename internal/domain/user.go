package domain

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID        int64  `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Firstname string `json:"firstname" db:"firstname"`
	Lastname  string `json:"lastname" db:"lastname"`
	Age       int    `json:"age" db:"age"`
	Slug      string `json:"slug" db:"slug"`
}

// UserUpdate описывает набор полей, которые можно изменить у существующего пользователя.
// Slug не передаётся клиентом, он пересчитывается из Firstname.
type UserUpdate struct {
	Firstname string
	Lastname  string
	Age       int
	Slug      string
}
