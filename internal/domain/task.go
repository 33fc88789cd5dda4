package domain

// Task представляет задачу пользователя,
// соответствует таблице tasks в бд
type Task struct {
	ID       int64  `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	Content  string `json:"content" db:"content"`
	Priority int    `json:"priority" db:"priority"`
	UserID   int64  `json:"user_id" db:"user_id"`
}

// TaskUpdate содержит изменяемые поля задачи. ID и UserID не меняются никогда.
type TaskUpdate struct {
	Title    string
	Content  string
	Priority int
}
