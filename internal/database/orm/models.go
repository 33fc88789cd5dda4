package orm

import "github.com/GoArmGo/TaskManager/internal/domain"

// userModel описывает строку таблицы users для GORM. Схема создаётся миграциями,
// AutoMigrate не используется.
type userModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Username  string
	Firstname string
	Lastname  string
	Age       int
	Slug      string
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:        m.ID,
		Username:  m.Username,
		Firstname: m.Firstname,
		Lastname:  m.Lastname,
		Age:       m.Age,
		Slug:      m.Slug,
	}
}

type taskModel struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	Title    string
	Content  string
	Priority int
	UserID   int64
}

func (taskModel) TableName() string {
	return "tasks"
}

func (m taskModel) toDomain() domain.Task {
	return domain.Task{
		ID:       m.ID,
		Title:    m.Title,
		Content:  m.Content,
		Priority: m.Priority,
		UserID:   m.UserID,
	}
}
