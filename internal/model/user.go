package model

import "time"

type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	Lecturer     *Lecturer `json:"lecturer,omitempty"`
	Student      *Student  `json:"student,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Lecturer struct {
	UserID      string `json:"user_id"`
	LecturerID  string `json:"lecturer_id"`
	IsModerator bool   `json:"is_moderator"`
}

type Student struct {
	UserID    string `json:"user_id"`
	StudentID string `json:"student_id"`
}

// Principal is the verified caller attached to a request context.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type Profile struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role,omitempty"`
	IsActive bool   `json:"is_active"`
}

type UserList struct {
	Users []UserSummary `json:"users"`
}
