package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Appointment struct {
	ID        string
	StudentID string
	TeacherID string
	StartTime time.Time
	EndTime   time.Time
	Purpose   string
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// joined display fields, populated by list queries
	StudentName  string
	StudentEmail string
	TeacherName  string
	TeacherEmail string
	TeacherDept  string
}

type Message struct {
	ID            string
	AppointmentID string
	SenderID      string
	Text          string
	CreatedAt     time.Time

	SenderName string
}
