package handler

import (
	"time"

	"classconnect/internal/model"
)

type userJSON struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       model.Role `json:"role"`
	Department string     `json:"department,omitempty"`
	IsApproved bool       `json:"isApproved"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toUserJSON(u *model.User) userJSON {
	return userJSON{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		IsApproved: u.IsApproved,
		CreatedAt:  u.CreatedAt,
	}
}

type partyJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

type appointmentJSON struct {
	ID        string                  `json:"id"`
	StudentID string                  `json:"studentId"`
	TeacherID string                  `json:"teacherId"`
	StartTime time.Time               `json:"startTime"`
	EndTime   time.Time               `json:"endTime"`
	Purpose   string                  `json:"purpose"`
	Status    model.AppointmentStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
	Student   partyJSON               `json:"student"`
	Teacher   partyJSON               `json:"teacher"`
}

func toAppointmentJSON(a *model.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:        a.ID,
		StudentID: a.StudentID,
		TeacherID: a.TeacherID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Purpose:   a.Purpose,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Student:   partyJSON{ID: a.StudentID, Name: a.StudentName, Email: a.StudentEmail},
		Teacher:   partyJSON{ID: a.TeacherID, Name: a.TeacherName, Email: a.TeacherEmail, Department: a.TeacherDept},
	}
}

type messageJSON struct {
	ID            string    `json:"_id"`
	AppointmentID string    `json:"appointmentId"`
	SenderID      string    `json:"senderId"`
	SenderName    string    `json:"senderName"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toMessageJSON(m *model.Message) messageJSON {
	return messageJSON{
		ID:            m.ID,
		AppointmentID: m.AppointmentID,
		SenderID:      m.SenderID,
		SenderName:    m.SenderName,
		Text:          m.Text,
		CreatedAt:     m.CreatedAt,
	}
}
