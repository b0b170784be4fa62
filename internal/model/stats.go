package model

// Stats is the admin dashboard aggregate.
type Stats struct {
	Students        int `json:"students"`
	Teachers        int `json:"teachers"`
	PendingTeachers int `json:"pendingTeachers"`
	Appointments    int `json:"appointments"`

	TopTeachers []TeacherCount `json:"topTeachers"`
}

// TeacherCount ranks a teacher by approved appointments.
type TeacherCount struct {
	TeacherID string `json:"teacherId"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}
