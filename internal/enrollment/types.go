package enrollment

// EnrollRequest 选课请求，学生为当前登录用户
type EnrollRequest struct {
	CourseID uint `json:"courseId" validate:"required" example:"1"`
}
