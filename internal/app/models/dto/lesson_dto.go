package dto

// CreateLessonDto is the teacher "create lesson" form. The owning course is
// always taken from the request path, so the form carries no course id.
type CreateLessonDto struct {
	Title   string `form:"title" json:"title" validate:"required,notblank,min=3,max=255" example:"Переменные и типы"`
	Content string `form:"content" json:"content" validate:"required,notblank,min=10" example:"Материал урока..."`
}
