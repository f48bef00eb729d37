package views

import (
	"github.com/gin-gonic/gin"
)

// View names rendered by the course pages.
const (
	TeacherCreateLesson = "teacherCreateLesson"
	TeacherCourse       = "teacherCourse"
	TeacherCourses      = "teacherCourses"
	StudentCourse       = "studentCourse"
	StudentCourses      = "studentCourses"
	AdminCreateCourse   = "adminCreateCourse"
	AdminAssignCourse   = "adminAssignCourse"
	AdminAssignTeacher  = "adminAssignTeacher"
)

// Model is the set of named values handed to a view.
type Model map[string]interface{}

// View is a named page together with its model and HTTP status.
type View struct {
	Name   string
	Status int
	Model  Model
}

// Renderer writes a view to the response.
type Renderer interface {
	Render(c *gin.Context, v View)
}

// JSONRenderer writes {"view": name, "model": {...}}. Used when no template
// directory is configured, and by API clients.
type JSONRenderer struct{}

func (JSONRenderer) Render(c *gin.Context, v View) {
	c.JSON(v.Status, gin.H{
		"view":  v.Name,
		"model": v.Model,
	})
}

// HTMLRenderer executes "<name>.html" from the templates loaded into the
// gin engine.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(c *gin.Context, v View) {
	c.HTML(v.Status, v.Name+".html", gin.H(v.Model))
}

// New picks the HTML renderer when templates are configured.
func New(templatesPath string) Renderer {
	if templatesPath != "" {
		return HTMLRenderer{}
	}
	return JSONRenderer{}
}
