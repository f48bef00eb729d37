package repositories

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yigit/lms/internal/app/models/dto"
)

func TestListByTeacherQueryPaginates(t *testing.T) {
	r := NewCourseRepository(nil)

	sql, args, err := r.listByTeacherQuery(7, dto.PageRequest{Page: 2, Size: 10}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}

	if !strings.Contains(sql, "WHERE teacher_id = $1") {
		t.Fatalf("missing teacher filter: %s", sql)
	}
	if !strings.HasSuffix(sql, "ORDER BY id ASC LIMIT 10 OFFSET 20") {
		t.Fatalf("unexpected paging clause: %s", sql)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(7)}) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestListByStudentQueryJoinsEnrolments(t *testing.T) {
	r := NewCourseRepository(nil)

	sql, args, err := r.listByStudentQuery(3, dto.PageRequest{Page: 0, Size: 5}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}

	for _, want := range []string{
		"FROM course_students cs",
		"JOIN courses c ON c.id = cs.course_id",
		"LEFT JOIN users t ON t.id = c.teacher_id",
		"WHERE cs.student_id = $1",
		"LIMIT 5",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected %q in %s", want, sql)
		}
	}
	if len(args) != 1 || args[0] != int64(3) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestAddStudentsQueryIgnoresExistingEnrolments(t *testing.T) {
	r := NewCourseRepository(nil)

	sql, args, err := r.addStudentsQuery(1, []int64{4, 5}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}

	want := "INSERT INTO course_students (course_id,student_id) VALUES ($1,$2),($3,$4) ON CONFLICT (course_id, student_id) DO NOTHING"
	if sql != want {
		t.Fatalf("sql:\n got=%s\nwant=%s", sql, want)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(1), int64(4), int64(1), int64(5)}) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestGetByIDQueryLoadsTeacher(t *testing.T) {
	r := NewCourseRepository(nil)

	sql, _, err := r.getByIDQuery(9).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(sql, "LEFT JOIN users t ON t.id = c.teacher_id") || !strings.Contains(sql, "WHERE c.id = $1") {
		t.Fatalf("unexpected query: %s", sql)
	}
}

func TestListLessonsQueryOrdersByCreation(t *testing.T) {
	r := NewLessonRepository(nil)

	sql, _, err := r.listByCourseQuery(2).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.HasSuffix(sql, "WHERE course_id = $1 ORDER BY created_at ASC, id ASC") {
		t.Fatalf("unexpected query: %s", sql)
	}
}
