package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/breakthefear/fees-api/internal/models"
)

func TestStudentRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 41, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{StudentCode: "BTF260042", Name: "Rahim Uddin", InstitutionID: "inst-1", BatchID: "batch-1"}
	enrollments := []models.Enrollment{{CourseID: "course-1", StartingMonthID: "m-1"}}
	err := repo.Create(context.Background(), student, enrollments)
	require.NoError(t, err)
	require.NotEmpty(t, student.ID)
	require.Equal(t, student.ID, enrollments[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateReplacesEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{ID: "stu-1", Name: "Rahim Uddin"}
	err := repo.Update(context.Background(), student, []models.Enrollment{{CourseID: "course-2", StartingMonthID: "m-7"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payment_allocations")).WithArgs("stu-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payment_legacy_months")).WithArgs("stu-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments")).WithArgs("stu-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments")).WithArgs("stu-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students")).WithArgs("stu-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE")).
		WithArgs("%rahim%", "inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "student_code", "name", "gender", "phone",
		"guardian_name", "guardian_phone", "address", "institution_id", "batch_id",
		"created_at", "updated_at", "institution_name", "batch_name"}).
		AddRow("stu-1", "BTF260001", "Rahim Uddin", "male", "", "", "", "", "inst-1", "batch-1",
			time.Now(), time.Now(), "City College", "Batch 2026")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN institutions i ON i.id = s.institution_id")).
		WithArgs("%rahim%", "inst-1", 20, 0).
		WillReturnRows(rows)

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		Search:        "rahim",
		InstitutionID: "inst-1",
		Page:          1,
		PageSize:      20,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, students, 1)
	require.Equal(t, "City College", *students[0].InstitutionName)
	require.NoError(t, mock.ExpectationsWereMet())
}
