package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/breakthefear/fees-api/internal/models"
)

type mockStudentRepo struct {
	students           map[string]*models.StudentDetail
	enrollments        map[string][]models.Enrollment
	total              int
	created            *models.Student
	createdEnrollments []models.Enrollment
	updated            *models.Student
	deleted            []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var list []models.StudentDetail
	for _, s := range m.students {
		list = append(list, *s)
	}
	return list, len(list), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		copy := *s
		copy.Enrollments = m.enrollments[id]
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ListEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return m.enrollments[studentID], nil
}

func (m *mockStudentRepo) Count(ctx context.Context) (int, error) {
	return m.total, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student, enrollments []models.Enrollment) error {
	if student.ID == "" {
		student.ID = "new-student"
	}
	if m.students == nil {
		m.students = make(map[string]*models.StudentDetail)
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string][]models.Enrollment)
	}
	m.students[student.ID] = &models.StudentDetail{Student: *student}
	m.enrollments[student.ID] = enrollments
	m.created = student
	m.createdEnrollments = enrollments
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student, enrollments []models.Enrollment) error {
	m.students[student.ID] = &models.StudentDetail{Student: *student}
	m.enrollments[student.ID] = enrollments
	m.updated = student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCourseRepo struct {
	courses    map[string]*models.Course
	dependents int
	deleted    []string
}

func (m *mockCourseRepo) List(ctx context.Context, batchID string) ([]models.Course, error) {
	var list []models.Course
	for _, c := range m.courses {
		if batchID == "" || c.BatchID == batchID {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "new-course"
	}
	if m.courses == nil {
		m.courses = make(map[string]*models.Course)
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCourseRepo) CountDependents(ctx context.Context, id string) (int, error) {
	return m.dependents, nil
}

type mockMonthRepo struct {
	byCourse   map[string][]models.Month
	dependents int
	deleted    []string
}

func (m *mockMonthRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Month, error) {
	return m.byCourse[courseID], nil
}

func (m *mockMonthRepo) FindByID(ctx context.Context, id string) (*models.Month, error) {
	for _, months := range m.byCourse {
		for i := range months {
			if months[i].ID == id {
				return &months[i], nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockMonthRepo) Create(ctx context.Context, month *models.Month) error {
	if month.ID == "" {
		month.ID = "new-month"
	}
	if m.byCourse == nil {
		m.byCourse = make(map[string][]models.Month)
	}
	m.byCourse[month.CourseID] = append(m.byCourse[month.CourseID], *month)
	return nil
}

func (m *mockMonthRepo) Update(ctx context.Context, month *models.Month) error {
	months := m.byCourse[month.CourseID]
	for i := range months {
		if months[i].ID == month.ID {
			months[i] = *month
		}
	}
	return nil
}

func (m *mockMonthRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockMonthRepo) CountDependents(ctx context.Context, id string) (int, error) {
	return m.dependents, nil
}

type mockPaymentRepo struct {
	payments []models.PaymentDetail
	total    int
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment, allocations []models.PaymentAllocation) error {
	if payment.ID == "" {
		payment.ID = fmt.Sprintf("pay-%d", len(m.payments)+1)
	}
	for i := range allocations {
		allocations[i].PaymentID = payment.ID
	}
	m.payments = append(m.payments, models.PaymentDetail{Payment: *payment, Allocations: allocations})
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			return &m.payments[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error) {
	var list []models.PaymentDetail
	for _, p := range m.payments {
		if p.StudentID == studentID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (m *mockPaymentRepo) List(ctx context.Context, page, pageSize int) ([]models.Payment, int, error) {
	var list []models.Payment
	for _, p := range m.payments {
		list = append(list, p.Payment)
	}
	return list, len(list), nil
}

func (m *mockPaymentRepo) Count(ctx context.Context) (int, error) {
	return m.total, nil
}

type mockActivityRepo struct {
	entries []models.Activity
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	m.entries = append(m.entries, *activity)
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, limit int) ([]models.Activity, error) {
	return m.entries, nil
}

func (m *mockActivityRepo) lastType() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].Type
}

type mockInstitutionRepo struct {
	institutions map[string]*models.Institution
	students     int
	deleted      []string
}

func (m *mockInstitutionRepo) List(ctx context.Context) ([]models.Institution, error) {
	var list []models.Institution
	for _, i := range m.institutions {
		list = append(list, *i)
	}
	return list, nil
}

func (m *mockInstitutionRepo) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	if i, ok := m.institutions[id]; ok {
		return i, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstitutionRepo) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == "" {
		institution.ID = "new-institution"
	}
	if m.institutions == nil {
		m.institutions = make(map[string]*models.Institution)
	}
	m.institutions[institution.ID] = institution
	return nil
}

func (m *mockInstitutionRepo) Update(ctx context.Context, institution *models.Institution) error {
	m.institutions[institution.ID] = institution
	return nil
}

func (m *mockInstitutionRepo) Delete(ctx context.Context, id string) error {
	delete(m.institutions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockInstitutionRepo) CountStudents(ctx context.Context, id string) (int, error) {
	return m.students, nil
}

type mockBatchRepo struct {
	batches map[string]*models.Batch
	courses int
}

func (m *mockBatchRepo) List(ctx context.Context) ([]models.Batch, error) {
	var list []models.Batch
	for _, b := range m.batches {
		list = append(list, *b)
	}
	return list, nil
}

func (m *mockBatchRepo) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := m.batches[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBatchRepo) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = "new-batch"
	}
	if m.batches == nil {
		m.batches = make(map[string]*models.Batch)
	}
	m.batches[batch.ID] = batch
	return nil
}

func (m *mockBatchRepo) Update(ctx context.Context, batch *models.Batch) error {
	m.batches[batch.ID] = batch
	return nil
}

func (m *mockBatchRepo) Delete(ctx context.Context, id string) error {
	delete(m.batches, id)
	return nil
}

func (m *mockBatchRepo) CountCourses(ctx context.Context, id string) (int, error) {
	return m.courses, nil
}
