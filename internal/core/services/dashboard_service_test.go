package services_test

import (
	"context"
	"testing"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Dashboard(t *testing.T) {
	f := newFixture(t)
	first := f.book(t, schoolA, 2)
	second := f.book(t, schoolA, 1)
	f.book(t, schoolB, 7)
	studentID := f.student(t, schoolA)
	teacherID := f.teacher(t, schoolA)

	late, err := f.issue(schoolA, first, studentID, f.clock.Now())
	require.NoError(t, err)
	_, err = f.circulation.Issue(f.ctx, &services.IssueInput{
		SchoolName: schoolA, BookID: second, BorrowerType: "teacher", BorrowerID: teacherID, DueDate: f.clock.Now().Add(10 * day),
	})
	require.NoError(t, err)
	returned, err := f.issue(schoolA, first, studentID, f.clock.Now())
	require.NoError(t, err)

	f.clock.Advance(2 * day)
	_, err = f.circulation.Return(f.ctx, schoolA, returned.ID, nil)
	require.NoError(t, err)
	_, err = f.circulation.RestoreAvailability(f.ctx, schoolA, "tester")
	require.NoError(t, err)

	data, err := f.dashboard.GetDashboard(f.ctx, schoolA)
	require.NoError(t, err)

	assert.Equal(t, 2, data.TotalTitles)
	assert.Equal(t, 3, data.TotalCopies)
	assert.Equal(t, 1, data.AvailableCopies)
	assert.Equal(t, 1, data.OutOfStockTitles)
	assert.Equal(t, 2, data.ActiveLoans)
	assert.Equal(t, 1, data.OverdueLoans)
	assert.Equal(t, 1, data.ReturnedLoans)
	assert.True(t, decimal.NewFromInt(2).Equal(data.OutstandingFines), "outstanding = %s", data.OutstandingFines)
	assert.True(t, decimal.NewFromInt(2).Equal(data.CollectedFines), "collected = %s", data.CollectedFines)
	assert.Equal(t, 1, data.ByBorrowerType["student"].Active)
	assert.Equal(t, 1, data.ByBorrowerType["student"].Overdue)
	assert.Equal(t, 1, data.ByBorrowerType["teacher"].Active)
	assert.Equal(t, int64(1), data.TotalStudents)
	assert.Equal(t, int64(1), data.TotalTeachers)
	assert.NotNil(t, data.LastReconciliation)
	assert.NotZero(t, late.ID)

	empty, err := f.dashboard.GetDashboard(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTitles)
	assert.Nil(t, empty.LastReconciliation)
}

func Test_Dashboard_BorrowerCountFailure(t *testing.T) {
	f := newFixture(t)
	f.book(t, schoolA, 1)
	f.student(t, schoolA)

	require.NoError(t, f.db.Migrator().DropTable(&models.Teacher{}))

	data, err := f.dashboard.GetDashboard(f.ctx, schoolA)
	assert.Error(t, err)
	assert.Nil(t, data)
}

func Test_Cron_RunsEveryTenant(t *testing.T) {
	f := newFixture(t)

	for _, school := range []string{schoolA, schoolB} {
		bookID := f.book(t, school, 2)
		studentID := f.student(t, school)
		_, err := f.issue(school, bookID, studentID, f.clock.Now())
		require.NoError(t, err)
		require.NoError(t, f.borrowers.DeleteStudent(f.ctx, school, studentID))
	}

	cron := services.NewCronService(f.circulation, f.auth, f.cfg.Circulation)
	cron.RunReconciliation(f.ctx)

	for _, school := range []string{schoolA, schoolB} {
		runs, err := f.circulation.ListRuns(f.ctx, school, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2, school)
		assert.Equal(t, "cron", runs[0].TriggeredBy)

		loans, err := f.circulation.ListLoans(f.ctx, school, services.LoanQuery{})
		require.NoError(t, err)
		assert.Empty(t, loans)
	}
}

func Test_Cron_OverdueRefresh(t *testing.T) {
	f := newFixture(t)
	bookID := f.book(t, schoolA, 1)
	studentID := f.student(t, schoolA)
	_, err := f.issue(schoolA, bookID, studentID, f.clock.Now())
	require.NoError(t, err)
	f.clock.Advance(3 * day)

	cron := services.NewCronService(f.circulation, nil, f.cfg.Circulation)
	cron.RunOverdueRefresh(f.ctx)

	changed, err := f.circulation.RefreshOverdue(f.ctx, schoolA)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func Test_Cron_StartRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	cfg := f.cfg.Circulation
	cfg.OverdueCron = "not a schedule"

	cron := services.NewCronService(f.circulation, f.auth, cfg)
	assert.Error(t, cron.Start())
}
