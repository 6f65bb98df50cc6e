package permissions

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Calendar{},
		&models.Event{},
		&models.EventAttendee{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, creator *models.User, isPublic bool) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:      "test-project",
		Status:    models.ProjectStatusActive,
		IsPublic:  isPublic,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func addTestMember(t *testing.T, db *gorm.DB, project *models.Project, user *models.User, role models.ProjectRole, active bool) {
	t.Helper()

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      role,
		IsActive:  active,
		JoinedAt:  time.Now(),
	}
	require.NoError(t, db.Create(member).Error)
}

func TestProjectEvaluator_CanRead(t *testing.T) {
	db := setupTestDB(t)
	eval := NewProjectEvaluator(db)

	creator := createTestUser(t, db, "creator", models.UserRoleDeveloper)
	member := createTestUser(t, db, "member", models.UserRoleDeveloper)
	outsider := createTestUser(t, db, "outsider", models.UserRoleDeveloper)
	former := createTestUser(t, db, "former", models.UserRoleDeveloper)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	private := createTestProject(t, db, creator, false)
	addTestMember(t, db, private, creator, models.ProjectRoleOwner, true)
	addTestMember(t, db, private, member, models.ProjectRoleViewer, true)
	addTestMember(t, db, private, former, models.ProjectRoleDeveloper, false)

	public := createTestProject(t, db, creator, true)

	cases := []struct {
		name    string
		user    *models.User
		project *models.Project
		want    bool
	}{
		{"creator reads private", creator, private, true},
		{"active member reads private", member, private, true},
		{"outsider denied private", outsider, private, false},
		{"deactivated member denied private", former, private, false},
		{"admin reads private", admin, private, true},
		{"anonymous denied private", nil, private, false},
		{"anonymous reads public", nil, public, true},
		{"outsider reads public", outsider, public, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eval.CanRead(tc.user, tc.project)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestProjectEvaluator_CanManage(t *testing.T) {
	db := setupTestDB(t)
	eval := NewProjectEvaluator(db)

	owner := createTestUser(t, db, "owner", models.UserRoleDeveloper)
	manager := createTestUser(t, db, "manager", models.UserRoleDeveloper)
	viewer := createTestUser(t, db, "viewer", models.UserRoleDeveloper)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	project := createTestProject(t, db, owner, false)
	addTestMember(t, db, project, owner, models.ProjectRoleOwner, true)
	addTestMember(t, db, project, manager, models.ProjectRoleManager, true)
	addTestMember(t, db, project, viewer, models.ProjectRoleViewer, true)

	cases := []struct {
		name string
		user *models.User
		want bool
	}{
		{"owner manages", owner, true},
		{"manager manages", manager, true},
		{"viewer denied", viewer, false},
		{"admin manages", admin, true},
		{"anonymous denied", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eval.CanManage(tc.user, project)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestProjectEvaluator_AccessibleProjectIDs(t *testing.T) {
	db := setupTestDB(t)
	eval := NewProjectEvaluator(db)

	alice := createTestUser(t, db, "alice", models.UserRoleDeveloper)
	bob := createTestUser(t, db, "bob", models.UserRoleDeveloper)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	owned := createTestProject(t, db, alice, false)
	addTestMember(t, db, owned, alice, models.ProjectRoleOwner, true)

	joined := createTestProject(t, db, bob, false)
	addTestMember(t, db, joined, bob, models.ProjectRoleOwner, true)
	addTestMember(t, db, joined, alice, models.ProjectRoleDeveloper, true)

	hidden := createTestProject(t, db, bob, false)
	addTestMember(t, db, hidden, bob, models.ProjectRoleOwner, true)

	public := createTestProject(t, db, bob, true)

	ids, err := eval.AccessibleProjectIDs(alice)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{owned.ID, joined.ID, public.ID}, ids)

	ids, err = eval.AccessibleProjectIDs(nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{public.ID}, ids)

	ids, err = eval.AccessibleProjectIDs(admin)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{owned.ID, joined.ID, hidden.ID, public.ID}, ids)
}

func TestTaskEvaluator_CanAccess(t *testing.T) {
	db := setupTestDB(t)
	projectEval := NewProjectEvaluator(db)
	eval := NewTaskEvaluator(db, projectEval)

	creator := createTestUser(t, db, "creator", models.UserRoleDeveloper)
	assignee := createTestUser(t, db, "assignee", models.UserRoleDeveloper)
	member := createTestUser(t, db, "member", models.UserRoleDeveloper)
	outsider := createTestUser(t, db, "outsider", models.UserRoleDeveloper)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	project := createTestProject(t, db, creator, false)
	addTestMember(t, db, project, creator, models.ProjectRoleOwner, true)
	addTestMember(t, db, project, member, models.ProjectRoleViewer, true)

	projectTask := &models.Task{
		Title:     "in-project",
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		ProjectID: &project.ID,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(projectTask).Error)

	orphanTask := &models.Task{
		Title:     "standalone",
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(orphanTask).Error)

	require.NoError(t, db.Create(&models.TaskAssignment{
		TaskID:     orphanTask.ID,
		UserID:     assignee.ID,
		AssignedBy: creator.ID,
		IsActive:   true,
	}).Error)

	cases := []struct {
		name string
		user *models.User
		task *models.Task
		want bool
	}{
		{"creator accesses own task", creator, projectTask, true},
		{"project member inherits access", member, projectTask, true},
		{"outsider denied project task", outsider, projectTask, false},
		{"assignee accesses orphan task", assignee, orphanTask, true},
		{"outsider denied orphan task", outsider, orphanTask, false},
		{"member without relationship denied orphan task", member, orphanTask, false},
		{"admin accesses everything", admin, orphanTask, true},
		{"anonymous denied", nil, projectTask, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eval.CanAccess(tc.user, tc.task)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestTaskEvaluator_InactiveAssignmentDenied(t *testing.T) {
	db := setupTestDB(t)
	eval := NewTaskEvaluator(db, NewProjectEvaluator(db))

	creator := createTestUser(t, db, "creator", models.UserRoleDeveloper)
	former := createTestUser(t, db, "former", models.UserRoleDeveloper)

	task := &models.Task{
		Title:     "standalone",
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(task).Error)

	require.NoError(t, db.Create(&models.TaskAssignment{
		TaskID:     task.ID,
		UserID:     former.ID,
		AssignedBy: creator.ID,
		IsActive:   false,
	}).Error)

	got, err := eval.CanAccess(former, task)
	require.NoError(t, err)
	require.False(t, got)
}

func createTestCalendar(t *testing.T, db *gorm.DB, owner *models.User, isPublic bool) *models.Calendar {
	t.Helper()

	calendar := &models.Calendar{
		Name:     "test-calendar",
		IsPublic: isPublic,
		OwnerID:  owner.ID,
	}
	require.NoError(t, db.Create(calendar).Error)
	return calendar
}

func createTestEvent(t *testing.T, db *gorm.DB, calendar *models.Calendar, creator *models.User) *models.Event {
	t.Helper()

	start := time.Now()
	event := &models.Event{
		Title:      "test-event",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		CalendarID: calendar.ID,
		CreatorID:  creator.ID,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func TestCalendarEvaluator_EventAccess(t *testing.T) {
	db := setupTestDB(t)
	eval := NewCalendarEvaluator(db)

	owner := createTestUser(t, db, "owner", models.UserRoleDeveloper)
	attendee := createTestUser(t, db, "attendee", models.UserRoleDeveloper)
	outsider := createTestUser(t, db, "outsider", models.UserRoleDeveloper)
	admin := createTestUser(t, db, "admin", models.UserRoleAdmin)

	private := createTestCalendar(t, db, owner, false)
	privateEvent := createTestEvent(t, db, private, owner)

	require.NoError(t, db.Create(&models.EventAttendee{
		EventID:  privateEvent.ID,
		UserID:   attendee.ID,
		Response: models.AttendeeResponsePending,
	}).Error)

	public := createTestCalendar(t, db, owner, true)
	publicEvent := createTestEvent(t, db, public, owner)

	readCases := []struct {
		name  string
		user  *models.User
		event *models.Event
		want  bool
	}{
		{"owner reads private event", owner, privateEvent, true},
		{"attendee reads private event", attendee, privateEvent, true},
		{"outsider denied private event", outsider, privateEvent, false},
		{"anonymous denied private event", nil, privateEvent, false},
		{"anonymous reads public event", nil, publicEvent, true},
		{"admin reads private event", admin, privateEvent, true},
	}

	for _, tc := range readCases {
		t.Run("read/"+tc.name, func(t *testing.T) {
			got, err := eval.CanReadEvent(tc.user, tc.event)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	modifyCases := []struct {
		name  string
		user  *models.User
		event *models.Event
		want  bool
	}{
		{"owner modifies", owner, privateEvent, true},
		{"attendee cannot modify", attendee, privateEvent, false},
		{"outsider cannot modify", outsider, privateEvent, false},
		{"anonymous cannot modify public event", nil, publicEvent, false},
		{"admin modifies", admin, privateEvent, true},
	}

	for _, tc := range modifyCases {
		t.Run("modify/"+tc.name, func(t *testing.T) {
			got, err := eval.CanModifyEvent(tc.user, tc.event)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCalendarEvaluator_AccessibleCalendarIDs(t *testing.T) {
	db := setupTestDB(t)
	eval := NewCalendarEvaluator(db)

	alice := createTestUser(t, db, "alice", models.UserRoleDeveloper)
	bob := createTestUser(t, db, "bob", models.UserRoleDeveloper)

	owned := createTestCalendar(t, db, alice, false)
	hidden := createTestCalendar(t, db, bob, false)
	public := createTestCalendar(t, db, bob, true)

	ids, err := eval.AccessibleCalendarIDs(alice)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{owned.ID, public.ID}, ids)
	require.NotContains(t, ids, hidden.ID)

	ids, err = eval.AccessibleCalendarIDs(nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{public.ID}, ids)
}
