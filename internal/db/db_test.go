package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/kotenev/yokadi/internal/dump"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "yokadi.db"))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.InitSchema(); err != nil {
		t.Fatalf("InitSchema() unexpected error: %v", err)
	}
	return database
}

func TestInitSchema_Idempotent(t *testing.T) {
	database := openTestDB(t)
	if err := database.InitSchema(); err != nil {
		t.Errorf("second InitSchema() unexpected error: %v", err)
	}
}

func TestTaskCRUD(t *testing.T) {
	database := openTestDB(t)

	due := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	task := &dump.Task{
		UUID:         "t1",
		ProjectUUID:  "p1",
		Title:        "Water plants",
		Description:  "Balcony only",
		Status:       "new",
		Urgency:      3,
		CreationDate: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		DueDate:      &due,
		Keywords:     map[string]int{"home": 1, "recurring": 7},
	}

	if err := database.UpsertTask(task); err != nil {
		t.Fatalf("UpsertTask() unexpected error: %v", err)
	}

	got, err := database.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, task) {
		t.Errorf("GetTask() mismatch:\ngot  %+v\nwant %+v", got, task)
	}

	// Upsert again with changed fields updates in place.
	task.Status = "done"
	doneDate := due.Add(24 * time.Hour)
	task.DoneDate = &doneDate
	if err := database.UpsertTask(task); err != nil {
		t.Fatalf("UpsertTask() update unexpected error: %v", err)
	}
	got, err = database.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask() after update unexpected error: %v", err)
	}
	if got.Status != "done" || got.DoneDate == nil || !got.DoneDate.Equal(doneDate) {
		t.Errorf("GetTask() after update = %+v, want status done with done date", got)
	}

	if err := database.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask() unexpected error: %v", err)
	}
	if _, err := database.GetTask("t1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetTask() after delete error = %v, want sql.ErrNoRows", err)
	}

	// Deleting an absent row is not an error.
	if err := database.DeleteTask("t1"); err != nil {
		t.Errorf("DeleteTask() on absent row unexpected error: %v", err)
	}
}

func TestListTasks_Order(t *testing.T) {
	database := openTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, uuid := range []string{"t-late", "t-early", "t-mid"} {
		offsets := map[string]time.Duration{"t-early": 0, "t-mid": time.Hour, "t-late": 2 * time.Hour}
		task := &dump.Task{
			UUID:         uuid,
			ProjectUUID:  "p1",
			Title:        "task",
			Status:       "new",
			Urgency:      i,
			CreationDate: base.Add(offsets[uuid]),
		}
		if err := database.UpsertTask(task); err != nil {
			t.Fatal(err)
		}
	}

	tasks, err := database.ListTasks()
	if err != nil {
		t.Fatalf("ListTasks() unexpected error: %v", err)
	}
	var uuids []string
	for _, task := range tasks {
		uuids = append(uuids, task.UUID)
	}
	want := []string{"t-early", "t-mid", "t-late"}
	if !reflect.DeepEqual(uuids, want) {
		t.Errorf("ListTasks() order = %v, want %v", uuids, want)
	}
}

func TestProjectCRUD(t *testing.T) {
	database := openTestDB(t)

	project := &dump.Project{
		UUID:         "p1",
		Name:         "home",
		Active:       true,
		CreationDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := database.UpsertProject(project); err != nil {
		t.Fatalf("UpsertProject() unexpected error: %v", err)
	}

	got, err := database.GetProject("p1")
	if err != nil {
		t.Fatalf("GetProject() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, project) {
		t.Errorf("GetProject() mismatch:\ngot  %+v\nwant %+v", got, project)
	}

	project.Active = false
	if err := database.UpsertProject(project); err != nil {
		t.Fatal(err)
	}
	got, err = database.GetProject("p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Active {
		t.Error("GetProject() after update still active")
	}

	if err := database.DeleteProject("p1"); err != nil {
		t.Fatalf("DeleteProject() unexpected error: %v", err)
	}
	projects, err := database.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("ListProjects() after delete = %v, want empty", projects)
	}
}

func TestAliasCRUD(t *testing.T) {
	database := openTestDB(t)

	alias := &dump.Alias{UUID: "a1", Name: "ls", Command: "t_list"}
	if err := database.UpsertAlias(alias); err != nil {
		t.Fatalf("UpsertAlias() unexpected error: %v", err)
	}

	aliases, err := database.ListAliases()
	if err != nil {
		t.Fatalf("ListAliases() unexpected error: %v", err)
	}
	if len(aliases) != 1 || !reflect.DeepEqual(aliases[0], alias) {
		t.Errorf("ListAliases() = %v, want [%+v]", aliases, alias)
	}

	alias.Command = "t_list -a"
	if err := database.UpsertAlias(alias); err != nil {
		t.Fatal(err)
	}
	aliases, err = database.ListAliases()
	if err != nil {
		t.Fatal(err)
	}
	if len(aliases) != 1 || aliases[0].Command != "t_list -a" {
		t.Errorf("ListAliases() after update = %v", aliases)
	}

	if err := database.DeleteAlias("a1"); err != nil {
		t.Fatalf("DeleteAlias() unexpected error: %v", err)
	}
	aliases, err = database.ListAliases()
	if err != nil {
		t.Fatal(err)
	}
	if len(aliases) != 0 {
		t.Errorf("ListAliases() after delete = %v, want empty", aliases)
	}
}

func TestDanglingProjectReference(t *testing.T) {
	database := openTestDB(t)

	// A task pointing at an unknown project must still import; divergences
	// are surfaced by the integrity check, not by the storage layer.
	task := &dump.Task{
		UUID:         "t1",
		ProjectUUID:  "no-such-project",
		Title:        "orphan",
		Status:       "new",
		CreationDate: time.Now().UTC(),
	}
	if err := database.UpsertTask(task); err != nil {
		t.Errorf("UpsertTask() with dangling project reference: %v", err)
	}
}
