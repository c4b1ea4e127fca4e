package tasks

import (
	"context"
	"testing"

	"github.com/user/tareas-go/apperror"
)

const (
	alice = 1
	bob   = 2
)

func mustCreate(t *testing.T, svc Service, userID int, req TaskRequest) *Task {
	t.Helper()
	task, err := svc.Create(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("Create(%+v): %v", req, err)
	}
	return task
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	created := mustCreate(t, svc, alice, TaskRequest{
		Title:       "Buy milk",
		Description: "Two liters",
		Priority:    "Alta",
	})

	got, err := svc.Get(ctx, created.ID, alice)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Buy milk" || got.Description != "Two liters" || got.Priority != "Alta" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.OwnerID != alice {
		t.Fatalf("OwnerID = %d, want %d", got.OwnerID, alice)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt was not set")
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := NewMemoryService()

	for _, title := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), alice, TaskRequest{Title: title})
		if !apperror.IsValidationError(err) {
			t.Fatalf("Create with title %q error = %v, want ValidationError", title, err)
		}
	}

	// Description and priority are optional.
	task := mustCreate(t, svc, alice, TaskRequest{Title: "Solo título"})
	if task.Description != "" || task.Priority != "" {
		t.Fatalf("optional fields should default empty: %+v", task)
	}
}

func TestListIsOwnerScopedAndOrdered(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	first := mustCreate(t, svc, alice, TaskRequest{Title: "first"})
	mustCreate(t, svc, bob, TaskRequest{Title: "bob's task"})
	second := mustCreate(t, svc, alice, TaskRequest{Title: "second"})

	list, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List returned %d tasks, want 2", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("List order = [%d, %d], want [%d, %d]", list[0].ID, list[1].ID, first.ID, second.ID)
	}
	for _, task := range list {
		if task.OwnerID != alice {
			t.Fatalf("foreign task leaked into list: %+v", task)
		}
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	task := mustCreate(t, svc, bob, TaskRequest{Title: "bob's secret"})

	t.Run("get", func(t *testing.T) {
		_, err := svc.Get(ctx, task.ID, alice)
		if !apperror.IsForbidden(err) {
			t.Fatalf("Get foreign task error = %v, want ForbiddenError", err)
		}
	})
	t.Run("update", func(t *testing.T) {
		_, err := svc.Update(ctx, task.ID, alice, TaskRequest{Title: "hijacked"})
		if !apperror.IsForbidden(err) {
			t.Fatalf("Update foreign task error = %v, want ForbiddenError", err)
		}
	})
	t.Run("delete", func(t *testing.T) {
		err := svc.Delete(ctx, task.ID, alice)
		if !apperror.IsForbidden(err) {
			t.Fatalf("Delete foreign task error = %v, want ForbiddenError", err)
		}
	})

	// Bob's task must be untouched by all of the above.
	got, err := svc.Get(ctx, task.ID, bob)
	if err != nil {
		t.Fatalf("owner Get after foreign attempts: %v", err)
	}
	if got.Title != "bob's secret" {
		t.Fatalf("task was mutated: %+v", got)
	}
}

func TestMissingTaskIsNotFound(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	if _, err := svc.Get(ctx, 999, alice); !apperror.IsNotFound(err) {
		t.Fatalf("Get missing error = %v, want NotFoundError", err)
	}
	if _, err := svc.Update(ctx, 999, alice, TaskRequest{Title: "x"}); !apperror.IsNotFound(err) {
		t.Fatalf("Update missing error = %v, want NotFoundError", err)
	}
	if err := svc.Delete(ctx, 999, alice); !apperror.IsNotFound(err) {
		t.Fatalf("Delete missing error = %v, want NotFoundError", err)
	}
}

func TestUpdatePreservesImmutableFields(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	created := mustCreate(t, svc, alice, TaskRequest{Title: "old", Description: "d", Priority: "Baja"})

	updated, err := svc.Update(ctx, created.ID, alice, TaskRequest{
		Title:       "new title",
		Description: "new description",
		Priority:    "Alta",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != "new title" || updated.Description != "new description" || updated.Priority != "Alta" {
		t.Fatalf("mutable fields not applied: %+v", updated)
	}
	if updated.ID != created.ID {
		t.Fatalf("ID changed on update: %d -> %d", created.ID, updated.ID)
	}
	if updated.OwnerID != created.OwnerID {
		t.Fatalf("OwnerID changed on update: %d -> %d", created.OwnerID, updated.OwnerID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("CreatedAt changed on update: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	task := mustCreate(t, svc, alice, TaskRequest{Title: "doomed"})

	if err := svc.Delete(ctx, task.ID, alice); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, task.ID, alice); !apperror.IsNotFound(err) {
		t.Fatalf("Get after delete error = %v, want NotFoundError", err)
	}
	// Deleting again is an error, not a silent success.
	if err := svc.Delete(ctx, task.ID, alice); !apperror.IsNotFound(err) {
		t.Fatalf("second Delete error = %v, want NotFoundError", err)
	}
}

func TestSearch(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	secret := mustCreate(t, svc, alice, TaskRequest{Title: "Tarea secreta de pruebas", Description: "Contenido no relevante", Priority: "Media"})
	groceries := mustCreate(t, svc, alice, TaskRequest{Title: "Groceries", Description: "milk and SECRETA-adjacent things"})
	mustCreate(t, svc, alice, TaskRequest{Title: "Unrelated", Description: "nothing here"})
	mustCreate(t, svc, bob, TaskRequest{Title: "also secreta", Description: "bob's"})

	t.Run("empty query equals list", func(t *testing.T) {
		all, err := svc.List(ctx, alice)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		searched, err := svc.Search(ctx, alice, "")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(searched) != len(all) {
			t.Fatalf("Search(\"\") returned %d tasks, List returned %d", len(searched), len(all))
		}
	})

	t.Run("matches title and description case-insensitively", func(t *testing.T) {
		got, err := svc.Search(ctx, alice, "secreta")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Search returned %d tasks, want 2: %+v", len(got), got)
		}
		if got[0].ID != secret.ID || got[1].ID != groceries.ID {
			t.Fatalf("unexpected search results: %+v", got)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		got, err := svc.Search(ctx, alice, "zzz")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("Search(\"zzz\") returned %d tasks, want 0", len(got))
		}
	})

	t.Run("scoped to owner", func(t *testing.T) {
		got, err := svc.Search(ctx, bob, "secreta")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].OwnerID != bob {
			t.Fatalf("bob's search leaked foreign tasks: %+v", got)
		}
	})
}
