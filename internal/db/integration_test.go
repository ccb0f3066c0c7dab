//go:build integration

// Integration tests for the PostgreSQL repositories. They start a disposable
// PostgreSQL container, apply the SQL migrations and run each repository
// against the real schema.
//
// Run with: go test -tags=integration ./internal/db/...
package db_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/orientis/orientis/internal/db"
	"github.com/orientis/orientis/internal/orientation"
	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/university"
	"github.com/orientis/orientis/internal/user"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "docker", "info").Run(); err != nil {
		t.Skip("skipping integration test: Docker not available")
	}
}

// startPostgres launches a container and returns a migrated database URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("orientis_test"),
		tcpostgres.WithUsername("orientis"),
		tcpostgres.WithPassword("orientis"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("warning: failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	return url
}

// applyMigrations runs every *.up.sql file from the migrations directory in
// lexical order.
func applyMigrations(t *testing.T, ctx context.Context, databaseURL string) {
	t.Helper()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	dir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read migrations directory: %v", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("failed to read migration %s: %v", name, err)
		}
		if _, err := conn.ExecContext(ctx, string(data)); err != nil {
			t.Fatalf("failed to apply migration %s: %v", name, err)
		}
	}
}

// TestPostgresRepositories_RoundTrip tests every Postgres repository against
// the migrated schema.
func TestPostgresRepositories_RoundTrip(t *testing.T) {
	skipIfNoDocker(t)

	ctx := context.Background()
	databaseURL := startPostgres(t)
	applyMigrations(t, ctx, databaseURL)

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer conn.Close()

	// Users: insert, lookup, duplicate email rejection.
	users := user.NewPostgresRepository(conn)
	hash, err := user.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := &user.User{Email: "student@orientis.test", PasswordHash: hash, Role: user.RoleUser}
	if err := users.Insert(ctx, u); err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	if _, err := users.GetByEmail(ctx, "STUDENT@orientis.test"); err != nil {
		t.Errorf("case-insensitive email lookup failed: %v", err)
	}
	dup := &user.User{Email: "Student@Orientis.Test", PasswordHash: hash, Role: user.RoleUser}
	if err := users.Insert(ctx, dup); err != user.ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken for duplicate email, got %v", err)
	}

	// Universities: insert and search, including the specialties array.
	universities := university.NewPostgresRepository(conn)
	uni := &university.University{
		Name:        "Université de Technologie",
		Description: "Recherche appliquée",
		Location:    "Paris",
		Type:        university.TypePublic,
		Rating:      4.2,
		Specialties: []string{"informatique", "électronique"},
	}
	if err := universities.Insert(ctx, uni); err != nil {
		t.Fatalf("failed to insert university: %v", err)
	}
	found, err := universities.Search(ctx, university.Filter{Keywords: []string{"électronique"}})
	if err != nil {
		t.Fatalf("university search failed: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("expected specialties keyword match, got %d results", len(found))
	}

	// Programs: tuition filters over nullable tuition.
	programs := program.NewPostgresRepository(conn)
	tuition := 1500.0
	paid := &program.Program{
		UniversityID: uni.ID,
		Name:         "Licence Informatique",
		DegreeLevel:  program.DegreeLicence,
		Tuition:      &tuition,
	}
	free := &program.Program{
		UniversityID: uni.ID,
		Name:         "BTS Gratuit",
		DegreeLevel:  program.DegreeBTS,
	}
	for _, p := range []*program.Program{paid, free} {
		if err := programs.Insert(ctx, p); err != nil {
			t.Fatalf("failed to insert program %s: %v", p.Name, err)
		}
	}
	max := 2000.0
	inBudget, err := programs.Search(ctx, program.Filter{MaxTuition: &max})
	if err != nil {
		t.Fatalf("program search failed: %v", err)
	}
	if len(inBudget) != 1 || inBudget[0].ID != paid.ID {
		t.Errorf("expected only the paid program under the tuition cap, got %d results", len(inBudget))
	}

	// Profile update and saved items.
	u.Name = "Camille"
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("failed to update user: %v", err)
	}
	renamed, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if renamed.Name != "Camille" {
		t.Errorf("expected updated name, got %q", renamed.Name)
	}

	for _, id := range []string{paid.ID, free.ID, paid.ID} {
		if err := users.SaveProgram(ctx, u.ID, id); err != nil {
			t.Fatalf("failed to save program: %v", err)
		}
	}
	savedIDs, err := users.ListSavedPrograms(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to list saved programs: %v", err)
	}
	if len(savedIDs) != 2 || savedIDs[0] != paid.ID || savedIDs[1] != free.ID {
		t.Errorf("expected save-ordered [%s %s], got %v", paid.ID, free.ID, savedIDs)
	}
	if err := users.RemoveProgram(ctx, u.ID, paid.ID); err != nil {
		t.Fatalf("failed to remove saved program: %v", err)
	}
	savedIDs, err = users.ListSavedPrograms(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to list saved programs: %v", err)
	}
	if len(savedIDs) != 1 || savedIDs[0] != free.ID {
		t.Errorf("expected only the remaining program, got %v", savedIDs)
	}

	if err := users.SaveUniversity(ctx, u.ID, uni.ID); err != nil {
		t.Fatalf("failed to save university: %v", err)
	}
	savedUnis, err := users.ListSavedUniversities(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to list saved universities: %v", err)
	}
	if len(savedUnis) != 1 || savedUnis[0] != uni.ID {
		t.Errorf("expected [%s], got %v", uni.ID, savedUnis)
	}

	// Orientation: questions with weighted options, scored submissions.
	questions := orientation.NewPostgresQuestionRepository(conn)
	q := &orientation.Question{
		Text:  "Quelle matière préférez-vous ?",
		Order: 1,
		Options: []orientation.Option{
			{Text: "Mathématiques", EngineeringWeight: 2, ScienceWeight: 3},
			{Text: "Littérature", ArtsWeight: 3},
		},
	}
	if err := questions.InsertQuestion(ctx, q); err != nil {
		t.Fatalf("failed to insert question: %v", err)
	}
	listed, err := questions.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}
	if len(listed) != 1 || len(listed[0].Options) != 2 {
		t.Fatalf("expected 1 question with 2 options, got %+v", listed)
	}

	results := orientation.NewPostgresResultRepository(conn)
	res := &orientation.TestResult{
		UserID:  u.ID,
		Answers: map[string]string{q.ID: q.Options[0].ID},
		Recommendations: []orientation.FieldRecommendation{
			{Field: orientation.FieldScience, FieldDisplay: "Sciences", Compatibility: 100},
			{Field: orientation.FieldEngineering, FieldDisplay: "Ingénierie", Compatibility: 66},
		},
	}
	if err := results.InsertResult(ctx, res); err != nil {
		t.Fatalf("failed to insert result: %v", err)
	}
	loaded, err := results.GetResult(ctx, res.ID)
	if err != nil {
		t.Fatalf("failed to load result: %v", err)
	}
	if len(loaded.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(loaded.Recommendations))
	}
	if loaded.Recommendations[0].Field != orientation.FieldScience {
		t.Errorf("expected science ranked first, got %s", loaded.Recommendations[0].Field)
	}
	if loaded.Recommendations[0].FieldDisplay != "Sciences" {
		t.Errorf("expected display label Sciences, got %s", loaded.Recommendations[0].FieldDisplay)
	}

	byUser, err := results.ListResultsByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to list results: %v", err)
	}
	if len(byUser) != 1 {
		t.Errorf("expected 1 result for user, got %d", len(byUser))
	}
}
