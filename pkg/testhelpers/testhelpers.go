// Package testhelpers provides shared fixtures and assertions for toolgate tests.
package testhelpers

import (
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mcpjungle/toolgate/internal/migrations"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CreateTestDB opens a fresh in-memory SQLite database with the toolgate schema applied.
func CreateTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" gets its own database, so pin the pool to one
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrations.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// TestDBSetup bundles a test database with its cleanup function.
type TestDBSetup struct {
	DB      *gorm.DB
	Cleanup func()
}

// SetupTestDB creates a test database and fails the test if that is not possible.
func SetupTestDB(t *testing.T) *TestDBSetup {
	t.Helper()
	db, err := CreateTestDB()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	return &TestDBSetup{
		DB: db,
		Cleanup: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
}

// CommandAnnotationTest describes an expected annotation on a cobra command.
type CommandAnnotationTest struct {
	Key      string
	Expected string
}

// TestCommandAnnotations checks the annotations of a cobra command.
func TestCommandAnnotations(t *testing.T, annotations map[string]string, tests []CommandAnnotationTest) {
	t.Helper()
	for _, tt := range tests {
		if got := annotations[tt.Key]; got != tt.Expected {
			t.Errorf("annotation %s = %q, want %q", tt.Key, got, tt.Expected)
		}
	}
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// AssertNotNil fails the test if v is nil, including typed nil pointers.
func AssertNotNil(t *testing.T, v any) {
	t.Helper()
	if v == nil {
		t.Fatal("expected a non-nil value")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		if rv.IsNil() {
			t.Fatal("expected a non-nil value")
		}
	}
}

func AssertEqual[T any](t *testing.T, expected, actual T) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

func AssertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Error(msg)
	}
}
