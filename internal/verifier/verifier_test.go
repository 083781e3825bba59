package verifier

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dbsmedya/goreef/internal/sqlutil"
)

const batch = "2024-06-01T08:30:00Z"

var written = []string{
	`{"campagne":"2024","site":"Ouegoa"}`,
	`{"campagne":"2024","site":"Poum"}`,
}

func newMockVerifier(t *testing.T, d sqlutil.Dialect, method Method) (*Verifier, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	v, err := New(db, d, "rorc_poissons", method, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v, mock
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"", MethodCount, false},
		{"count", MethodCount, false},
		{"sha256", MethodSHA256, false},
		{"skip", MethodSkip, false},
		{"md5", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, sqlutil.SQLite, "t", MethodCount, nil); err == nil {
		t.Error("Expected error for nil database")
	}

	db, _, _ := sqlmock.New()
	defer db.Close()
	if _, err := New(db, sqlutil.SQLite, "bad-name", MethodCount, nil); err == nil {
		t.Error("Expected error for invalid table name")
	}

	v, err := New(db, sqlutil.SQLite, "t", "", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.Method() != MethodCount {
		t.Errorf("Expected default method count, got %s", v.Method())
	}
}

func TestVerify_Skip(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.SQLite, MethodSkip)

	res, err := v.Verify(context.Background(), batch, written)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !res.Match || res.Method != MethodSkip {
		t.Errorf("Expected skipped match, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected queries: %v", err)
	}
}

func TestVerify_CountMatch(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.Postgres, MethodCount)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "rorc_poissons" WHERE "exported_at" = $1`)).
		WithArgs(batch).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	res, err := v.Verify(context.Background(), batch, written)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !res.Match || res.Expected != 2 || res.Actual != 2 {
		t.Errorf("Unexpected result: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestVerify_CountMismatch(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.MySQL, MethodCount)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `rorc_poissons` WHERE `exported_at` = ?")).
		WithArgs(batch).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	res, err := v.Verify(context.Background(), batch, written)
	if err == nil {
		t.Fatal("Expected mismatch error")
	}
	if res == nil || res.Match {
		t.Fatalf("Expected failed result, got %+v", res)
	}
	if !strings.Contains(res.Message, "written=2, stored=1") {
		t.Errorf("Unexpected message: %s", res.Message)
	}
}

func TestVerify_CountQueryError(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.SQLite, MethodCount)
	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("no such table"))

	res, err := v.Verify(context.Background(), batch, written)
	if err == nil || !strings.Contains(err.Error(), "no such table") {
		t.Errorf("Expected query error, got %v", err)
	}
	if res != nil {
		t.Errorf("Expected nil result on query error, got %+v", res)
	}
}

func TestVerify_SHA256Match(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.SQLite, MethodSHA256)
	// stored order differs from written order
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "payload" FROM "rorc_poissons" WHERE "exported_at" = ?`)).
		WithArgs(batch).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(written[1]).AddRow(written[0]))

	res, err := v.Verify(context.Background(), batch, written)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !res.Match || res.ExpectedHash != res.ActualHash {
		t.Errorf("Expected hash match, got %+v", res)
	}
	if len(res.ActualHash) != 64 {
		t.Errorf("Expected hex SHA256, got %q", res.ActualHash)
	}
}

func TestVerify_SHA256HashMismatch(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.SQLite, MethodSHA256)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(written[0]).AddRow(`{"campagne":"2023"}`))

	res, err := v.Verify(context.Background(), batch, written)
	if err == nil {
		t.Fatal("Expected mismatch error")
	}
	if !strings.HasPrefix(res.Message, "hash mismatch") {
		t.Errorf("Expected hash mismatch message, got %s", res.Message)
	}
}

func TestVerify_SHA256CountMismatch(t *testing.T) {
	v, mock := newMockVerifier(t, sqlutil.SQLite, MethodSHA256)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(written[0]))

	res, err := v.Verify(context.Background(), batch, written)
	if err == nil {
		t.Fatal("Expected mismatch error")
	}
	if !strings.HasPrefix(res.Message, "count mismatch") {
		t.Errorf("Expected count mismatch message, got %s", res.Message)
	}
}

func TestHashPayloads_OrderIndependent(t *testing.T) {
	a := HashPayloads([]string{"x", "y", "z"})
	b := HashPayloads([]string{"z", "x", "y"})
	if a != b {
		t.Errorf("Expected equal hashes, got %s and %s", a, b)
	}
	if a == HashPayloads([]string{"x", "y"}) {
		t.Error("Expected different hash for different payloads")
	}
	if HashPayloads(nil) != HashPayloads([]string{}) {
		t.Error("Expected nil and empty to hash the same")
	}
}
