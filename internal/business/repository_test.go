// internal/business/repository_test.go
//
// Unit-tests for the business repository using sqlmock.
//
// Run: go test ./internal/business -v

package business

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "subdomain", "custom_domain",
		"custom_domain_verified", "status", "brand_name", "logo_url", "theme_config",
	})
}

func TestByCustomDomain(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`CALL get_business_by_custom_domain(?)`)).
		WithArgs("rides.acme.com").
		WillReturnRows(accountRows().AddRow(
			"biz-1", "Acme Transfers", "acme", "rides.acme.com",
			true, StatusActive, "Acme Rides", "https://cdn/acme.png",
			[]byte(`{"primary_color":"#111111"}`),
		))

	acct, err := repo.ByCustomDomain(context.Background(), "rides.acme.com")
	if err != nil {
		t.Fatalf("ByCustomDomain error: %v", err)
	}
	if acct.ID != "biz-1" || acct.DisplayName() != "Acme Rides" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	if th := acct.Theme(); th.Primary != "#111111" || th.Secondary != DefaultTheme.Secondary {
		t.Fatalf("theme merge wrong: %+v", th)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByCustomDomainUnverifiedIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`CALL get_business_by_custom_domain(?)`)).
		WithArgs("rides.acme.com").
		WillReturnRows(accountRows().AddRow(
			"biz-1", "Acme Transfers", "acme", "rides.acme.com",
			false, StatusActive, nil, nil, nil,
		))

	_, err := repo.ByCustomDomain(context.Background(), "rides.acme.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for unverified domain, got %v", err)
	}
}

func TestByCustomDomainSuspendedIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`CALL get_business_by_custom_domain(?)`)).
		WithArgs("rides.acme.com").
		WillReturnRows(accountRows().AddRow(
			"biz-1", "Acme Transfers", "acme", "rides.acme.com",
			true, StatusSuspended, nil, nil, nil,
		))

	_, err := repo.ByCustomDomain(context.Background(), "rides.acme.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for suspended account, got %v", err)
	}
}

func TestBySubdomain(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM business_accounts").
		WithArgs("acme", StatusActive).
		WillReturnRows(accountRows().AddRow(
			"biz-1", "Acme Transfers", "acme", nil,
			false, StatusActive, nil, nil, nil,
		))

	acct, err := repo.BySubdomain(context.Background(), "acme")
	if err != nil {
		t.Fatalf("BySubdomain error: %v", err)
	}
	if acct.Subdomain != "acme" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	// No brand name configured: fall back to the legal name.
	if acct.DisplayName() != "Acme Transfers" {
		t.Fatalf("display name fallback wrong: %q", acct.DisplayName())
	}
}

func TestBySubdomainMiss(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM business_accounts").
		WithArgs("nosuch", StatusActive).
		WillReturnRows(accountRows())

	_, err := repo.BySubdomain(context.Background(), "nosuch")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUserByIdentity(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM business_users").
		WithArgs("user-7").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "business_id", "role", "is_active", "account_status",
		}).AddRow("bu-1", "biz-1", RoleOwner, true, StatusActive))

	u, err := repo.UserByIdentity(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("UserByIdentity error: %v", err)
	}
	if !u.CanAccessPortal() {
		t.Fatalf("expected portal access for %+v", u)
	}
}

func TestUserByIdentitySuspendedAccount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM business_users").
		WithArgs("user-7").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "business_id", "role", "is_active", "account_status",
		}).AddRow("bu-1", "biz-1", RoleOperator, true, StatusSuspended))

	u, err := repo.UserByIdentity(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("UserByIdentity error: %v", err)
	}
	if u.CanAccessPortal() {
		t.Fatalf("suspended account must not grant portal access: %+v", u)
	}
}
