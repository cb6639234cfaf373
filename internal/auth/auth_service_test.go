package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	autherrors "go-payledger/internal/auth/errors"
	"go-payledger/internal/employee"
	"go-payledger/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*User, error)
	createFn     func(ctx context.Context, user *User) error
}

func (f *fakeAuthRepo) Create(ctx context.Context, user *User) error {
	return f.createFn(ctx, user)
}

func (f *fakeAuthRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return f.getByIDFn(ctx, id)
}

type fakeRBAC struct {
	loaded []string
}

func (f *fakeRBAC) LoadCompanyPolicy(companyID string) error {
	f.loaded = append(f.loaded, companyID)
	return nil
}

func (f *fakeRBAC) Enforce(req rbac.EnforceRequest) (bool, error) { return true, nil }

type fakeEmployeeRepo struct {
	findByIDFn func(ctx context.Context, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepo) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepo) Create(ctx context.Context, emp *employee.Employee) error { return nil }

func (f *fakeEmployeeRepo) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FindOptionsByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, emp *employee.Employee) error { return nil }

func (f *fakeEmployeeRepo) Delete(ctx context.Context, companyID, id string) error { return nil }

func testUser(t *testing.T, password string) *User {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	employeeID := uuid.New()
	return &User{
		ID:         uuid.New(),
		EmployeeID: &employeeID,
		CompanyID:  uuid.New(),
		Email:      "admin@example.com",
		Name:       "Admin",
		Password:   string(pw),
		Role:       "ADMIN",
		IsActive:   true,
	}
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	return claims
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	password := "password123"
	user := testUser(t, password)

	t.Run("Success", func(t *testing.T) {
		rbacSvc := &fakeRBAC{}
		repo := &fakeAuthRepo{
			getByEmailFn: func(ctx context.Context, email string) (*User, error) {
				assert.Equal(t, user.Email, email)
				return user, nil
			},
		}
		svc := NewService(repo, rbacSvc, &fakeEmployeeRepo{})

		access, refresh, resp, err := svc.Login(context.Background(), user.Email, password)
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.Equal(t, user.CompanyID.String(), resp.CompanyID)
		assert.Equal(t, []string{user.CompanyID.String()}, rbacSvc.loaded)

		claims := parseClaims(t, access)
		assert.Equal(t, user.ID.String(), claims["user_id"])
		assert.Equal(t, user.EmployeeID.String(), claims["employee_id"])
		assert.Equal(t, user.CompanyID.String(), claims["company_id"])
	})

	t.Run("Wrong password", func(t *testing.T) {
		repo := &fakeAuthRepo{
			getByEmailFn: func(ctx context.Context, email string) (*User, error) {
				return user, nil
			},
		}
		svc := NewService(repo, &fakeRBAC{}, &fakeEmployeeRepo{})

		_, _, _, err := svc.Login(context.Background(), user.Email, "nope")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		repo := &fakeAuthRepo{
			getByEmailFn: func(ctx context.Context, email string) (*User, error) {
				return nil, errors.New("record not found")
			},
		}
		svc := NewService(repo, &fakeRBAC{}, &fakeEmployeeRepo{})

		_, _, _, err := svc.Login(context.Background(), "ghost@example.com", password)
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestService_RefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := testUser(t, "password123")
	repo := &fakeAuthRepo{
		getByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*User, error) {
			assert.Equal(t, user.ID, id)
			return user, nil
		},
	}
	svc := NewService(repo, &fakeRBAC{}, &fakeEmployeeRepo{})

	t.Run("Round trip", func(t *testing.T) {
		_, refresh, _, err := svc.Login(context.Background(), user.Email, "password123")
		assert.NoError(t, err)

		access, newRefresh, resp, err := svc.RefreshToken(context.Background(), refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, newRefresh)
		assert.Equal(t, user.ID.String(), resp.ID)

		claims := parseClaims(t, access)
		assert.Equal(t, user.EmployeeID.String(), claims["employee_id"])
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, _, _, err := svc.RefreshToken(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	emp := &employee.Employee{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		FullName:  "New Hire",
	}

	t.Run("Creates the account against the employee's company", func(t *testing.T) {
		rbacSvc := &fakeRBAC{}
		var created *User
		repo := &fakeAuthRepo{
			createFn: func(ctx context.Context, user *User) error {
				created = user
				return nil
			},
		}
		empRepo := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				assert.Equal(t, emp.ID.String(), id)
				return emp, nil
			},
		}
		svc := NewService(repo, rbacSvc, empRepo)

		resp, err := svc.Register(context.Background(), RegisterRequest{
			EmployeeID: emp.ID.String(),
			Email:      "hire@example.com",
			Name:       "New Hire",
			Password:   "password123",
		})
		assert.NoError(t, err)
		assert.Equal(t, emp.CompanyID.String(), resp.CompanyID)
		assert.NotNil(t, created)
		assert.NotEqual(t, "password123", created.Password)
		assert.Equal(t, []string{emp.CompanyID.String()}, rbacSvc.loaded)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		repo := &fakeAuthRepo{
			createFn: func(ctx context.Context, user *User) error {
				return errors.New("duplicate key value violates unique constraint")
			},
		}
		empRepo := &fakeEmployeeRepo{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				return emp, nil
			},
		}
		svc := NewService(repo, &fakeRBAC{}, empRepo)

		_, err := svc.Register(context.Background(), RegisterRequest{
			EmployeeID: emp.ID.String(),
			Email:      "hire@example.com",
			Name:       "New Hire",
			Password:   "password123",
		})
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}
