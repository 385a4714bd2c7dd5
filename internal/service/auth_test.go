package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
)

func validRegister() RegisterInput {
	return RegisterInput{
		Username: "ann",
		Email:    "ann@example.com",
		Password: "secret1",
		Address:  "1 Main St",
		Contact:  "555-0101",
		Role:     "user",
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "  " }, "All fields are required."},
		{"missing contact", func(in *RegisterInput) { in.Contact = "" }, "All fields are required."},
		{"missing role", func(in *RegisterInput) { in.Role = "" }, "All fields are required."},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "Password should be at least 6 or more characters long"},
		{"unknown role", func(in *RegisterInput) { in.Role = "root" }, "Role must be user or admin."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, _, rec := newRepo(t)
			svc := &AuthService{Repo: r, Events: rec}

			in := validRegister()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			requireMessage(t, err, ErrValidation, tt.msg)
			assert.Empty(t, rec.Types(events.TopicUser))
		})
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	r, _, rec := newRepo(t)
	svc := &AuthService{Repo: r, Events: rec}
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = svc.Register(ctx, validRegister())
	requireMessage(t, err, ErrConflict, "Email is already registered.")

	got, err := svc.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	assert.Equal(t, []string{"user_registered", "user_logged_in"}, rec.Types(events.TopicUser))
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()
	r, db, _ := newRepo(t)
	svc := &AuthService{Repo: r}
	ctx := context.Background()

	createUser(t, db, "bob@example.com", "hunter22", models.RoleAdmin)

	_, err := svc.Login(ctx, "", "x")
	requireMessage(t, err, ErrValidation, "All fields are required.")

	_, err = svc.Login(ctx, "bob@example.com", "")
	requireMessage(t, err, ErrValidation, "All fields are required.")

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	requireMessage(t, err, ErrInvalidCredentials, "Invalid email or password.")

	_, err = svc.Login(ctx, "bob@example.com", "wrong-password")
	requireMessage(t, err, ErrInvalidCredentials, "Invalid email or password.")

	admin, err := svc.Login(ctx, "bob@example.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestAuthService_SeedAdmin(t *testing.T) {
	t.Parallel()
	r, _, _ := newRepo(t)
	svc := &AuthService{Repo: r}

	u, err := svc.SeedAdmin(context.Background(), "root", "root@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestRegisterInput_FormDataOmitsPassword(t *testing.T) {
	t.Parallel()

	data := validRegister().FormData()
	assert.Equal(t, "ann", data["username"])
	_, ok := data["password"]
	assert.False(t, ok)
}
