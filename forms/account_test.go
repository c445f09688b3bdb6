package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"Abc123":     true,
		"aB3xyzQ":    true,
		"Ab1":        false,
		"abcdef1":    false,
		"ABCDEF1":    false,
		"Abcdefg":    false,
		"":           false,
		"Pass word9": true,
	}
	for pw, want := range tests {
		assert.Equal(t, want, StrongPassword(pw), pw)
	}
}

func TestRegisterFormOrder(t *testing.T) {
	f := RegisterForm{Name: "Ada", Email: "ada@example.com", Mobile: "123", Password: "weak", Confirm: "other"}
	_, err := f.Validate()
	assert.EqualError(t, err, "Passwords do not match")

	f.Confirm = "weak"
	_, err = f.Validate()
	assert.EqualError(t, err, "Mobile number must be exactly 10 digits")

	f.Mobile = "4165550123"
	_, err = f.Validate()
	assert.EqualError(t, err, passwordRule)

	f.Password, f.Confirm = "Secret1", "Secret1"
	reg, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, "4165550123", reg.Mobile)
	assert.Equal(t, "Secret1", reg.Password)
}

func TestProfileForm(t *testing.T) {
	f := ProfileForm{Name: " Ada ", Mobile: ""}
	upd, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Ada", upd.Name)

	f.Mobile = "12345"
	_, err = f.Validate()
	assert.EqualError(t, err, "Mobile number must be exactly 10 digits.")

	f.Mobile = "4165550123"
	f.Bio = strings.Repeat("b", 501)
	_, err = f.Validate()
	assert.EqualError(t, err, "Bio must be at most 500 characters")
}

func TestPasswordForm(t *testing.T) {
	f := PasswordForm{CurrentPassword: "Old1pass", NewPassword: "short", Confirm: "short"}
	_, err := f.Validate()
	assert.EqualError(t, err, "New password must be at least 6 characters and include uppercase, lowercase, and a number")

	f.NewPassword, f.Confirm = "NewPass1", "NewPass2"
	_, err = f.Validate()
	assert.EqualError(t, err, "New passwords do not match")

	f.Confirm = "NewPass1"
	change, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Old1pass", change.CurrentPassword)
	assert.Equal(t, "NewPass1", change.NewPassword)
}

func TestCommentForm(t *testing.T) {
	f := CommentForm{Text: "   "}
	assert.EqualError(t, f.Validate(), "Comment cannot be empty")

	f.Text = " Still there "
	require.NoError(t, f.Validate())
	assert.Equal(t, "Still there", f.Text)
}
