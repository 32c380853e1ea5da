package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCollectsFirstMessagePerKey(t *testing.T) {
	v := New()
	v.Check(false, "name", "must be provided")
	v.Check(false, "name", "must not be more than 100 characters long")
	v.Check(true, "email", "must be a valid email address")

	assert.False(t, v.IsValid())
	assert.Equal(t, map[string]string{"name": "must be provided"}, v.Errors)
}

func TestCheckNotBlank(t *testing.T) {
	v := New()
	v.CheckNotBlank("  ", "headline", "must be provided")
	v.CheckNotBlank("Intro", "summary", "must be provided")

	assert.Equal(t, map[string]string{"headline": "must be provided"}, v.Errors)
}

func TestCheckMaxLengthCountsRunes(t *testing.T) {
	v := New()
	v.CheckMaxLength("Путеводитель", 12, "name", "too long")
	assert.True(t, v.IsValid())

	v.CheckMaxLength("abcdef", 5, "slug_name", "too long")
	assert.Equal(t, map[string]string{"slug_name": "too long"}, v.Errors)
}

func TestCheckEmail(t *testing.T) {
	valid := []string{"ivan@example.com", "a.b-c_d@sub.example.org"}
	invalid := []string{"", "ivan", "ivan@", "@example.com", "ivan example.com"}

	for _, email := range valid {
		v := New()
		v.CheckEmail(email, "email", "must be a valid email address")
		assert.True(t, v.IsValid(), "expected %q to be accepted", email)
	}
	for _, email := range invalid {
		v := New()
		v.CheckEmail(email, "email", "must be a valid email address")
		assert.False(t, v.IsValid(), "expected %q to be rejected", email)
	}
}

func TestPhonePattern(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+79123456789", true},
		{"+7912345678", false},
		{"89123456789", false},
		{"+79123456789x", false},
		{"+789123456789", false},
		{"+7912345678a", false},
	}

	for _, tc := range tests {
		v := New()
		v.CheckMatch(tc.phone, PhoneRX, "phone_number", "must be entered in the format: '+79123456789'")
		assert.Equal(t, tc.ok, v.IsValid(), "phone %q", tc.phone)
	}
}

func TestSlugPattern(t *testing.T) {
	v := New()
	assert.True(t, v.IsMatch("tech-blog_2024", SlugRX))
	assert.False(t, v.IsMatch("tech blog", SlugRX))
	assert.False(t, v.IsMatch("tech/blog", SlugRX))
	assert.False(t, v.IsMatch("", SlugRX))
}

func TestIsUnique(t *testing.T) {
	v := New()
	assert.True(t, v.IsUnique([]string{"1", "2", "3"}))
	assert.False(t, v.IsUnique([]string{"1", "2", "1"}))
}

func TestErrMessageIsStableAndSorted(t *testing.T) {
	v := New()
	v.AddError("slug_name", "must be provided")
	v.AddError("name", "must not be more than 100 characters long")

	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: name: must not be more than 100 characters long; slug_name: must be provided", err.Error())

	assert.NoError(t, New().Err())
}
