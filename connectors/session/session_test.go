package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogout(t *testing.T) {
	s := NewStore("admin", "password")
	s.now = func() time.Time { return time.Date(2024, 1, 1, 14, 5, 9, 0, time.UTC) }

	id, ok := s.Login("admin", "password")
	require.True(t, ok)
	require.NotEmpty(t, id)

	sess, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, Session{LoggedIn: true, Username: "admin", LoginTime: "14:05:09"}, sess)

	s.Logout(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := NewStore("admin", "password")

	for _, c := range [][2]string{{"admin", "wrong"}, {"root", "password"}, {"", ""}} {
		id, ok := s.Login(c[0], c[1])
		assert.False(t, ok, "%v", c)
		assert.Empty(t, id)
	}
}

func TestGet_Unknown(t *testing.T) {
	_, ok := NewStore("a", "b").Get("missing")

	assert.False(t, ok)
}

func TestLogin_DistinctIDs(t *testing.T) {
	s := NewStore("admin", "password")

	a, _ := s.Login("admin", "password")
	b, _ := s.Login("admin", "password")

	assert.NotEqual(t, a, b)
}
