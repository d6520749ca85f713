package testutil

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	Name  string `json:"name" yaml:"name"`
	Age   int    `json:"age" yaml:"age"`
	Email string `json:"email" yaml:"email"`
}

func TestLoadJSON(t *testing.T) {
	var u userFixture
	LoadJSON(t, "user.json", &u)

	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 30, u.Age)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestLoadYAML(t *testing.T) {
	var u userFixture
	LoadYAML(t, "user.yaml", &u)

	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 30, u.Age)
}

// The JSON and YAML fixtures describe the same user; drift between the two
// files would make guide chapters disagree with each other.
func TestFixtureFilesAgree(t *testing.T) {
	var fromJSON, fromYAML userFixture
	LoadJSON(t, "user.json", &fromJSON)
	LoadYAML(t, "user.yaml", &fromYAML)

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("fixtures disagree (-json +yaml):\n%s", diff)
	}
}

func TestUserAlice(t *testing.T) {
	u := UserAlice()

	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 30, u.Age)

	// Fresh copy each call: mutating one result must not affect the next.
	u.Name = "Mallory"
	assert.Equal(t, "Alice", UserAlice().Name)
}

func TestSetEnv(t *testing.T) {
	const key = "TESTLAB_SETENV_PROBE"

	require.NoError(t, os.Setenv(key, "before"))
	t.Cleanup(func() { os.Unsetenv(key) })

	t.Run("inner test sees the override", func(t *testing.T) {
		SetEnv(t, key, "after")
		assert.Equal(t, "after", os.Getenv(key))
	})

	// Cleanup of the subtest has run by now.
	assert.Equal(t, "before", os.Getenv(key))
}
