package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignments_Set(t *testing.T) {
	var a assignments

	require.NoError(t, a.Set("title=Analyst"))
	require.NoError(t, a.Set("note=a=b"))
	assert.EqualError(t, a.Set("title"), `"title": want key=value`)

	assert.Equal(t, "title=Analyst,note=a=b", a.String())
	assert.Equal(t, map[string][]string{
		"title": {"Analyst"},
		"note":  {"a=b"},
	}, a.pairs())
}

func TestAssignments_PairsCollectsRepeats(t *testing.T) {
	a := assignments{"department=IT", " department = HR ", "-x"}

	assert.Equal(t, map[string][]string{"department": {"IT", "HR"}}, a.pairs())
}

func TestFilterValues(t *testing.T) {
	env := testApp(t)
	screen := env.screen(t, "vacancies")

	values, err := filterValues(screen, assignments{
		"department=IT,HR",
		"department=Finance",
		"status=open",
		"salary=1000..5000",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"IT", "HR", "Finance"}, values["department"])
	assert.Equal(t, "open", values.Get("status"))
	lo, hi := values.Range("salary")
	assert.Equal(t, 1000.0, lo)
	assert.Equal(t, 5000.0, hi)
	assert.Empty(t, values["employmentType"])
}

func TestFilterValues_OpenEndedRange(t *testing.T) {
	env := testApp(t)

	values, err := filterValues(env.screen(t, "vacancies"), assignments{"salary=2000.."})
	require.NoError(t, err)

	lo, hi := values.Range("salary")
	assert.Equal(t, 2000.0, lo)
	assert.Zero(t, hi)
}

func TestFilterValues_Errors(t *testing.T) {
	env := testApp(t)
	screen := env.screen(t, "vacancies")

	_, err := filterValues(screen, assignments{"colour=red"})
	assert.EqualError(t, err, `screen vacancies has no filter "colour"`)

	_, err = filterValues(screen, assignments{"salary=1000"})
	assert.EqualError(t, err, "filter salary: want min..max")
}
