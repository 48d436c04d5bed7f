package finding

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldscan/shieldscan/pkg/jsonutil"
)

func TestCategories_FixedOrder(t *testing.T) {
	want := []Category{
		"sql injection scan",
		"open port scan",
		"host details",
		"robots txt",
		"technology details",
		"security headers",
		"cookies",
	}
	assert.Equal(t, want, Categories())

	// Callers cannot reorder the package's list.
	got := Categories()
	got[0] = Cookies
	assert.Equal(t, SQLInjection, Categories()[0])
}

func TestResult_Fail(t *testing.T) {
	res := NewResult(RobotsTxt)
	cause := errors.New("connection refused")
	res.Fail(cause, "Error checking robots.txt: connection refused")

	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, ErrCheckFailed)
	assert.ErrorIs(t, res.Err, cause)
	assert.Equal(t, []string{"Error checking robots.txt: connection refused"}, res.Strings())
}

func TestResult_FailNotFetched(t *testing.T) {
	res := NewResult(Cookies)
	res.Fail(ErrNotFetched, "Failed to fetch cookies.")

	assert.ErrorIs(t, res.Err, ErrNotFetched)
	assert.NotErrorIs(t, res.Err, ErrCheckFailed)
}

func TestReport_OrderAndReplace(t *testing.T) {
	r := NewReport("id-1", "http://example.com/", "example.com")

	c := NewResult(Cookies)
	c.Add("No cookies found.")
	r.Add(c)

	s := NewResult(SQLInjection)
	s.Add("No SQL injection attack vulnerability detected")
	r.Add(s)

	p := NewResult(OpenPorts)
	p.Add("Scanning open ports on example.com...")
	r.Add(p)

	require.Len(t, r.Results, 3)
	assert.Equal(t, SQLInjection, r.Results[0].Category)
	assert.Equal(t, OpenPorts, r.Results[1].Category)
	assert.Equal(t, Cookies, r.Results[2].Category)

	c2 := NewResult(Cookies)
	c2.Add("Cookies found:", "session: abc")
	r.Add(c2)
	require.Len(t, r.Results, 3)
	assert.Equal(t, []Finding{"Cookies found:", "session: abc"}, r.Findings(Cookies))
	assert.Nil(t, r.Findings(HostDetails))
	assert.Equal(t, 4, r.Count())
}

func TestReport_Vulnerable(t *testing.T) {
	r := NewReport("id", "http://x/", "x")
	s := NewResult(SQLInjection)
	s.Add("No SQL injection attack vulnerability detected")
	r.Add(s)
	assert.False(t, r.Vulnerable())

	s.Add(VulnerablePrefix + "http://x/search")
	r.Add(s)
	assert.True(t, r.Vulnerable())
}

func TestReport_JSONShape(t *testing.T) {
	r := NewReport("id", "http://x/", "x")
	res := NewResult(RobotsTxt)
	res.Fail(errors.New("boom"), "Error checking robots.txt: boom")
	res.Took(1500 * time.Millisecond)
	r.Add(res)

	data, err := jsonutil.Marshal(r)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, jsonutil.Unmarshal(data, &decoded))
	require.Len(t, decoded.Results, 1)
	assert.True(t, decoded.Results[0].Failed())
	assert.Equal(t, int64(1500), decoded.Results[0].DurationMS)
	assert.Equal(t, map[string][]string{"robots txt": {"Error checking robots.txt: boom"}}, decoded.Map())
}
