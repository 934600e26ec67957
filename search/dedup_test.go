package search

import (
	"fmt"
	"testing"

	"github.com/ortelius/scec-spog/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedup_Scenario(t *testing.T) {
	packages := Dedup([]model.SBOMEntry{
		{Purl: "pkg:npm/a@1", Dependent: "app1"},
		{Purl: "pkg:npm/a@1", Dependent: "app2"},
		{Purl: "pkg:npm/b@1", Dependent: "app1"},
	})

	require.Equal(t, 2, packages.Len())

	a, ok := packages.Get("pkg:npm/a@1")
	require.True(t, ok)
	assert.Equal(t, []string{"app1", "app2"}, a.Dependents)
	assert.Empty(t, a.Vulnerabilities)

	b, ok := packages.Get("pkg:npm/b@1")
	require.True(t, ok)
	assert.Equal(t, []string{"app1"}, b.Dependents)
}

func TestDedup_FirstSeenWins(t *testing.T) {
	packages := Dedup([]model.SBOMEntry{
		{Purl: "pkg:npm/a@1", Name: "a", License: "MIT", Sha256: "111", Supplier: "first", Dependent: "app1"},
		{Purl: "pkg:npm/a@1", Name: "renamed", License: "GPL-3.0", Sha256: "222", Supplier: "second", Dependent: "app2"},
	})

	a, ok := packages.Get("pkg:npm/a@1")
	require.True(t, ok)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "MIT", a.License)
	assert.Equal(t, "111", a.Sha256)
	assert.Equal(t, "first", a.Supplier)
	assert.Equal(t, []string{"app1", "app2"}, a.Dependents)
}

func TestDedup_Properties(t *testing.T) {
	testCases := []struct {
		name    string
		entries []model.SBOMEntry
	}{
		{
			name:    "empty input",
			entries: nil,
		},
		{
			name: "repeated dependents",
			entries: []model.SBOMEntry{
				{Purl: "pkg:npm/a@1", Dependent: "app1"},
				{Purl: "pkg:npm/a@1", Dependent: "app1"},
				{Purl: "pkg:npm/a@1", Dependent: "app2"},
				{Purl: "pkg:npm/a@1", Dependent: "app1"},
			},
		},
		{
			name:    "interleaved purls",
			entries: interleaved(5, 7),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packages := Dedup(tc.entries)

			purls := map[string]bool{}
			for _, e := range tc.entries {
				purls[e.Purl] = true
			}
			assert.Equal(t, len(purls), packages.Len())

			for _, pkg := range packages.Values() {
				seen := map[string]bool{}
				for _, dep := range pkg.Dependents {
					assert.False(t, seen[dep], "duplicate dependent %s in %s", dep, pkg.Purl)
					seen[dep] = true
				}
			}
			for _, e := range tc.entries {
				pkg, ok := packages.Get(e.Purl)
				require.True(t, ok)
				assert.Contains(t, pkg.Dependents, e.Dependent)
			}
		})
	}
}

func TestDedup_ValuesInFirstSeenOrder(t *testing.T) {
	packages := Dedup([]model.SBOMEntry{
		{Purl: "pkg:npm/c@1", Dependent: "app1"},
		{Purl: "pkg:npm/a@1", Dependent: "app1"},
		{Purl: "pkg:npm/c@1", Dependent: "app2"},
		{Purl: "pkg:npm/b@1", Dependent: "app3"},
	})

	var purls []string
	for _, pkg := range packages.Values() {
		purls = append(purls, pkg.Purl)
	}
	assert.Equal(t, []string{"pkg:npm/c@1", "pkg:npm/a@1", "pkg:npm/b@1"}, purls)
}

// interleaved returns every (package, dependent) pair with packages varying fastest
func interleaved(packages, dependents int) []model.SBOMEntry {
	var out []model.SBOMEntry
	for d := 0; d < dependents; d++ {
		for p := 0; p < packages; p++ {
			out = append(out, model.SBOMEntry{
				Purl:      fmt.Sprintf("pkg:npm/p%d@1", p),
				Dependent: fmt.Sprintf("app%d", d%3),
			})
		}
	}
	return out
}
