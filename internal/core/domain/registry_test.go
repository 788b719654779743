package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityFactories(t *testing.T) {
	t.Run("product requires name", func(t *testing.T) {
		_, err := NewProduct("reg-1", "  ", "")
		assert.ErrorIs(t, err, ErrNameRequired)

		p, err := NewProduct("reg-1", "Billing", "billing schemas")
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "reg-1", p.RegistryID)
	})

	t.Run("context requires namespace", func(t *testing.T) {
		_, err := NewContext("dom-1", "", "")
		assert.ErrorIs(t, err, ErrNamespaceRequired)
	})

	t.Run("schema defaults to unspecified category", func(t *testing.T) {
		s, err := NewSchema("ctx-1", "InvoiceCreated", "", "")
		require.NoError(t, err)
		assert.Equal(t, CategoryUnspecified, s.Category)

		_, err = NewSchema("ctx-1", "InvoiceCreated", "Telegram", "")
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("version validates semver and defaults to draft", func(t *testing.T) {
		v, err := NewSchemaVersion("sch-1", "1.0.0", "{}", "", "")
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, v.Status)

		_, err = NewSchemaVersion("sch-1", "1.0", "{}", "", "")
		assert.ErrorIs(t, err, ErrInvalidSemanticVersion)

		_, err = NewSchemaVersion("sch-1", "1.0.0", "  ", "", "")
		assert.ErrorIs(t, err, ErrSpecificationEmpty)

		_, err = NewSchemaVersion("sch-1", "1.0.0", "{}", "", "Retired")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestSnapshot_Normalize(t *testing.T) {
	snap := &Snapshot{
		RegistryID: "reg-1",
		Products: []Product{
			{ID: "p2", Name: "item10"},
			{ID: "p1", Name: "item2"},
			{
				ID:   "p3",
				Name: "Alpha",
				Domains: []Domain{
					{
						ID:   "d1",
						Name: "core",
						Contexts: []Context{
							{
								ID:        "c1",
								Namespace: "io.example",
								Schemas: []Schema{
									{
										ID:   "s1",
										Name: "Invoice",
										Versions: []SchemaVersion{
											{ID: "v2", SemanticVersion: "1.10.0"},
											{ID: "v1", SemanticVersion: "1.9.0"},
											{ID: "v3", SemanticVersion: "1.2.0"},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	snap.Normalize()

	// Natural sort: numbers compare numerically, case-insensitively.
	assert.Equal(t, []string{"Alpha", "item2", "item10"},
		[]string{snap.Products[0].Name, snap.Products[1].Name, snap.Products[2].Name})

	versions := snap.Products[0].Domains[0].Contexts[0].Schemas[0].Versions
	assert.Equal(t, []string{"1.2.0", "1.9.0", "1.10.0"},
		[]string{versions[0].SemanticVersion, versions[1].SemanticVersion, versions[2].SemanticVersion})
}

func TestSnapshot_NormalizeIsIdempotent(t *testing.T) {
	snap := &Snapshot{Products: []Product{
		{ID: "p1", Name: "beta"},
		{ID: "p2", Name: "alpha"},
	}}

	snap.Normalize()
	first := []string{snap.Products[0].ID, snap.Products[1].ID}
	snap.Normalize()
	second := []string{snap.Products[0].ID, snap.Products[1].ID}

	assert.Equal(t, first, second)
}

func TestSnapshot_ContainsID(t *testing.T) {
	snap := &Snapshot{Products: []Product{
		{
			ID: "p1",
			Domains: []Domain{
				{
					ID: "d1",
					Contexts: []Context{
						{
							ID: "c1",
							Schemas: []Schema{
								{ID: "s1", Versions: []SchemaVersion{{ID: "v1"}}},
							},
						},
					},
				},
			},
		},
	}}

	for _, id := range []string{"p1", "d1", "c1", "s1", "v1"} {
		assert.True(t, snap.ContainsID(id), "id %s", id)
	}
	assert.False(t, snap.ContainsID("missing"))
	assert.False(t, snap.ContainsID(""))

	var nilSnap *Snapshot
	assert.False(t, nilSnap.ContainsID("p1"))
}

func TestSnapshot_FindSchemaVersion(t *testing.T) {
	snap := &Snapshot{Products: []Product{
		{
			ID: "p1",
			Domains: []Domain{
				{
					ID: "d1",
					Contexts: []Context{
						{
							ID: "c1",
							Schemas: []Schema{
								{ID: "s1", Versions: []SchemaVersion{{ID: "v1", SemanticVersion: "1.0.0"}}},
							},
						},
					},
				},
			},
		},
	}}

	v := snap.FindSchemaVersion("v1")
	require.NotNil(t, v)
	assert.Equal(t, "1.0.0", v.SemanticVersion)
	assert.Nil(t, snap.FindSchemaVersion("v9"))
}
