package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		ref  string
		want Kind
	}{
		{"inventory.Region", KindRegion},
		{"INVENTORY.region", KindRegion},
		{"identity.Project", KindProject},
		{"notification.Protocol", KindProtocol},
		{"spot_automation.SpotGroup", KindSpotGroup},
		{" secret.Secret ", KindSecret},
		{"webhook", KindWebhook},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseKind(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKindRejectsUnknown(t *testing.T) {
	for _, ref := range []string{"", "Region", "foo.Region", "inventory.Server"} {
		_, err := ParseKind(ref)
		assert.ErrorIs(t, err, ErrUnknownKind, ref)
	}
}

func TestEveryKindHasDescriptor(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 13)
	for _, k := range kinds {
		d, ok := Lookup(k)
		require.True(t, ok, k)
		assert.NotEmpty(t, d.Service, k)
		assert.NotEmpty(t, d.Resource, k)
		assert.Contains(t, d.Only, d.IDField, k)

		back, err := ParseKind(d.Reference)
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
}

func TestDescriptorProjectLabels(t *testing.T) {
	region, _ := Lookup(KindRegion)
	assert.Equal(t, Item{Key: "ap-northeast-2", Label: "Seoul (ap-northeast-2)", Name: "Seoul"},
		region.Project(api.Record{"region_code": "ap-northeast-2", "name": "Seoul"}))
	assert.Equal(t, "global", region.Project(api.Record{"region_code": "global"}).Label)

	project, _ := Lookup(KindProject)
	assert.Equal(t, "Ops > Alpha", project.Project(api.Record{
		"project_id": "p-1", "name": "Alpha",
		"project_group_info": map[string]any{"name": "Ops"},
	}).Label)
	assert.Equal(t, "Alpha", project.Project(api.Record{"project_id": "p-1", "name": "Alpha"}).Label)

	user, _ := Lookup(KindUser)
	assert.Equal(t, "kim@example.com", user.Project(api.Record{"user_id": "kim@example.com"}).Label)

	cst, _ := Lookup(KindCloudServiceType)
	assert.Equal(t, "EC2 / Instance", cst.Project(api.Record{"cloud_service_type_id": "cst-1", "group": "EC2", "name": "Instance"}).Label)

	secret, _ := Lookup(KindSecret)
	assert.Equal(t, Item{Key: "s-1", Label: "s-1"}, secret.Project(api.Record{"secret_id": "s-1"}))
}

func TestMapSortedAndClone(t *testing.T) {
	m := Map{
		"b": {Key: "b", Label: "Beta"},
		"a": {Key: "a", Label: "Alpha"},
		"c": {Key: "c", Label: "Alpha"},
	}
	sorted := m.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{sorted[0].Key, sorted[1].Key, sorted[2].Key})

	var nilMap Map
	assert.NotNil(t, nilMap.Clone())
	clone := m.Clone()
	clone["z"] = Item{}
	assert.Len(t, m, 3)
}
