package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"

	"github.com/agentworks/console/pkg/authz"
)

func workspaceObject(name string, spec map[string]interface{}) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "console.agentworks.dev/v1alpha1",
		"kind":       "Workspace",
		"metadata":   map[string]interface{}{"name": name},
		"spec":       spec,
	}}
}

func fakeDynamicClient(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	scheme := runtime.NewScheme()
	listKinds := map[schema.GroupVersionResource]string{
		GroupVersionResource: "WorkspaceList",
	}
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, listKinds, objects...)
}

func TestKubeStore_Get(t *testing.T) {
	obj := workspaceObject("demo", map[string]interface{}{
		"namespaceName": "demo-ns",
		"roleBindings": []interface{}{
			map[string]interface{}{"groupName": "team-ml", "role": "editor"},
			map[string]interface{}{"groupName": "platform-admins", "role": "owner"},
		},
		"directGrants": []interface{}{
			map[string]interface{}{"principalId": "u-1", "role": "viewer"},
		},
	})

	store := NewKubeStore(fakeDynamicClient(obj))
	ws, err := store.Get(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", ws.Name)
	assert.Equal(t, "demo-ns", ws.Namespace)
	assert.Equal(t, []authz.RoleBinding{
		{GroupName: "team-ml", Role: authz.RoleEditor},
		{GroupName: "platform-admins", Role: authz.RoleOwner},
	}, ws.RoleBindings)
	assert.Equal(t, []authz.DirectGrant{
		{PrincipalID: "u-1", Role: authz.RoleViewer},
	}, ws.DirectGrants)
}

func TestKubeStore_GetNotFound(t *testing.T) {
	store := NewKubeStore(fakeDynamicClient())

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKubeStore_NamespaceDefaultsToName(t *testing.T) {
	obj := workspaceObject("demo", map[string]interface{}{})

	store := NewKubeStore(fakeDynamicClient(obj))
	ws, err := store.Get(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", ws.Namespace)
}

func TestKubeStore_DropsMalformedBindings(t *testing.T) {
	obj := workspaceObject("demo", map[string]interface{}{
		"namespaceName": "demo-ns",
		"roleBindings": []interface{}{
			map[string]interface{}{"groupName": "team-ml", "role": "superuser"},
			map[string]interface{}{"groupName": "", "role": "viewer"},
			map[string]interface{}{"groupName": "team-web", "role": "viewer"},
		},
		"directGrants": []interface{}{
			map[string]interface{}{"principalId": "u-1", "role": "root"},
		},
	})

	store := NewKubeStore(fakeDynamicClient(obj))
	ws, err := store.Get(context.Background(), "demo")
	require.NoError(t, err)

	// Unknown roles and empty subjects are skipped, not fatal.
	assert.Equal(t, []authz.RoleBinding{
		{GroupName: "team-web", Role: authz.RoleViewer},
	}, ws.RoleBindings)
	assert.Empty(t, ws.DirectGrants)
}
