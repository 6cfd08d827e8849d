package workspace

import (
	"context"
	"fmt"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	"github.com/agentworks/console/pkg/authz"
)

// GroupVersionResource of the Workspace custom resource.
var GroupVersionResource = schema.GroupVersionResource{
	Group:    "console.agentworks.dev",
	Version:  "v1alpha1",
	Resource: "workspaces",
}

// KubeStore reads Workspace custom resources through the dynamic client.
// Workspaces are cluster-scoped; each one names the namespace that backs it.
type KubeStore struct {
	client dynamic.Interface
}

// NewKubeStore creates a store over the given dynamic client.
func NewKubeStore(client dynamic.Interface) *KubeStore {
	return &KubeStore{client: client}
}

// Get implements Store.
func (s *KubeStore) Get(ctx context.Context, name string) (*Workspace, error) {
	obj, err := s.client.Resource(GroupVersionResource).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workspace %q: %w", name, err)
	}
	return decodeWorkspace(obj)
}

// decodeWorkspace maps an unstructured Workspace object onto the typed form.
// Bindings with unknown role names are dropped rather than failing the whole
// lookup; a stale binding must not make the workspace unreadable.
func decodeWorkspace(obj *unstructured.Unstructured) (*Workspace, error) {
	ws := &Workspace{Name: obj.GetName()}

	namespace, _, err := unstructured.NestedString(obj.Object, "spec", "namespaceName")
	if err != nil {
		return nil, fmt.Errorf("failed to read spec.namespaceName of workspace %q: %w", ws.Name, err)
	}
	if namespace == "" {
		namespace = ws.Name
	}
	ws.Namespace = namespace

	bindings, _, err := unstructured.NestedSlice(obj.Object, "spec", "roleBindings")
	if err != nil {
		return nil, fmt.Errorf("failed to read spec.roleBindings of workspace %q: %w", ws.Name, err)
	}
	for _, raw := range bindings {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		group, _ := entry["groupName"].(string)
		roleName, _ := entry["role"].(string)
		role, err := authz.ParseRole(roleName)
		if err != nil || group == "" {
			continue
		}
		ws.RoleBindings = append(ws.RoleBindings, authz.RoleBinding{GroupName: group, Role: role})
	}

	grants, _, err := unstructured.NestedSlice(obj.Object, "spec", "directGrants")
	if err != nil {
		return nil, fmt.Errorf("failed to read spec.directGrants of workspace %q: %w", ws.Name, err)
	}
	for _, raw := range grants {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		principalID, _ := entry["principalId"].(string)
		roleName, _ := entry["role"].(string)
		role, err := authz.ParseRole(roleName)
		if err != nil || principalID == "" {
			continue
		}
		ws.DirectGrants = append(ws.DirectGrants, authz.DirectGrant{PrincipalID: principalID, Role: role})
	}

	return ws, nil
}
