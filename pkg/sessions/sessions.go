package sessions

import (
	"context"
	"fmt"
	"time"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"

	"github.com/agentworks/console/pkg/credentials"
)

// GroupVersionResource of the AgentSession custom resource.
var GroupVersionResource = schema.GroupVersionResource{
	Group:    "console.agentworks.dev",
	Version:  "v1alpha1",
	Resource: "agentsessions",
}

// Session is a summary of one agent session in a workspace.
type Session struct {
	Name      string    `json:"name"`
	Phase     string    `json:"phase,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Lister lists the agent sessions of a workspace. The bearer token scopes
// the call: it carries the user's effective role, not the console's own
// identity, so the cluster enforces least privilege on every list.
type Lister interface {
	List(ctx context.Context, token, namespace string) ([]Session, error)
}

// KubeLister lists AgentSession custom resources with a caller-supplied
// bearer token.
type KubeLister struct {
	base *rest.Config
}

// NewKubeLister creates a lister that derives per-call clients from the base
// cluster config, replacing its credentials with the scoped token.
func NewKubeLister(base *rest.Config) *KubeLister {
	return &KubeLister{base: base}
}

// List implements Lister. Authentication and authorization rejections are
// reported as credentials.ErrCredentialRejected: the caller has already
// passed access resolution, so a rejection here means the scoped token went
// stale, not that the user lacks the role.
func (l *KubeLister) List(ctx context.Context, token, namespace string) ([]Session, error) {
	client, err := l.clientFor(token)
	if err != nil {
		return nil, err
	}

	list, err := client.Resource(GroupVersionResource).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		if k8serrors.IsUnauthorized(err) || k8serrors.IsForbidden(err) {
			return nil, fmt.Errorf("listing sessions in %q: %w", namespace, credentials.ErrCredentialRejected)
		}
		return nil, fmt.Errorf("failed to list sessions in %q: %w", namespace, err)
	}

	result := make([]Session, 0, len(list.Items))
	for i := range list.Items {
		result = append(result, decodeSession(&list.Items[i]))
	}
	return result, nil
}

// clientFor builds a dynamic client authenticated as the scoped token.
func (l *KubeLister) clientFor(token string) (dynamic.Interface, error) {
	cfg := rest.AnonymousClientConfig(l.base)
	cfg.BearerToken = token

	client, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoped client: %w", err)
	}
	return client, nil
}

func decodeSession(obj *unstructured.Unstructured) Session {
	s := Session{
		Name:      obj.GetName(),
		CreatedAt: obj.GetCreationTimestamp().Time,
	}
	s.Phase, _, _ = unstructured.NestedString(obj.Object, "status", "phase")
	s.Prompt, _, _ = unstructured.NestedString(obj.Object, "spec", "prompt")
	return s
}
