package credentials

import (
	"context"
	"fmt"
	"strings"
	"time"

	authnv1 "k8s.io/api/authentication/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/agentworks/console/pkg/authz"
	"github.com/agentworks/console/pkg/workspace"
)

// Issuer mints a fresh scoped credential for a (workspace, role) pair. It is
// a pure I/O adapter: success returns the credential, failure returns an
// *IssuanceError, and nothing is ever cached here -- caching belongs to the
// TokenCache.
type Issuer interface {
	Issue(ctx context.Context, ws *workspace.Workspace, role authz.WorkspaceRole) (Credential, error)
}

// KubeIssuer mints credentials through the Kubernetes TokenRequest API. Each
// workspace namespace carries one ServiceAccount per role, bound by the
// cluster-side reconciler to a Role matching that role's permission set; the
// issuer only requests tokens for them.
type KubeIssuer struct {
	client    kubernetes.Interface
	audiences []string
	ttl       time.Duration
}

// IssuerOption customizes a KubeIssuer.
type IssuerOption func(*KubeIssuer)

// WithAudiences sets the audiences requested for minted tokens.
func WithAudiences(audiences ...string) IssuerOption {
	return func(i *KubeIssuer) { i.audiences = audiences }
}

// WithTokenTTL sets the expiration requested for minted tokens.
func WithTokenTTL(ttl time.Duration) IssuerOption {
	return func(i *KubeIssuer) { i.ttl = ttl }
}

// NewKubeIssuer creates an issuer over the given clientset.
func NewKubeIssuer(client kubernetes.Interface, opts ...IssuerOption) *KubeIssuer {
	i := &KubeIssuer{
		client: client,
		ttl:    time.Hour,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ServiceAccountName returns the per-role ServiceAccount the reconciler
// provisions in every workspace namespace.
func ServiceAccountName(role authz.WorkspaceRole) string {
	return fmt.Sprintf("workspace-%s", role)
}

// Issue implements Issuer.
func (i *KubeIssuer) Issue(ctx context.Context, ws *workspace.Workspace, role authz.WorkspaceRole) (Credential, error) {
	expiration := int64(i.ttl.Seconds())
	req := &authnv1.TokenRequest{
		Spec: authnv1.TokenRequestSpec{
			Audiences:         i.audiences,
			ExpirationSeconds: &expiration,
		},
	}

	saName := ServiceAccountName(role)
	resp, err := i.client.CoreV1().ServiceAccounts(ws.Namespace).CreateToken(ctx, saName, req, metav1.CreateOptions{})
	if err != nil {
		return Credential{}, &IssuanceError{Workspace: ws.Name, Role: role, Err: err}
	}
	if strings.TrimSpace(resp.Status.Token) == "" {
		return Credential{}, &IssuanceError{
			Workspace: ws.Name,
			Role:      role,
			Err:       fmt.Errorf("received empty token for service account %s/%s", ws.Namespace, saName),
		}
	}

	cred := Credential{Token: resp.Status.Token}
	if !resp.Status.ExpirationTimestamp.IsZero() {
		cred.ExpiresAt = resp.Status.ExpirationTimestamp.Time
	}
	return cred, nil
}
