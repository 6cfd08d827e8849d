package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authnv1 "k8s.io/api/authentication/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/agentworks/console/pkg/authz"
	"github.com/agentworks/console/pkg/workspace"
)

func TestServiceAccountName(t *testing.T) {
	assert.Equal(t, "workspace-viewer", ServiceAccountName(authz.RoleViewer))
	assert.Equal(t, "workspace-editor", ServiceAccountName(authz.RoleEditor))
	assert.Equal(t, "workspace-owner", ServiceAccountName(authz.RoleOwner))
}

func TestKubeIssuer_Issue(t *testing.T) {
	expiry := metav1.NewTime(time.Now().Add(time.Hour).Truncate(time.Second))

	client := fake.NewSimpleClientset()
	var gotSA string
	var gotSpec authnv1.TokenRequestSpec
	client.PrependReactor("create", "serviceaccounts", func(action k8stesting.Action) (bool, runtime.Object, error) {
		create := action.(k8stesting.CreateActionImpl)
		if create.Subresource != "token" {
			return false, nil, nil
		}
		req := create.Object.(*authnv1.TokenRequest)
		gotSA = create.Name
		gotSpec = req.Spec
		return true, &authnv1.TokenRequest{
			Status: authnv1.TokenRequestStatus{
				Token:               "minted-token",
				ExpirationTimestamp: expiry,
			},
		}, nil
	})

	issuer := NewKubeIssuer(client, WithAudiences("https://kubernetes.default.svc"), WithTokenTTL(30*time.Minute))
	ws := &workspace.Workspace{Name: "demo", Namespace: "demo-ns"}

	cred, err := issuer.Issue(context.Background(), ws, authz.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, "minted-token", cred.Token)
	assert.Equal(t, expiry.Time, cred.ExpiresAt)

	assert.Equal(t, "workspace-editor", gotSA)
	assert.Equal(t, []string{"https://kubernetes.default.svc"}, gotSpec.Audiences)
	require.NotNil(t, gotSpec.ExpirationSeconds)
	assert.Equal(t, int64(1800), *gotSpec.ExpirationSeconds)
}

func TestKubeIssuer_IssueAPIError(t *testing.T) {
	client := fake.NewSimpleClientset()
	cause := errors.New("serviceaccounts \"workspace-owner\" not found")
	client.PrependReactor("create", "serviceaccounts", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, cause
	})

	issuer := NewKubeIssuer(client)
	ws := &workspace.Workspace{Name: "demo", Namespace: "demo-ns"}

	_, err := issuer.Issue(context.Background(), ws, authz.RoleOwner)
	require.Error(t, err)

	var issueErr *IssuanceError
	require.ErrorAs(t, err, &issueErr)
	assert.Equal(t, "demo", issueErr.Workspace)
	assert.Equal(t, authz.RoleOwner, issueErr.Role)
	assert.ErrorIs(t, err, cause)
}

func TestKubeIssuer_IssueEmptyToken(t *testing.T) {
	client := fake.NewSimpleClientset()
	client.PrependReactor("create", "serviceaccounts", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, &authnv1.TokenRequest{}, nil
	})

	issuer := NewKubeIssuer(client)
	ws := &workspace.Workspace{Name: "demo", Namespace: "demo-ns"}

	_, err := issuer.Issue(context.Background(), ws, authz.RoleViewer)
	require.Error(t, err)

	var issueErr *IssuanceError
	require.ErrorAs(t, err, &issueErr)
	assert.Contains(t, issueErr.Err.Error(), "empty token")
}
