package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestDecodeSession(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "console.agentworks.dev/v1alpha1",
		"kind":       "AgentSession",
		"metadata": map[string]interface{}{
			"name":              "session-1",
			"creationTimestamp": created.Format(time.RFC3339),
		},
		"spec": map[string]interface{}{
			"prompt": "summarize the incident reports",
		},
		"status": map[string]interface{}{
			"phase": "Running",
		},
	}}
	obj.SetCreationTimestamp(metav1.NewTime(created))

	s := decodeSession(obj)
	assert.Equal(t, "session-1", s.Name)
	assert.Equal(t, "Running", s.Phase)
	assert.Equal(t, "summarize the incident reports", s.Prompt)
	assert.Equal(t, created, s.CreatedAt)
}

func TestDecodeSession_MinimalObject(t *testing.T) {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "console.agentworks.dev/v1alpha1",
		"kind":       "AgentSession",
		"metadata":   map[string]interface{}{"name": "bare"},
	}}

	s := decodeSession(obj)
	assert.Equal(t, "bare", s.Name)
	assert.Empty(t, s.Phase)
	assert.Empty(t, s.Prompt)
}
