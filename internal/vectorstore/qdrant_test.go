package vectorstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestQdrantConfigValidate(t *testing.T) {
	valid := QdrantConfig{
		Host:       "localhost",
		Port:       6334,
		Collection: "incident_reports",
		VectorSize: 768,
	}

	tests := []struct {
		name    string
		mutate  func(*QdrantConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *QdrantConfig) {}},
		{name: "missing host", mutate: func(c *QdrantConfig) { c.Host = "" }, wantErr: true},
		{name: "zero port", mutate: func(c *QdrantConfig) { c.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *QdrantConfig) { c.Port = 70000 }, wantErr: true},
		{name: "missing collection", mutate: func(c *QdrantConfig) { c.Collection = "" }, wantErr: true},
		{name: "zero vector size", mutate: func(c *QdrantConfig) { c.VectorSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		namespace string
		wantErr   bool
	}{
		{namespace: ""},
		{namespace: "default"},
		{namespace: "full_report"},
		{namespace: "section_2"},
		{namespace: "Description", wantErr: true},
		{namespace: "has-dash", wantErr: true},
		{namespace: "has space", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			err := ValidateNamespace(tt.namespace)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNamespace)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollectionName(t *testing.T) {
	idx := &QdrantIndex{config: QdrantConfig{Collection: "incident_reports"}}

	assert.Equal(t, "incident_reports", idx.collectionName(""))
	assert.Equal(t, "incident_reports_description", idx.collectionName("description"))
	assert.Equal(t, "incident_reports_full_report", idx.collectionName("full_report"))
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, isTransientError(status.Error(grpccodes.Unavailable, "down")))
	assert.True(t, isTransientError(status.Error(grpccodes.DeadlineExceeded, "slow")))
	assert.True(t, isTransientError(status.Error(grpccodes.ResourceExhausted, "throttled")))
	assert.False(t, isTransientError(status.Error(grpccodes.InvalidArgument, "bad vector")))
	assert.False(t, isTransientError(errors.New("plain error")))
}
