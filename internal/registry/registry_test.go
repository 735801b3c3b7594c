package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constantsDoc = `# clusterdock constants
docker_registry_url = reg.example.com
cloudera_namespace=acme
unrelated_key = ignored
malformed line without separator
`

func TestResolve_ParsesConstantsDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(constantsDoc))
	}))
	defer server.Close()

	cfg, status := NewResolver(server.URL).Resolve(context.Background())
	assert.Equal(t, StatusResolved, status)
	assert.Equal(t, "reg.example.com", cfg.RegistryURL)
	assert.Equal(t, "acme", cfg.Namespace)
}

func TestResolve_AbsentKeysYieldEmptyStrings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("some_other_key = value\n"))
	}))
	defer server.Close()

	cfg, status := NewResolver(server.URL).Resolve(context.Background())
	assert.Equal(t, StatusResolved, status)
	assert.Empty(t, cfg.RegistryURL)
	assert.Empty(t, cfg.Namespace)
}

func TestResolve_FetchFailure(t *testing.T) {
	t.Run("non-OK status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg, status := NewResolver(server.URL).Resolve(context.Background())
		assert.Equal(t, StatusFailed, status)
		assert.Equal(t, Config{}, cfg)
	})

	t.Run("unreachable host", func(t *testing.T) {
		cfg, status := NewResolver("http://127.0.0.1:1/constants").Resolve(context.Background())
		assert.Equal(t, StatusFailed, status)
		assert.Equal(t, Config{}, cfg)
	})
}

func TestControllerImage_OverrideSkipsFetch(t *testing.T) {
	fetched := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = true
	}))
	defer server.Close()

	image, status := NewResolver(server.URL).ControllerImage(context.Background(), "myorg/custom:2.0")
	assert.Equal(t, StatusSkipped, status)
	assert.Equal(t, "myorg/custom:2.0", image)
	assert.False(t, fetched, "override must skip the constants fetch entirely")
}

func TestControllerImage_ComposedFromConstants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(constantsDoc))
	}))
	defer server.Close()

	image, status := NewResolver(server.URL).ControllerImage(context.Background(), "")
	assert.Equal(t, StatusResolved, status)
	assert.Equal(t, "reg.example.com/acme/clusterdock:latest", image)
}

func TestImageReference_Deterministic(t *testing.T) {
	cfg := Config{RegistryURL: "reg.example.com", Namespace: "acme"}

	first := ImageReference(cfg)
	assert.Equal(t, "reg.example.com/acme/clusterdock:latest", first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ImageReference(cfg))
	}
}

func TestImageReference_MalformedComponentsCompose(t *testing.T) {
	// Empty coordinates still compose; validation is the caller's job.
	assert.Equal(t, "//clusterdock:latest", ImageReference(Config{}))
}

func TestParseConstants_WhitespaceTolerance(t *testing.T) {
	doc := "  docker_registry_url   =   reg.example.com  \n\tcloudera_namespace\t=\tacme\n"
	values, err := parseConstants(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "reg.example.com", values["docker_registry_url"])
	assert.Equal(t, "acme", values["cloudera_namespace"])
}
