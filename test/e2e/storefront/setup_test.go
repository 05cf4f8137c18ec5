package storefront_test

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and helpers for the storefront end-to-end tests.
 */

const (
	testImageName = "storefront-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminEmail     = "admin@example.com"
	adminPassword  = "Admin123!"
)

// baseEnv runs the service the way it runs in production, minus SMTP.
var baseEnv = map[string]string{
	"APP_SECRET":      "e2e-secret-e2e-secret-e2e-secret",
	"BOOTSTRAP_TOKEN": bootstrapToken,
	"ENV":             "test",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",
}

// relaxedLimits keeps rapid test traffic under the rate limits.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stdout, "skipping storefront e2e tests in short mode")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building storefront Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up storefront Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/storefront/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupContainer starts the service and returns its base URL. Extra env
// entries override the defaults.
func setupContainer(t *testing.T, extra ...map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := maps.Clone(baseEnv)
	for _, e := range extra {
		maps.Copy(env, e)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

// bootstrapAdmin creates the first admin and returns a client signed in as it.
func bootstrapAdmin(t *testing.T, baseURL string) *storefrontsdk.Client {
	t.Helper()

	c := storefrontsdk.NewClient(baseURL)
	_, err := c.Bootstrap(t.Context(), storefrontsdk.BootstrapRequest{
		Token:    bootstrapToken,
		Name:     "Administrator",
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")

	_, err = c.Signin(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err, "Admin signin should succeed")
	return c
}

// signup registers a user and returns a client holding their session.
func signup(t *testing.T, baseURL, name, email string) (*storefrontsdk.Client, *storefrontsdk.UserResponse) {
	t.Helper()

	c := storefrontsdk.NewClient(baseURL)
	u, err := c.Signup(t.Context(), storefrontsdk.SignupRequest{Name: name, Email: email, Password: "Passw0rd!"})
	require.NoError(t, err, "Signup should succeed")
	return c, u
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *storefrontsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, "unexpected error: %v", err)
}
