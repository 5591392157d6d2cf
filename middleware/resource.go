package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/duynhne/advocate-service/config"
)

// unknownService is the default service name when detection fails
const unknownService = "unknown-service"

// namespaceFile is mounted into every pod by Kubernetes
var namespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// detectServiceInfo detects service name and namespace from the environment.
//
// Service name: OTEL_SERVICE_NAME, then the deployment part of POD_NAME or the
// hostname ("advocate-75c98b4b9c-kdv2n" -> "advocate"), then unknownService.
// Namespace: service.namespace in OTEL_RESOURCE_ATTRIBUTES, the service account
// namespace file, POD_NAMESPACE, then "default".
func detectServiceInfo() (serviceName, namespace string) {
	serviceName = os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName, _ = os.Hostname()
		}
		serviceName = deploymentName(podName)
	}
	if serviceName == "" {
		serviceName = unknownService
	}

	for _, attr := range strings.Split(os.Getenv("OTEL_RESOURCE_ATTRIBUTES"), ",") {
		if k, v, ok := strings.Cut(attr, "="); ok && k == "service.namespace" && v != "" {
			return serviceName, v
		}
	}
	if data, err := os.ReadFile(namespaceFile); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return serviceName, ns
		}
	}
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return serviceName, ns
	}
	return serviceName, "default"
}

// deploymentName strips the replicaset and pod hashes from a pod name.
// Names without the two hash segments are returned unchanged.
func deploymentName(podName string) string {
	parts := strings.Split(podName, "-")
	if len(parts) >= 3 {
		return strings.Join(parts[:len(parts)-2], "-")
	}
	return podName
}

// CreateResource creates an OpenTelemetry resource with auto-detected attributes.
// The configured service name is used when detection finds nothing.
func CreateResource(ctx context.Context, svc config.ServiceConfig) (*resource.Resource, error) {
	serviceName, namespace := detectServiceInfo()
	if serviceName == unknownService && svc.Name != "" {
		serviceName = svc.Name
	}

	attrs := []resource.Option{
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
			semconv.ServiceVersionKey.String(svc.Version),
			semconv.DeploymentEnvironmentKey.String(svc.Env),
		),
	}

	res, err := resource.New(ctx, attrs...)
	if err != nil {
		// partial detection failures still produce a usable minimal resource
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}

// GetServiceName extracts service name from a resource
func GetServiceName(res *resource.Resource) string {
	for _, attr := range res.Attributes() {
		if attr.Key == semconv.ServiceNameKey {
			return attr.Value.AsString()
		}
	}
	return unknownService
}
