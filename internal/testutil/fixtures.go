// Package testutil provides shared fixtures for package tests:
// canonical recipe and manifest texts plus target-directory builders.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Digests of the superseded and current openjre base images, used by
// the migration-scenario tests.
const (
	OldJreDigest = "29cb2ee552c7c7a924b6a1b59802508dc5123e7edad1d65d575bbf07cd05fa6d"
	NewJreDigest = "218ff7542fc2e54b984cab13eac969f447365b55b053e9ec91f5a90415451f1a"
)

// GoodRecipe is a compliant single-stage recipe: base image pinned by
// tag and digest, privileged steps before the final USER, exec-form
// entrypoint.
const GoodRecipe = "FROM bellsoft/liberica-openjre-alpine:25-37@sha256:" + NewJreDigest + "\n" +
	"LABEL org.opencontainers.image.version=\"1.0.0\"\n" +
	"ENV CN_VERSION=1.0.0\n" +
	"RUN apk add --no-cache tini curl\n" +
	"COPY app /app\n" +
	"USER 1000\n" +
	"ENTRYPOINT [\"tini\", \"-g\", \"--\", \"/app/run.sh\"]\n"

// BadRecipe still references the superseded base image and ends as root.
const BadRecipe = "FROM bellsoft/liberica-openjre-alpine:17.0.12-25@sha256:" + OldJreDigest + "\n" +
	"RUN apk add curl\n" +
	"USER root\n"

// GoodManifest pins every dependency exactly.
const GoodManifest = "grpcio==1.60.0\nrequests==2.31.0\nclick==8.1.7\n"

// BadManifest carries an unpinned entry and a duplicate.
const BadManifest = "requests\ngrpcio==1.60.0\ngrpcio==1.62.0\n"

// WriteTarget lays out a check target directory with the standard file
// names. An empty manifestText writes no manifest file.
func WriteTarget(t *testing.T, recipeText, manifestText string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, "Dockerfile", recipeText)
	if manifestText != "" {
		WriteFile(t, dir, "requirements.txt", manifestText)
	}
	return dir
}

// WriteFile writes one file under dir, creating parent directories, and
// returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
