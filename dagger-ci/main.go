// CI конвертера Carbon JSON → HTML: тесты, сборка CLI под linux/amd64 и linux/arm64 и публикация образа.
package main

import (
	"context"
	"dagger/carbon/internal/dagger"
	"fmt"
)

type Carbon struct{}

func (m *Carbon) GoBuildEnv(source *dagger.Directory) *dagger.Container {
	goCache := dag.CacheVolume("go")
	return dag.Container().
		From("golang:alpine").
		WithDirectory("/src", source).
		WithWorkdir("/src").
		WithEnvVariable("GOOS", "linux").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", goCache).
		WithExec([]string{"go", "mod", "tidy"})
}

// Test запускает go vet и тесты модуля.
func (m *Carbon) Test(ctx context.Context, source *dagger.Directory) (string, error) {
	return m.GoBuildEnv(source).
		WithExec([]string{"go", "vet", "./..."}).
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// Docs генерирует таблицу кодов ошибок.
func (m *Carbon) Docs(source *dagger.Directory) *dagger.File {
	return m.GoBuildEnv(source).
		WithExec([]string{"go", "run", "./cmd/docsgen", "-out", "/src/api_errors.md"}).
		File("/src/api_errors.md")
}

func (m *Carbon) RuntimeEnv(platform dagger.Platform, appBin *dagger.File) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{
		Platform: platform,
	}).
		From("alpine").
		WithWorkdir("/app").
		WithFile("/app/carbon", appBin).
		WithEnvVariable("CARBON_LISTEN_ADDR", ":8080").
		WithEnvVariable("CARBON_METRICS_ADDR", ":9200").
		WithExposedPort(8080).
		WithEntrypoint([]string{"/app/carbon", "-serve"})
}

func (m *Carbon) Build(version string, source *dagger.Directory) []*dagger.Container {
	buildMatrix := []struct {
		Arch     string
		BinName  string
		Platform dagger.Platform
	}{
		{
			Arch:     "amd64",
			BinName:  "/build/carbon-linux",
			Platform: dagger.Platform("linux/amd64"),
		},
		{
			Arch:     "arm64",
			BinName:  "/build/carbon-linux-arm64",
			Platform: dagger.Platform("linux/arm64/v8"),
		},
	}

	var images []*dagger.Container
	for _, buildParam := range buildMatrix {
		builder := m.GoBuildEnv(source).
			WithEnvVariable("GOARCH", buildParam.Arch).
			WithExec([]string{"go", "build", "-o", buildParam.BinName, "-ldflags", fmt.Sprintf("-s -w -X main.version=%s", version), "./cmd/carbon"})

		image := m.RuntimeEnv(buildParam.Platform, builder.File(buildParam.BinName)).
			WithLabel("org.opencontainers.image.source", "https://github.com/candybanana/carbon-json-to-html").
			WithLabel("org.opencontainers.image.version", version)
		images = append(images, image)
	}
	return images
}

func (m *Carbon) Publish(
	ctx context.Context,
	images []*dagger.Container,
	registrySecret *dagger.Secret,
	registryUser string,
	imageName string,
) (string, error) {
	return dag.Container().
		WithRegistryAuth("ghcr.io", registryUser, registrySecret).
		Publish(ctx, "ghcr.io/"+imageName, dagger.ContainerPublishOpts{PlatformVariants: images})
}

func (m *Carbon) Export(
	ctx context.Context,
	images []*dagger.Container,
	imageName string,
) (string, error) {
	return dag.Container().
		Export(ctx, imageName, dagger.ContainerExportOpts{PlatformVariants: images})
}

func (m *Carbon) BuildLocal(ctx context.Context, name string, source *dagger.Directory) (string, error) {
	return m.Export(ctx, m.Build("v0.1.0", source), name)
}

// Release прогоняет тесты и публикует образ с тегами версии и latest.
func (m *Carbon) Release(ctx context.Context, version string, source *dagger.Directory,
	registrySecret *dagger.Secret,
	registryUser string,
	imageName string,
) error {
	if _, err := m.Test(ctx, source); err != nil {
		return err
	}

	images := m.Build(version, source)
	for _, tag := range []string{version, "latest"} {
		ref, err := m.Publish(ctx, images, registrySecret, registryUser, fmt.Sprintf("%s:%s", imageName, tag))
		if err != nil {
			return err
		}
		fmt.Println(ref)
	}
	return nil
}
