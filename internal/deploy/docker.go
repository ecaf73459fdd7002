package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/go-archive"
	"github.com/rs/zerolog"
)

// Container builds an image from the repository worktree and replaces the
// running container for this app with one started from the new image. The
// app name is derived from the repository directory; the commit is used as
// the image tag and recorded in labels.
func (d Deployer) Container(ctx context.Context, repoPath, dockerfile, commit string) error {
	log := zerolog.Ctx(ctx)

	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}
	app := strings.ToLower(filepath.Base(abs))

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	imageID, err := buildImage(ctx, cli, abs, dockerfile, app, commit)
	if err != nil {
		return fmt.Errorf("build image: %w", err)
	}

	if err := removeExisting(ctx, cli, app); err != nil {
		return err
	}

	log.Info().Str("image", imageID).Msg("starting new container")

	name := fmt.Sprintf("%s-%s", app, commit)
	resp, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:  fmt.Sprintf("%s:%s", app, commit),
			Labels: deployLabels(app, commit),
		},
		&container.HostConfig{
			RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		}, nil, nil, name)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}

	log.Info().Str("container", resp.ID).Str("app", app).Msg("container deployment complete")
	return nil
}

func deployLabels(app, commit string) map[string]string {
	return map[string]string{
		"postloop.enabled": "true",
		"postloop.app":     app,
		"postloop.commit":  commit,
	}
}

func removeExisting(ctx context.Context, cli *client.Client, app string) error {
	log := zerolog.Ctx(ctx)

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", "postloop.enabled=true"),
			filters.Arg("label", fmt.Sprintf("postloop.app=%s", app)),
		),
	})
	if err != nil {
		return fmt.Errorf("list containers: %w", err)
	}

	for _, c := range containers {
		log.Info().Str("container", c.ID).Msg("removing existing container")
		if err := cli.ContainerStop(ctx, c.ID, container.StopOptions{}); err != nil {
			return fmt.Errorf("stop container %s: %w", c.ID, err)
		}
		if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{}); err != nil {
			return fmt.Errorf("remove container %s: %w", c.ID, err)
		}
	}
	return nil
}

func buildImage(ctx context.Context, cli *client.Client, repodir, dockerfile, app, commit string) (string, error) {
	log := zerolog.Ctx(ctx)

	buildContext, err := archive.TarWithOptions(repodir, &archive.TarOptions{})
	if err != nil {
		return "", fmt.Errorf("create tar archive: %w", err)
	}

	resp, err := cli.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:       []string{fmt.Sprintf("%s:%s", app, commit), fmt.Sprintf("%s:latest", app)},
		Labels:     deployLabels(app, commit),
		Dockerfile: dockerfile,
		Remove:     true,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	imageID := ""
	dec := json.NewDecoder(resp.Body)
	for {
		var jm jsonmessage.JSONMessage
		if err := dec.Decode(&jm); err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("decode build output: %w", err)
		}
		if stream := strings.TrimSpace(jm.Stream); stream != "" {
			log.Debug().Msg(stream)
		}
		if jm.Error != nil {
			return "", fmt.Errorf("image build: %s", jm.Error.Message)
		}
		if jm.Aux != nil {
			var result build.Result
			if err := json.Unmarshal(*jm.Aux, &result); err != nil {
				return "", fmt.Errorf("decode build result: %w", err)
			}
			imageID = result.ID
		}
	}
	if imageID == "" {
		return "", fmt.Errorf("image build produced no image ID")
	}

	log.Info().Str("image", imageID).Msg("built image")
	return imageID, nil
}
