package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "gocloud.dev/blob/fileblob"

	"github.com/tapestryml/tapestry/internal/config"
	"github.com/tapestryml/tapestry/pkg/api"
	"github.com/tapestryml/tapestry/pkg/builder"
	"github.com/tapestryml/tapestry/pkg/bundle"
	"github.com/tapestryml/tapestry/pkg/log"
)

type tapestry struct {
	cfg     *config.Config
	name    string
	request *api.ModelStepRequest

	dependsOn    []string
	defaultRetry bool
	uploadCode   bool
	output       string
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Failed to load configuration", log.Error(err))
		os.Exit(1)
	}

	a := &tapestry{cfg: cfg}
	if err := a.run(); err != nil {
		slog.Error("Failed to compose steps", log.Error(err))
		os.Exit(1)
	}
}

func (t *tapestry) run() error {
	requestFile := flag.String("request", "",
		"path to a model step request JSON file")
	flag.StringVar(&t.name, "name", "",
		"name of the step collection; generated step names derive from it")
	deps := flag.String("depends-on", "",
		"comma-separated upstream step names")
	flag.BoolVar(&t.defaultRetry, "default-retry", false,
		"apply the configured default retry policy to every step")
	flag.BoolVar(&t.uploadCode, "upload-code", false,
		"bundle and upload entry-point code for artifacts without one")
	flag.StringVar(&t.output, "o", "", "output file (default stdout)")
	flag.Parse()

	t.setupLogging()

	if err := t.cfg.Validate(); err != nil {
		return err
	}
	if *requestFile == "" {
		return fmt.Errorf("missing required flag: -request")
	}
	if t.name == "" {
		return fmt.Errorf("missing required flag: -name")
	}
	if *deps != "" {
		t.dependsOn = strings.Split(*deps, ",")
	}

	if err := t.loadRequest(*requestFile); err != nil {
		return err
	}
	if t.uploadCode {
		if err := t.uploadBundles(context.Background()); err != nil {
			return err
		}
	}
	return t.compose()
}

func (t *tapestry) setupLogging() {
	level, ok := logLevels[t.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}
	slog.SetDefault(log.NewWithLevel("tapestry", "cli", "0.1.0", level))
}

func (t *tapestry) loadRequest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	req := &api.ModelStepRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Session == nil {
		req.Session = api.NewPipelineSession(
			t.cfg.DefaultBucket, t.cfg.Region,
		)
	}
	t.request = req
	return nil
}

// uploadBundles stages entry-point code for every artifact that names a
// source dir but no bundle yet, recording the uploaded key on the artifact
func (t *tapestry) uploadBundles(ctx context.Context) error {
	if t.request.Model == nil {
		return nil
	}
	artifacts, ok := t.request.Model.Artifacts()
	if !ok {
		return nil
	}

	b, err := bundle.New(ctx, t.cfg.BundleBucketURL, t.cfg.BundlePrefix)
	if err != nil {
		return fmt.Errorf("failed to open bundle bucket: %w", err)
	}
	defer func() { _ = b.Close() }()

	for _, artifact := range artifacts {
		if artifact.Bundle != "" || artifact.SourceDir == "" {
			continue
		}
		key, err := b.Upload(ctx, &bundle.Spec{
			EntryPoint:   artifact.EntryPoint,
			SourceDir:    artifact.SourceDir,
			Dependencies: artifact.Dependencies,
		})
		if err != nil {
			return err
		}
		artifact.Bundle = key
		slog.Info("Uploaded code bundle",
			log.Collection(t.name), log.BundleKey(key))
	}
	return nil
}

func (t *tapestry) compose() error {
	ms := builder.NewModelStep(t.name, t.request)
	if len(t.dependsOn) > 0 {
		ms = ms.WithDependsOn(t.dependsOn...)
	}
	if t.defaultRetry {
		ms = ms.WithRetryPolicies(t.cfg.RetryPolicy())
	}

	sc, err := ms.Build()
	if err != nil {
		return err
	}
	for _, step := range sc.Steps {
		slog.Info("Composed step",
			log.StepName(step.Name), log.StepType(string(step.Type)))
	}

	entries, err := sc.Entries()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if t.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(t.output, data, 0o644)
}
