package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	formbind "github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/forms"
	pkgopenapi "github.com/goliatone/go-formbind/pkg/openapi"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/renderers/html"
	"github.com/goliatone/go-formbind/pkg/renderers/tui"
)

func main() {
	formPath := flag.String("form", "", "YAML form definition path")
	source := flag.String("source", "", "OpenAPI document path or URL")
	opID := flag.String("operation", "", "operation ID when rendering from OpenAPI")
	rendererName := flag.String("renderer", "html", "renderer to use")
	action := flag.String("action", "", "form action URL for HTML output")
	fields := flag.String("fields", "", "comma-separated field names to keep")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	registry, err := buildRegistry()
	if err != nil {
		log.Fatalf("Failed to configure renderers: %v", err)
	}

	form, err := loadForm(ctx, *formPath, *source, *opID)
	if err != nil {
		log.Fatalf("Failed to load form: %v", err)
	}

	if *fields != "" {
		render.ApplySubset(&form, render.FieldSubset{Names: strings.Split(*fields, ",")})
	}

	renderer, err := registry.Get(*rendererName)
	if err != nil {
		log.Fatalf("Unknown renderer %q (available: %s)", *rendererName, strings.Join(registry.List(), ", "))
	}

	payload, err := renderer.Render(ctx, form, render.RenderOptions{Action: *action})
	if err != nil {
		log.Fatalf("Failed to render form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Form written to %s\n", *output)
	} else {
		fmt.Println(string(payload))
	}
}

func buildRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()

	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}

	tuiRenderer, err := tui.New()
	if err != nil {
		return nil, err
	}
	if err := registry.Register(tuiRenderer); err != nil {
		return nil, err
	}

	return registry, nil
}

func loadForm(ctx context.Context, formPath, source, opID string) (forms.Form, error) {
	switch {
	case formPath != "":
		raw, err := os.ReadFile(formPath)
		if err != nil {
			return forms.Form{}, err
		}
		return forms.ParseYAML(raw)
	case source != "":
		if opID == "" {
			return forms.Form{}, fmt.Errorf("-operation is required with -source")
		}
		loader := formbind.NewLoader(pkgopenapi.WithHTTPFallback(30 * time.Second))
		doc, err := loader.Load(ctx, parseSource(source))
		if err != nil {
			return forms.Form{}, err
		}
		operations, err := formbind.NewParser().Operations(ctx, doc)
		if err != nil {
			return forms.Form{}, err
		}
		operation, ok := operations[opID]
		if !ok {
			return forms.Form{}, fmt.Errorf("operation %q not found in %s", opID, doc.Location())
		}
		return pkgopenapi.FormFromOperation(operation)
	default:
		return forms.Form{}, fmt.Errorf("either -form or -source is required")
	}
}

func parseSource(raw string) pkgopenapi.Source {
	path := strings.TrimSpace(raw)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pkgopenapi.SourceFromURL(path)
	}
	return pkgopenapi.SourceFromFile(path)
}
