package config

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
)

// Load parses the host configuration from a single .hcl file or a
// directory tree of .hcl files and merges everything into one Model.
// Blocks may be split across files; the singleton blocks (payloads,
// progress) may appear at most once across the whole set.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findConfigFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl config files found in %s", path)
	}
	logger.Debug("Found config files to load.", "files", files)

	model := &Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFileBody, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, diags)
		}

		var parsed hclFile
		if diags := gohcl.DecodeBody(hclFileBody.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode config file %s: %w", file, diags)
		}

		if err := mergeFile(model, &parsed, file); err != nil {
			return nil, err
		}
	}

	if err := validate(model); err != nil {
		return nil, err
	}

	logger.Info("Host configuration loaded.",
		"modules", len(model.Modules), "workers", len(model.Workers))
	return model, nil
}

// mergeFile folds one parsed file into the model, validating each block.
func mergeFile(model *Model, parsed *hclFile, file string) error {
	if parsed.Payloads != nil {
		if model.Payloads != nil {
			return fmt.Errorf("duplicate payloads block in %s", file)
		}
		cfg, err := newPayloadConfig(parsed.Payloads, file)
		if err != nil {
			return err
		}
		model.Payloads = cfg
	}

	if parsed.Progress != nil {
		if model.Progress != nil {
			return fmt.Errorf("duplicate progress block in %s", file)
		}
		cfg, err := newProgressConfig(parsed.Progress, file)
		if err != nil {
			return err
		}
		model.Progress = cfg
	}

	for _, rawModule := range parsed.Modules {
		def, err := newModuleDef(rawModule, file)
		if err != nil {
			return err
		}
		model.Modules = append(model.Modules, def)
	}

	for _, rawWorker := range parsed.Workers {
		def, err := newWorkerDef(rawWorker, file)
		if err != nil {
			return err
		}
		model.Workers = append(model.Workers, def)
	}
	return nil
}

// validate enforces cross-file invariants after the merge.
func validate(model *Model) error {
	moduleNames := make(map[string]bool, len(model.Modules))
	for _, def := range model.Modules {
		if moduleNames[def.Name] {
			return fmt.Errorf("module %q declared more than once", def.Name)
		}
		moduleNames[def.Name] = true
	}

	workerNames := make(map[string]bool, len(model.Workers))
	for _, def := range model.Workers {
		if workerNames[def.Name] {
			return fmt.Errorf("worker %q declared more than once", def.Name)
		}
		workerNames[def.Name] = true
	}
	return nil
}

// findConfigFiles resolves a path to the list of .hcl files it names:
// itself for a file, or every .hcl file beneath it for a directory.
func findConfigFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config path %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk config directory %s: %w", path, err)
	}
	return files, nil
}
