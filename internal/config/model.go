// Package config loads and validates the modhost host configuration from
// HCL. A config describes where payloads come from, where progress events
// go, which wasm/script modules exist beyond the built-ins, and which
// workers to spawn.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/ahmetkaya/modhost/internal/params"
)

// Restart policies for worker instances.
const (
	RestartNever     = "never"
	RestartOnFailure = "on-failure"
)

// Payload store backends.
const (
	BackendDir = "dir"
	BackendS3  = "s3"
)

// Module runtimes.
const (
	RuntimeWasm   = "wasm"
	RuntimeScript = "script"
)

// Model is the validated, format-agnostic host configuration.
type Model struct {
	Payloads *PayloadConfig
	Progress *ProgressConfig
	Modules  []*ModuleDef
	Workers  []*WorkerDef
}

// PayloadConfig selects and configures the payload store backend.
type PayloadConfig struct {
	Backend string

	// dir backend
	Path string

	// s3 backend
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// ProgressConfig configures the socket.io progress gateway.
type ProgressConfig struct {
	URL       string
	Namespace string
	Timeout   time.Duration
}

// ModuleDef declares a loadable module beyond the built-ins.
type ModuleDef struct {
	Name    string
	Runtime string
	Entry   string // wasm: exported entry function
	Path    string // script: Go source file
}

// WorkerDef declares a group of worker instances sharing one set of
// invocation parameters.
type WorkerDef struct {
	Name    string
	Params  params.Params
	Count   int
	Restart string
}

// hclFile mirrors the top-level structure of one host config file.
type hclFile struct {
	Payloads *hclPayloads `hcl:"payloads,block"`
	Progress *hclProgress `hcl:"progress,block"`
	Modules  []*hclModule `hcl:"module,block"`
	Workers  []*hclWorker `hcl:"worker,block"`
}

type hclPayloads struct {
	Backend   string `hcl:"backend"`
	Path      string `hcl:"path,optional"`
	Endpoint  string `hcl:"endpoint,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	Region    string `hcl:"region,optional"`
	UseSSL    bool   `hcl:"use_ssl,optional"`
	Bucket    string `hcl:"bucket,optional"`
	Prefix    string `hcl:"prefix,optional"`
}

type hclProgress struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	Timeout   string `hcl:"timeout,optional"`
}

type hclModule struct {
	Name    string `hcl:"name,label"`
	Runtime string `hcl:"runtime"`
	Entry   string `hcl:"entry,optional"`
	Path    string `hcl:"path,optional"`
}

type hclWorker struct {
	Name    string         `hcl:"name,label"`
	Query   string         `hcl:"query,optional"`
	Params  hcl.Expression `hcl:"params,optional"`
	Count   int            `hcl:"count,optional"`
	Restart string         `hcl:"restart,optional"`
}

// newWorkerDef validates one worker block. Invocation parameters come
// either from a raw query string or a params map, not both.
func newWorkerDef(raw *hclWorker, file string) (*WorkerDef, error) {
	var paramsVal cty.Value
	hasParams := raw.Params != nil
	if hasParams {
		v, diags := raw.Params.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("worker %q in %s: invalid params: %w", raw.Name, file, diags)
		}
		paramsVal = v
		hasParams = !v.IsNull()
	}

	var p params.Params
	switch {
	case raw.Query != "" && hasParams:
		return nil, fmt.Errorf("worker %q in %s: set either query or params, not both", raw.Name, file)
	case hasParams:
		v := paramsVal
		if !v.Type().IsObjectType() && !v.Type().IsMapType() {
			return nil, fmt.Errorf("worker %q in %s: params must be a map of strings", raw.Name, file)
		}
		values := url.Values{}
		for key, val := range v.AsValueMap() {
			str, err := convert.Convert(val, cty.String)
			if err != nil {
				return nil, fmt.Errorf("worker %q in %s: param %q: %w", raw.Name, file, key, err)
			}
			if str.IsNull() {
				continue
			}
			values.Set(key, str.AsString())
		}
		p = params.FromValues(values)
	default:
		parsed, err := params.Parse(raw.Query)
		if err != nil {
			return nil, fmt.Errorf("worker %q in %s: invalid query: %w", raw.Name, file, err)
		}
		p = parsed
	}

	count := raw.Count
	if count == 0 {
		count = 1
	}
	if count < 0 {
		return nil, fmt.Errorf("worker %q in %s: count must be positive", raw.Name, file)
	}

	restart := raw.Restart
	if restart == "" {
		restart = RestartNever
	}
	if restart != RestartNever && restart != RestartOnFailure {
		return nil, fmt.Errorf("worker %q in %s: unknown restart policy %q", raw.Name, file, restart)
	}

	return &WorkerDef{Name: raw.Name, Params: p, Count: count, Restart: restart}, nil
}

// newModuleDef validates one module block against its runtime.
func newModuleDef(raw *hclModule, file string) (*ModuleDef, error) {
	switch raw.Runtime {
	case RuntimeWasm:
		if raw.Path != "" {
			return nil, fmt.Errorf("module %q in %s: path is only valid for script modules", raw.Name, file)
		}
	case RuntimeScript:
		if raw.Path == "" {
			return nil, fmt.Errorf("module %q in %s: script modules require a path", raw.Name, file)
		}
		if raw.Entry != "" {
			return nil, fmt.Errorf("module %q in %s: entry is only valid for wasm modules", raw.Name, file)
		}
	default:
		return nil, fmt.Errorf("module %q in %s: unknown runtime %q", raw.Name, file, raw.Runtime)
	}
	return &ModuleDef{Name: raw.Name, Runtime: raw.Runtime, Entry: raw.Entry, Path: raw.Path}, nil
}

// newPayloadConfig validates the payloads block against its backend.
func newPayloadConfig(raw *hclPayloads, file string) (*PayloadConfig, error) {
	cfg := &PayloadConfig{
		Backend:   raw.Backend,
		Path:      raw.Path,
		Endpoint:  raw.Endpoint,
		AccessKey: raw.AccessKey,
		SecretKey: raw.SecretKey,
		Region:    raw.Region,
		UseSSL:    raw.UseSSL,
		Bucket:    raw.Bucket,
		Prefix:    raw.Prefix,
	}
	switch raw.Backend {
	case BackendDir:
		if raw.Path == "" {
			return nil, fmt.Errorf("payloads block in %s: dir backend requires a path", file)
		}
	case BackendS3:
		if raw.Endpoint == "" || raw.Bucket == "" {
			return nil, fmt.Errorf("payloads block in %s: s3 backend requires endpoint and bucket", file)
		}
	default:
		return nil, fmt.Errorf("payloads block in %s: unknown backend %q", file, raw.Backend)
	}
	return cfg, nil
}

// newProgressConfig validates the progress block.
func newProgressConfig(raw *hclProgress, file string) (*ProgressConfig, error) {
	cfg := &ProgressConfig{URL: raw.URL, Namespace: raw.Namespace}
	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("progress block in %s: invalid timeout: %w", file, err)
		}
		cfg.Timeout = timeout
	}
	return cfg, nil
}
