package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// AmbiguousArtifactError is returned when a bare contract name matches
// artifacts from several source files.
type AmbiguousArtifactError struct {
	Name       string
	Candidates []string // path:Name
}

func (e *AmbiguousArtifactError) Error() string {
	return fmt.Sprintf("contract name %s is ambiguous, use one of: %s", e.Name, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousArtifactError) Unwrap() error {
	return domain.ErrInvalidArgument
}

// ArtifactLoader reads Foundry artifacts from the project's out directory.
type ArtifactLoader struct {
	projectRoot string
	outDir      string
}

// NewArtifactLoader creates a loader for the given project.
func NewArtifactLoader(cfg *config.RuntimeConfig) *ArtifactLoader {
	out := "out"
	if cfg.FoundryConfig != nil {
		if profile, ok := cfg.FoundryConfig.Profile[cfg.Profile]; ok {
			out = profile.OutDir()
		}
	}
	return &ArtifactLoader{
		projectRoot: cfg.ProjectRoot,
		outDir:      filepath.Join(cfg.ProjectRoot, out),
	}
}

type artifactRef struct {
	name string
	path string // source path from the compilation target
	file string
}

func (r artifactRef) identifier() string {
	return fmt.Sprintf("%s:%s", r.path, r.name)
}

// LoadContract resolves ref, which is a contract name, a path:Name pair or
// the path to an artifact JSON file.
func (l *ArtifactLoader) LoadContract(ref string) (*models.Contract, error) {
	if strings.HasSuffix(ref, ".json") {
		return l.load(ref)
	}

	refs, err := l.index()
	if err != nil {
		return nil, err
	}

	path, name, qualified := strings.Cut(ref, ":")
	if !qualified {
		name = ref
	}
	matches := lo.Filter(refs, func(r artifactRef, _ int) bool {
		return r.name == name && (!qualified || r.path == path)
	})

	switch len(matches) {
	case 0:
		return nil, l.notFound(ref, refs)
	case 1:
		return l.load(matches[0].file)
	default:
		return nil, &AmbiguousArtifactError{
			Name:       ref,
			Candidates: lo.Map(matches, func(r artifactRef, _ int) string { return r.identifier() }),
		}
	}
}

// Contracts lists every deployable contract as path:Name.
func (l *ArtifactLoader) Contracts() ([]string, error) {
	refs, err := l.index()
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Map(refs, func(r artifactRef, _ int) string { return r.identifier() }))
	sort.Strings(ids)
	return ids, nil
}

func (l *ArtifactLoader) notFound(ref string, refs []artifactRef) error {
	names := lo.Uniq(lo.Map(refs, func(r artifactRef, _ int) string { return r.name }))
	matches := fuzzy.Find(ref, names)
	if len(matches) == 0 {
		return fmt.Errorf("%w: contract %s not found in %s", domain.ErrNotFound, ref, l.outDir)
	}
	suggestions := lo.Map(lo.Slice(matches, 0, 3), func(m fuzzy.Match, _ int) string { return m.Str })
	return fmt.Errorf("%w: contract %s not found, did you mean %s?", domain.ErrNotFound, ref, strings.Join(suggestions, ", "))
}

// index walks the out directory for artifacts with creation bytecode.
func (l *ArtifactLoader) index() ([]artifactRef, error) {
	if _, err := os.Stat(l.outDir); err != nil {
		return nil, fmt.Errorf("%w: artifact directory %s not found, run forge build", domain.ErrConfiguration, l.outDir)
	}

	var refs []artifactRef
	err := filepath.WalkDir(l.outDir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var artifact models.Artifact
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil // not an artifact
		}
		if artifact.Bytecode.Object == "" || artifact.Bytecode.Object == "0x" {
			return nil
		}
		for source, name := range artifact.Metadata.Settings.CompilationTarget {
			refs = append(refs, artifactRef{name: name, path: source, file: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index artifacts: %w", err)
	}
	return refs, nil
}

func (l *ArtifactLoader) load(file string) (*models.Contract, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, file)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: failed to parse artifact %s: %v", domain.ErrInvalidArgument, file, err)
	}
	parsed, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ABI in %s: %v", domain.ErrInvalidArgument, file, err)
	}
	bytecode, err := artifact.Bytecode.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bytecode in %s: %v", domain.ErrInvalidArgument, file, err)
	}
	if len(artifact.Bytecode.LinkReferences) > 0 {
		return nil, fmt.Errorf("%w: %s needs linked libraries", domain.ErrUnsupportedOperation, file)
	}

	contract := &models.Contract{
		Name:     strings.TrimSuffix(filepath.Base(file), ".json"),
		ABI:      &parsed,
		Bytecode: bytecode,
		Artifact: &artifact,
	}
	for source, name := range artifact.Metadata.Settings.CompilationTarget {
		contract.Path, contract.Name = source, name
	}
	return contract, nil
}

// VerificationRequest builds a verification request from the contract's
// artifact metadata, reading every source file from the project.
func (l *ArtifactLoader) VerificationRequest(contract *models.Contract) (*models.VerificationRequest, error) {
	if contract.Artifact == nil {
		return nil, fmt.Errorf("%w: %s was not loaded from an artifact", domain.ErrInvalidArgument, contract.Name)
	}
	meta := contract.Artifact.Metadata

	sources := make(map[string]models.SourceFile, len(meta.Sources))
	for path := range meta.Sources {
		content, err := os.ReadFile(filepath.Join(l.projectRoot, path))
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", path, err)
		}
		sources[path] = models.SourceFile{Content: string(content)}
	}

	args, err := contract.ConstructorArgs()
	if err != nil {
		return nil, err
	}

	return &models.VerificationRequest{
		ContractToVerify: contract.Identifier(),
		Version:          "v" + strings.TrimPrefix(meta.Compiler.Version, "v"),
		Sources:          sources,
		Settings: models.CompilerSettings{
			EVMVersion: meta.Settings.EVMVersion,
			ViaIR:      meta.Settings.ViaIR,
			Optimizer:  meta.Settings.Optimizer,
			Libraries:  splitLibraries(meta.Settings.Libraries),
			Remappings: meta.Settings.Remappings,
			Metadata:   meta.Settings.Metadata,
		},
		ConstructorArgs: strings.TrimPrefix(hexutil.Encode(args), "0x"),
		LicenseType:     meta.Sources[contract.Path].License,
	}, nil
}

// splitLibraries turns metadata's "path:Name" keys into solc's nested form.
func splitLibraries(libs map[string]string) map[string]map[string]string {
	if len(libs) == 0 {
		return nil
	}
	out := make(map[string]map[string]string)
	for key, address := range libs {
		path, name, ok := strings.Cut(key, ":")
		if !ok {
			continue
		}
		if out[path] == nil {
			out[path] = make(map[string]string)
		}
		out[path][name] = address
	}
	return out
}

// Ensure ArtifactLoader implements usecase.ArtifactLoader
var _ usecase.ArtifactLoader = (*ArtifactLoader)(nil)
